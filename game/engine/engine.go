package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Snapshot() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	Winner() Player
	CurrentPlayer() Player

	// Drop operations
	Drop(column int) (*MoveHistoryEntry, error)
	CanDrop(column int) bool
	GetPossibleMoves() []int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Board inspection
	GetBoard() *Board
	DescribeCell(column, row int) CellInfo
}

// GameEngine implements the Engine interface. It owns one board and one
// rule engine and applies turn order on top of them.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	board  *Board
	rules  *RuleEngine
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	config.Normalize()

	engine := &GameEngine{config: config}
	if err := engine.init(); err != nil {
		return nil, err
	}

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults() (*GameEngine, error) {
	return NewEngine(DefaultConfig())
}

func (e *GameEngine) init() error {
	board, err := NewBoard(e.config.Columns, e.config.Rows)
	if err != nil {
		return err
	}
	rules, err := NewRuleEngineWithRules(e.config.WinCondition, e.config.Rules...)
	if err != nil {
		return err
	}

	e.board = board
	e.rules = rules
	e.state = InitGameStateFromConfig(e.config)
	e.refreshViews()
	return nil
}

// GetState returns the current game state. The engine keeps mutating the
// returned value; use Snapshot for a copy that outlives the caller's lock.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the current game state
func (e *GameEngine) Snapshot() *GameState {
	return e.state.Clone()
}

// SetState sets the game state (used for persistence loading). The board is
// rebuilt from the state's columns and must fit the engine's configuration.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.ColumnCount != e.config.Columns || state.RowCapacity != e.config.Rows {
		return fmt.Errorf("%w: state is %dx%d, config is %dx%d", ErrInvalidDimensions,
			state.ColumnCount, state.RowCapacity, e.config.Columns, e.config.Rows)
	}

	board, err := BoardFromColumns(state.ColumnCount, state.RowCapacity, state.Columns)
	if err != nil {
		return fmt.Errorf("failed to rebuild board: %w", err)
	}
	if !state.CurrentPlayer.Valid() {
		state.CurrentPlayer = e.config.FirstPlayer
	}
	for len(state.Columns) < state.ColumnCount {
		state.Columns = append(state.Columns, []Player{})
	}
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}
	if state.CurrentMoves == nil {
		state.CurrentMoves = []MoveHistoryEntry{}
	}

	e.board = board
	e.state = state
	e.refreshViews()
	return nil
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	board, _ := NewBoard(e.config.Columns, e.config.Rows)
	e.board = board
	e.state = InitGameStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0
	e.refreshViews()

	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// Winner returns the winning player or NoPlayer
func (e *GameEngine) Winner() Player {
	return e.state.Winner
}

// CurrentPlayer returns the player whose turn it is
func (e *GameEngine) CurrentPlayer() Player {
	return e.state.CurrentPlayer
}

// Drop drops the current player's marker into column. On success the rule
// engine is evaluated for the mover and the turn passes to the opponent.
// Rejected drops are recorded in the history and leave the board unchanged.
func (e *GameEngine) Drop(column int) (*MoveHistoryEntry, error) {
	mover := e.state.CurrentPlayer

	if e.state.GameOver {
		e.state.Message = e.config.Messages.GameOver
		return nil, ErrGameOver
	}

	row := e.board.HeightOf(column)
	if _, err := e.board.Drop(mover, column); err != nil {
		switch {
		case errors.Is(err, ErrColumnFull):
			e.state.Message = e.config.Messages.ColumnFull
		case errors.Is(err, ErrInvalidColumn):
			e.state.Message = e.config.Messages.InvalidColumn
		default:
			e.state.Message = err.Error()
		}
		entry := e.addMoveToHistory(mover, column, -1, false, err, "")
		return entry, err
	}

	e.state.Columns[column] = append(e.state.Columns[column], mover)

	var winningRule RuleKind
	if rule, won := e.rules.Match(e.board, mover); won {
		winningRule = rule
		e.state.Winner = mover
		e.state.WinningRule = rule
		e.state.WinningCells = WinningCells(e.board, rule, mover, e.config.WinCondition)
		e.state.GameOver = true
		e.state.Message = fmt.Sprintf(e.config.Messages.Victory, mover, rule)
	} else {
		e.state.CurrentPlayer = mover.Opponent()
		e.state.Message = fmt.Sprintf(e.config.Messages.Turn, e.state.CurrentPlayer)
	}

	entry := e.addMoveToHistory(mover, column, row, true, nil, winningRule)
	e.refreshViews()
	return entry, nil
}

// CanDrop checks whether the current player may drop into column
func (e *GameEngine) CanDrop(column int) bool {
	if e.state.GameOver {
		return false
	}
	if column < 0 || column >= e.board.ColumnCount() {
		return false
	}
	return !e.board.IsColumnFull(column)
}

// GetPossibleMoves returns all columns the current player can drop into
func (e *GameEngine) GetPossibleMoves() []int {
	if e.state.GameOver {
		return []int{}
	}
	return e.board.OpenColumns()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	config.Normalize()

	prev := e.config
	e.config = config
	if err := e.init(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetBoard returns a copy of the board
func (e *GameEngine) GetBoard() *Board {
	return e.board.Clone()
}

// DescribeCell reports what occupies (column, row)
func (e *GameEngine) DescribeCell(column, row int) CellInfo {
	info := CellInfo{
		Column:   column,
		Row:      row,
		InBounds: column >= 0 && column < e.board.ColumnCount() && row >= 0 && row < e.board.RowCapacity(),
		Height:   e.board.HeightOf(column),
	}
	if p, ok := e.board.MarkerAt(column, row); ok {
		info.Player = p
		info.Occupied = true
	}
	return info
}

// BulkDrop executes multiple drops in sequence, returning success status for each
func (e *GameEngine) BulkDrop(columns []int) []bool {
	results := make([]bool, 0, len(columns))

	for _, column := range columns {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}

		_, err := e.Drop(column)
		results = append(results, err == nil)
	}

	return results
}

// addMoveToHistory adds a drop to the game's move history
func (e *GameEngine) addMoveToHistory(p Player, column, row int, success bool, err error, rule RuleKind) *MoveHistoryEntry {
	entry := MoveHistoryEntry{
		Player:      p,
		Column:      column,
		Row:         row,
		Timestamp:   time.Now().Unix(),
		Success:     success,
		WinningRule: rule,
		MoveNumber:  e.state.TotalMoves + 1,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	// Append to cumulative history (never cleared by reset) and increment total
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++

	// Append to current segment history and increment its counter
	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
	e.state.CurrentMovesCount++

	return &entry
}

func (e *GameEngine) refreshViews() {
	e.state.RowsView = RenderRows(e.board)
	e.state.PossibleMoves = e.GetPossibleMoves()
}
