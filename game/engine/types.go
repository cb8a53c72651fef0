package engine

import (
	"errors"
	"fmt"
)

// Player identifies the owner of a marker
type Player int

const (
	NoPlayer Player = iota
	PlayerA
	PlayerB
)

// RuleKind names a registered win detector
type RuleKind string

const (
	VerticalRun   RuleKind = "vertical"
	HorizontalRun RuleKind = "horizontal"
	DiagonalRun   RuleKind = "diagonal"

	// Validation constants
	MinBoardSize        = 1
	MaxBoardSize        = 50
	MinWinCondition     = 1
	MaxWinCondition     = 50
	MaxBulkDrops        = 50
	WebSocketBufferSize = 256
)

var (
	ErrInvalidColumn       = errors.New("invalid column")
	ErrColumnFull          = errors.New("column is full")
	ErrInvalidDimensions   = errors.New("invalid board dimensions")
	ErrInvalidWinCondition = errors.New("invalid win condition")
	ErrUnknownRule         = errors.New("unknown rule")
	ErrInvalidPlayer       = errors.New("invalid player")
	ErrGameOver            = errors.New("game is over")
)

// String returns "A", "B" or "" for NoPlayer
func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return ""
	}
}

// Valid reports whether p is one of the two playing sides
func (p Player) Valid() bool {
	return p == PlayerA || p == PlayerB
}

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return NoPlayer
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Player) UnmarshalText(text []byte) error {
	parsed, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePlayer converts "A"/"B" (case-insensitive) into a Player. The empty
// string maps to NoPlayer.
func ParsePlayer(s string) (Player, error) {
	switch s {
	case "A", "a":
		return PlayerA, nil
	case "B", "b":
		return PlayerB, nil
	case "":
		return NoPlayer, nil
	default:
		return NoPlayer, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
	}
}

// DefaultRules is used when a configuration does not list any rule
func DefaultRules() []RuleKind {
	return []RuleKind{VerticalRun, HorizontalRun}
}

// Messages holds the user-facing texts of a configuration
type Messages struct {
	Welcome       string `json:"welcome"`
	Turn          string `json:"turn"`
	Victory       string `json:"victory"`
	ColumnFull    string `json:"column_full"`
	InvalidColumn string `json:"invalid_column"`
	GameOver      string `json:"game_over"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Columns      int        `json:"columns"`
	Rows         int        `json:"rows"`
	WinCondition int        `json:"win_condition"`
	Rules        []RuleKind `json:"rules"`
	FirstPlayer  Player     `json:"first_player,omitempty"`
	Messages     Messages   `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	Columns       [][]Player         `json:"columns"`
	ColumnCount   int                `json:"column_count"`
	RowCapacity   int                `json:"row_capacity"`
	WinCondition  int                `json:"win_condition"`
	Rules         []RuleKind         `json:"rules"`
	CurrentPlayer Player             `json:"current_player"`
	Winner        Player             `json:"winner,omitempty"`
	WinningRule   RuleKind           `json:"winning_rule,omitempty"`
	WinningCells  [][2]int           `json:"winning_cells,omitempty"`
	GameOver      bool               `json:"game_over"`
	Message       string             `json:"message"`
	ConfigName    string             `json:"config_name"`
	MoveHistory   []MoveHistoryEntry `json:"move_history"`
	TotalMoves    int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	RowsView      []string `json:"rows_view,omitempty"`
	PossibleMoves []int    `json:"possible_moves,omitempty"`
}

// Clone returns a deep copy of the state that shares no slices with s
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Columns = make([][]Player, len(s.Columns))
	for i, col := range s.Columns {
		out.Columns[i] = append([]Player{}, col...)
	}
	out.Rules = append([]RuleKind{}, s.Rules...)
	out.WinningCells = append([][2]int(nil), s.WinningCells...)
	out.MoveHistory = append([]MoveHistoryEntry{}, s.MoveHistory...)
	out.CurrentMoves = append([]MoveHistoryEntry{}, s.CurrentMoves...)
	out.RowsView = append([]string(nil), s.RowsView...)
	out.PossibleMoves = append([]int(nil), s.PossibleMoves...)
	return &out
}

// MoveHistoryEntry represents a single drop in the game history
type MoveHistoryEntry struct {
	Player      Player   `json:"player"`
	Column      int      `json:"column"`
	Row         int      `json:"row"`
	Timestamp   int64    `json:"timestamp"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
	WinningRule RuleKind `json:"winning_rule,omitempty"`
	MoveNumber  int      `json:"move_number"`
}

// CellInfo describes a single board position
type CellInfo struct {
	Column   int    `json:"column"`
	Row      int    `json:"row"`
	Player   Player `json:"player,omitempty"`
	Occupied bool   `json:"occupied"`
	InBounds bool   `json:"in_bounds"`
	Height   int    `json:"column_height"`
}
