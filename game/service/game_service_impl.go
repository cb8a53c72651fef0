package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/connect-n/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	publisher EventPublisher
	results   ResultRecorder
	logger    zerolog.Logger
	mu        sync.RWMutex
}

// Option customizes a game service
type Option func(*gameServiceImpl)

// WithPublisher sends every produced event to p
func WithPublisher(p EventPublisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithResultRecorder stores finished games in r
func WithResultRecorder(r ResultRecorder) Option {
	return func(s *gameServiceImpl) { s.results = r }
}

// WithLogger replaces the global logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *gameServiceImpl) { s.logger = l }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "GameService").Logger()
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate the id
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// Drop drops the current player's marker into column. A rejected drop is
// reported through DropResult.ErrorCode, not as an error.
func (s *gameServiceImpl) Drop(ctx context.Context, sessionID string, column int, reset bool) (*DropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sess.ID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, s.newEvent(sess.ID, EventReset, "Game reset to initial state"))
	}

	mover := sess.Engine.CurrentPlayer()
	entry, dropErr := sess.Engine.Drop(column)
	state := sess.Engine.Snapshot()

	result := &DropResult{
		Success:   dropErr == nil,
		GameState: state,
		Message:   state.Message,
	}

	if dropErr != nil {
		result.ErrorCode = errorCode(dropErr)
		ev := s.newEvent(sess.ID, EventRejected, dropErr.Error())
		ev.Player = mover
		ev.Column = intPtr(column)
		events = append(events, ev)
		s.logger.Debug().Str("session", sess.ID).Int("column", column).Str("player", mover.String()).
			Str("code", result.ErrorCode).Msg("drop rejected")
	} else {
		result.Step = stepFromEntry(1, entry)
		events = append(events, s.dropEvents(ctx, sess, entry)...)
	}
	result.Events = events

	s.publish(ctx, events)
	s.save(sess.ID, "drop")

	return result, nil
}

// BulkDrop executes drops in sequence and stops at the first rejected drop or
// when the game ends
func (s *gameServiceImpl) BulkDrop(ctx context.Context, sessionID string, columns []int, reset bool) (*BulkDropResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, ErrNoDrops
	}
	s.sessions.UpdateLastAccessed(sess.ID)

	result := &BulkDropResult{
		RequestedDrops: len(columns),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, s.newEvent(sess.ID, EventReset, "Game reset to initial state"))
	}
	result.StartPlayer = sess.Engine.CurrentPlayer()

	// Limit drops to prevent abuse
	if len(columns) > engine.MaxBulkDrops {
		result.Truncated = true
		result.Limit = engine.MaxBulkDrops
		columns = columns[:engine.MaxBulkDrops]
	}

	for i, column := range columns {
		if sess.Engine.IsGameOver() {
			result.Success = false
			result.StoppedReason = "game is over"
			result.StopReasonCode = CodeGameOver
			result.StoppedOnDrop = i + 1
			break
		}

		mover := sess.Engine.CurrentPlayer()
		entry, dropErr := sess.Engine.Drop(column)
		if dropErr != nil {
			result.Success = false
			result.StopReasonCode = errorCode(dropErr)
			result.StoppedReason = fmt.Sprintf("drop %d rejected: column %d: %v", i+1, column, dropErr)
			result.StoppedOnDrop = i + 1

			ev := s.newEvent(sess.ID, EventRejected, dropErr.Error())
			ev.Player = mover
			ev.Column = intPtr(column)
			result.Events = append(result.Events, ev)
			break
		}

		result.DropsExecuted++
		result.Steps = append(result.Steps, *stepFromEntry(i+1, entry))
		result.Events = append(result.Events, s.dropEvents(ctx, sess, entry)...)

		if entry.WinningRule != "" {
			result.StopReasonCode = CodeVictory
			result.StoppedOnDrop = i + 1
			result.StoppedReason = fmt.Sprintf("player %s won on drop %d", entry.Player, i+1)
			break
		}
	}

	state := sess.Engine.Snapshot()
	result.GameState = state
	result.EndPlayer = state.CurrentPlayer
	result.GameOver = state.GameOver
	result.Winner = state.Winner
	result.WinningRule = state.WinningRule
	result.Message = state.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.RowsView = state.RowsView

	s.logger.Debug().Str("session", sess.ID).Int("requested", result.RequestedDrops).
		Int("executed", result.DropsExecuted).Str("stop", result.StopReasonCode).Msg("bulk drop")

	s.publish(ctx, result.Events)
	s.save(sess.ID, "bulk drop")

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sess.ID)
	sess.Engine.Reset()

	s.publish(ctx, []GameEvent{s.newEvent(sess.ID, EventReset, "Game reset to initial state")})
	s.save(sess.ID, "reset")

	return sess.Engine.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.sessions.UpdateLastAccessed(sess.ID)
	return sess.Engine.Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeCell reports what occupies a board position
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, column, row int) (*engine.CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	info := sess.Engine.DescribeCell(column, row)
	return &info, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// RecentResults returns the most recently finished games
func (s *gameServiceImpl) RecentResults(ctx context.Context, limit int) ([]*GameResult, error) {
	if s.results == nil {
		return []*GameResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.results.Recent(ctx, limit)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return sess, nil
}

// dropEvents builds the events of a successful drop and records the result
// when the drop won the game
func (s *gameServiceImpl) dropEvents(ctx context.Context, sess *Session, entry *engine.MoveHistoryEntry) []GameEvent {
	ev := s.newEvent(sess.ID, EventDrop,
		fmt.Sprintf("Player %s dropped into column %d (row %d)", entry.Player, entry.Column, entry.Row))
	ev.Player = entry.Player
	ev.Column = intPtr(entry.Column)
	ev.Row = intPtr(entry.Row)
	events := []GameEvent{ev}

	if entry.WinningRule == "" {
		return events
	}

	victory := s.newEvent(sess.ID, EventVictory, sess.Engine.GetState().Message)
	victory.Player = entry.Player
	victory.Rule = entry.WinningRule
	events = append(events, victory)

	s.logger.Info().Str("session", sess.ID).Str("player", entry.Player.String()).
		Str("rule", string(entry.WinningRule)).Int("moves", sess.Engine.GetState().CurrentMovesCount).Msg("game won")
	s.record(ctx, sess, entry)

	return events
}

func (s *gameServiceImpl) record(ctx context.Context, sess *Session, entry *engine.MoveHistoryEntry) {
	if s.results == nil {
		return
	}
	state := sess.Engine.GetState()
	result := &GameResult{
		ID:           uuid.NewString(),
		SessionID:    sess.ID,
		ConfigName:   state.ConfigName,
		Winner:       entry.Player,
		WinningRule:  entry.WinningRule,
		Moves:        state.CurrentMovesCount,
		Columns:      state.ColumnCount,
		Rows:         state.RowCapacity,
		WinCondition: state.WinCondition,
		FinishedAt:   time.Now().UTC(),
	}
	if err := s.results.Record(ctx, result); err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("failed to record game result")
	}
}

func (s *gameServiceImpl) publish(ctx context.Context, events []GameEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn().Err(err).Int("events", len(events)).Msg("failed to publish game events")
	}
}

func (s *gameServiceImpl) save(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msgf("failed to persist session after %s", op)
	}
}

func (s *gameServiceImpl) newEvent(sessionID, eventType, message string) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func stepFromEntry(idx int, entry *engine.MoveHistoryEntry) *StepInfo {
	return &StepInfo{
		Idx:         idx,
		Column:      entry.Column,
		Row:         entry.Row,
		Player:      entry.Player,
		Success:     entry.Success,
		WinningRule: entry.WinningRule,
	}
}

// errorCode maps an engine error to its machine-friendly code
func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidColumn):
		return CodeInvalidColumn
	case errors.Is(err, engine.ErrColumnFull):
		return CodeColumnFull
	case errors.Is(err, engine.ErrGameOver):
		return CodeGameOver
	default:
		return "error"
	}
}

func intPtr(v int) *int {
	return &v
}
