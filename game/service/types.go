package service

import (
	"time"

	"github.com/wricardo/connect-n/game/engine"
)

// Event types emitted by the service
const (
	EventDrop     = "drop"
	EventRejected = "rejected"
	EventVictory  = "victory"
	EventReset    = "reset"
)

// Machine-friendly codes for rejected drops and bulk stops
const (
	CodeInvalidColumn = "invalid_column"
	CodeColumnFull    = "column_full"
	CodeGameOver      = "game_over"
	CodeVictory       = "victory"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// DropResult contains the result of a single drop
type DropResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
}

// BulkDropResult contains the result of a sequence of drops
type BulkDropResult struct {
	// Summary
	RequestedDrops int               `json:"requested_drops"`
	DropsExecuted  int               `json:"drops_executed"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_column|column_full|game_over|victory
	StoppedOnDrop  int               `json:"stopped_on_drop,omitempty"`  // 1-based index of the drop that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartPlayer engine.Player `json:"start_player"`
	EndPlayer   engine.Player `json:"end_player"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool            `json:"game_over"`
	Winner        engine.Player   `json:"winner,omitempty"`
	WinningRule   engine.RuleKind `json:"winning_rule,omitempty"`
	Message       string          `json:"message,omitempty"`
	PossibleMoves []int           `json:"possible_moves"`
	RowsView      []string        `json:"rows_view,omitempty"`
}

// StepInfo is a compact record for each executed drop
type StepInfo struct {
	Idx         int             `json:"idx"`
	Column      int             `json:"column"`
	Row         int             `json:"row"`
	Player      engine.Player   `json:"player"`
	Success     bool            `json:"success"`
	WinningRule engine.RuleKind `json:"winning_rule,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"` // "drop", "rejected", "victory", "reset"
	SessionID string          `json:"session_id"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Player    engine.Player   `json:"player,omitempty"`
	Column    *int            `json:"column,omitempty"`
	Row       *int            `json:"row,omitempty"`
	Rule      engine.RuleKind `json:"rule,omitempty"`
}

// GameResult records a finished game
type GameResult struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	ConfigName   string          `json:"config_name"`
	Winner       engine.Player   `json:"winner"`
	WinningRule  engine.RuleKind `json:"winning_rule"`
	Moves        int             `json:"moves"`
	Columns      int             `json:"columns"`
	Rows         int             `json:"rows"`
	WinCondition int             `json:"win_condition"`
	FinishedAt   time.Time       `json:"finished_at"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string            `json:"filename"`
	ConfigID     string            `json:"config_id"` // The identifier to use for session creation
	Name         string            `json:"name"`      // Display name
	Description  string            `json:"description"`
	Columns      int               `json:"columns"`
	Rows         int               `json:"rows"`
	WinCondition int               `json:"win_condition"`
	Rules        []engine.RuleKind `json:"rules"`
}
