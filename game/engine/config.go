package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate board size
	if config.Columns < MinBoardSize || config.Columns > MaxBoardSize {
		return fmt.Errorf("config validation: columns must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Columns)
	}
	if config.Rows < MinBoardSize || config.Rows > MaxBoardSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Rows)
	}

	// A win condition larger than the board is accepted; it simply can never be met
	if config.WinCondition < MinWinCondition || config.WinCondition > MaxWinCondition {
		return fmt.Errorf("config validation: win_condition must be between %d and %d, got %d",
			MinWinCondition, MaxWinCondition, config.WinCondition)
	}

	for i, rule := range config.Rules {
		if _, err := ParseRuleKind(string(rule)); err != nil {
			return fmt.Errorf("config validation: rules[%d]: %v", i, err)
		}
	}

	if config.FirstPlayer != NoPlayer && !config.FirstPlayer.Valid() {
		return fmt.Errorf("config validation: first_player must be \"A\" or \"B\"")
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}

	// Validate format strings
	if strings.Count(config.Messages.Victory, "%s") != 2 {
		return fmt.Errorf("config validation: messages.victory must contain %%s twice (player, rule)")
	}
	if config.Messages.Turn != "" && strings.Count(config.Messages.Turn, "%s") != 1 {
		return fmt.Errorf("config validation: messages.turn must contain %%s once for the player")
	}

	return nil
}

// Normalize fills optional fields with their defaults
func (c *GameConfig) Normalize() {
	if len(c.Rules) == 0 {
		c.Rules = DefaultRules()
	}
	if c.FirstPlayer == NoPlayer {
		c.FirstPlayer = PlayerA
	}
	if c.Messages.Turn == "" {
		c.Messages.Turn = "Player %s to move"
	}
	if c.Messages.ColumnFull == "" {
		c.Messages.ColumnFull = "That column is full"
	}
	if c.Messages.InvalidColumn == "" {
		c.Messages.InvalidColumn = "No such column"
	}
	if c.Messages.GameOver == "" {
		c.Messages.GameOver = "The game is over"
	}
}

// ReachableRules returns the configured rules that can ever produce a win on
// a board of the configured size
func (c *GameConfig) ReachableRules() []RuleKind {
	var reachable []RuleKind
	for _, rule := range c.Rules {
		switch rule {
		case VerticalRun:
			if c.Rows >= c.WinCondition {
				reachable = append(reachable, rule)
			}
		case HorizontalRun:
			if c.Columns >= c.WinCondition {
				reachable = append(reachable, rule)
			}
		case DiagonalRun:
			if c.Rows >= c.WinCondition && c.Columns >= c.WinCondition {
				reachable = append(reachable, rule)
			}
		}
	}
	return reachable
}

// ParseGameConfig decodes, normalizes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	config.Normalize()

	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// DefaultConfig returns the classic 7x6 four-in-a-row configuration
func DefaultConfig() *GameConfig {
	config := &GameConfig{
		Name:         "classic",
		Description:  "Classic seven columns, six rows, four in a row",
		Columns:      7,
		Rows:         6,
		WinCondition: 4,
		Rules:        []RuleKind{VerticalRun, HorizontalRun, DiagonalRun},
		FirstPlayer:  PlayerA,
		Messages: Messages{
			Welcome: "Welcome! Drop markers and connect four to win.",
			Victory: "Player %s wins with a %s run!",
		},
	}
	config.Normalize()
	return config
}

// InitGameStateFromConfig creates a new game state using the provided configuration
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	first := config.FirstPlayer
	if !first.Valid() {
		first = PlayerA
	}
	rules := config.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	columns := make([][]Player, config.Columns)
	for i := range columns {
		columns[i] = []Player{}
	}

	return &GameState{
		Columns:           columns,
		ColumnCount:       config.Columns,
		RowCapacity:       config.Rows,
		WinCondition:      config.WinCondition,
		Rules:             append([]RuleKind{}, rules...),
		CurrentPlayer:     first,
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
