// Command validate checks the game configuration JSON files of a directory
// (../configs unless a directory is given as the first argument). It checks:
//   - JSON structure and required fields
//   - Board dimensions and win condition bounds
//   - Rule names against the registered detectors
//   - Message placeholders
//   - Reachability: at least one enabled rule can fire on the board
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/connect-n/game/engine"
)

// Config mirrors the JSON schema for a game configuration. Fields are kept
// loose so that every problem of a file can be reported at once.
type Config struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Columns      int               `json:"columns"`
	Rows         int               `json:"rows"`
	WinCondition int               `json:"win_condition"`
	Rules        []string          `json:"rules"`
	FirstPlayer  string            `json:"first_player"`
	Messages     map[string]string `json:"messages"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	// Validate board
	if config.Columns < engine.MinBoardSize || config.Columns > engine.MaxBoardSize {
		result.fail("columns must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, config.Columns)
	}
	if config.Rows < engine.MinBoardSize || config.Rows > engine.MaxBoardSize {
		result.fail("rows must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, config.Rows)
	}
	if config.WinCondition < engine.MinWinCondition || config.WinCondition > engine.MaxWinCondition {
		result.fail("win_condition must be between %d and %d, got %d", engine.MinWinCondition, engine.MaxWinCondition, config.WinCondition)
	}

	// Validate rules
	rules := make([]engine.RuleKind, 0, len(config.Rules))
	for i, name := range config.Rules {
		rule, err := engine.ParseRuleKind(name)
		if err != nil {
			result.fail("rules[%d]: %v", i, err)
			continue
		}
		rules = append(rules, rule)
	}
	if len(config.Rules) == 0 {
		rules = engine.DefaultRules()
	}

	if _, err := engine.ParsePlayer(config.FirstPlayer); err != nil {
		result.fail("first_player: %v", err)
	}

	// Validate messages
	for _, msg := range []string{"welcome", "victory"} {
		if config.Messages[msg] == "" {
			result.fail("Missing required message: %s", msg)
		}
	}
	if victory, ok := config.Messages["victory"]; ok && strings.Count(victory, "%s") != 2 {
		result.fail("messages.victory must contain %%s twice (player, rule)")
	}
	if turn, ok := config.Messages["turn"]; ok && turn != "" && strings.Count(turn, "%s") != 1 {
		result.fail("messages.turn must contain %%s once")
	}

	// Reachability: the game must be winnable by at least one enabled rule
	if result.Valid {
		gc := engine.GameConfig{
			Columns:      config.Columns,
			Rows:         config.Rows,
			WinCondition: config.WinCondition,
			Rules:        rules,
		}
		reachable := gc.ReachableRules()
		if len(reachable) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ Warning: no enabled rule can connect %d on a %dx%d board", config.WinCondition, config.Columns, config.Rows))
		} else {
			names := make([]string, len(reachable))
			for i, r := range reachable {
				names[i] = string(r)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachable rules: %s", strings.Join(names, ", ")))
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %d columns x %d rows", config.Columns, config.Rows))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Connect: %d", config.WinCondition))
	}

	return result
}

// validateDir validates every *.json file in dir, in name order
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	return results, nil
}

// main validates each config, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
