// Package engine provides the core game logic for the Connect-N game.
//
// The engine package implements the game mechanics including:
//   - A gravity-constrained board stored as one stack per column
//   - Win detection through registered directional detectors
//   - Turn order, move history and game-over handling
//   - Configuration loading and validation
//
// Core Types:
//
// Board owns the markers. RuleEngine holds the win condition and the ordered
// list of detectors (VerticalRun, HorizontalRun, DiagonalRun) and evaluates
// them against a Board for one player without mutating it. GameEngine wires
// a Board and a RuleEngine together for a single session, and GameConfig
// defines the board size, win condition and rules loaded from JSON files.
//
// Usage:
//
//	board, err := engine.NewBoard(6, 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, _ := engine.NewRuleEngineWithRules(4, engine.VerticalRun, engine.HorizontalRun)
//
//	board.Drop(engine.PlayerA, 0)
//	won := rules.Evaluate(board, engine.PlayerA)
//
// Game Rules:
//
// Players alternately drop a marker into a column and the marker falls to the
// lowest free row. A player wins by owning win_condition consecutive markers
// along any registered direction. A column that does not reach a row breaks
// horizontal and diagonal runs through that row.
package engine
