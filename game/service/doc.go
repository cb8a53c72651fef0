// Package service provides the business logic layer for the Connect-N game.
//
// The service package implements:
//   - Multi-session game management
//   - Drop processing with machine-friendly rejection codes
//   - Bulk drops with per-step traces
//   - Move history pagination
//   - Game event publishing and finished-game results
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// EventPublisher and ResultRecorder are optional sinks for game events and
// finished games.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithPublisher(events.NewNopPublisher()),
//		service.WithResultRecorder(results.NewMemoryStore(100)),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Drop(ctx, info.ID, 3, false)
//
// Rejected drops are not errors: DropResult.ErrorCode carries invalid_column,
// column_full or game_over and the board is left unchanged.
package service
