// Package session provides session management for the Connect-N game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management and expiry
//   - Pluggable persistence (JSON files or Redis)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine, so drops in one session never affect
// another. SessionPersistence is implemented by FilePersistence (one JSON
// file per session) and RedisPersistence (one JSON value per key under
// RedisKeyPrefix). Both store the board as per-column stacks and rebuild it
// on load by replaying each column bottom to top.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters. Custom IDs may use letters, digits,
// '-' and '_'. Lookups are case-insensitive.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.Engine.Drop(3)
//	manager.Save(sess.ID)
package session
