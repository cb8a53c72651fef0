// Package results keeps a ledger of finished games.
//
// PostgresStore writes to a game_results table through pgx and is used
// when DATABASE_URL is set. MemoryStore keeps a bounded list in memory
// otherwise. Both implement service.ResultRecorder.
package results
