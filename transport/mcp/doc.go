// Package mcp exposes the Connect-N REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one REST request
// against the server, and the JSON reply is rendered as text for the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board rendering, player to move and winner
//   - drop: one marker into a column
//   - bulk_drop: several drops in sequence, alternating players
//   - reset_game, move_history
//   - list_configs, game_instructions
//   - describe_cell: inspect a single (column, row) position
//   - recent_results: finished games
//
// Transport Modes:
//
// The returned MCP server can be served over stdio or mounted on an HTTP
// route with server.NewStreamableHTTPServer.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
