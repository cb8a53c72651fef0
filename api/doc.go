// Package api provides the HTTP REST API for Connect-N sessions.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session ({"config_id": "tiny"})
//   - GET    /api/sessions              list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified      multi-session view (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}         session details
//   - DELETE /api/sessions/{id}         delete a session
//
// Game operations:
//   - GET  /api/sessions/{id}/state                 current GameState
//   - POST /api/sessions/{id}/drop                  {"column": 3, "reset": false}
//   - POST /api/sessions/{id}/bulk-drop             {"columns": [3, 4, 3], "reset": false}
//   - POST /api/sessions/{id}/reset                 start over, history is kept
//   - GET  /api/sessions/{id}/history               paginated moves (?page=&limit=&order=)
//   - GET  /api/sessions/{id}/cells/{column}/{row}  what occupies one position
//
// Configurations and results:
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//   - GET  /api/results?limit=N   recently finished games
//   - GET  /api/health
//
// A rejected drop still returns a DropResult body carrying error_code:
// 422 for invalid_column, 409 for column_full and game_over. Unknown
// sessions and configs return 404. Other errors are JSON {"error": "..."}.
//
// After every state change the server pushes a state_update message and
// the resulting game events to websocket clients at /ws?session=<id>.
package api
