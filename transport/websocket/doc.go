// Package websocket pushes live game updates to browser and bot clients.
//
// A central Hub tracks clients per session. Clients connect with
// /ws?session=<id>; after each drop, bulk drop or reset the API server
// broadcasts a state_update message carrying the full GameState, followed
// by custom events such as "victory".
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
// Outgoing frames are single JSON documents:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"victory","data":{...}}
//
// Clients whose send buffer fills up are disconnected.
package websocket
