package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/connect-n/game/engine"
	"github.com/wricardo/connect-n/game/service"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("%s returned error: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("%s returned no content", name)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("%s returned non-text content", name)
	}
	return text.Text, result.IsError
}

func testState() *engine.GameState {
	state := engine.InitGameStateFromConfig(&engine.GameConfig{
		Name:         "Tiny",
		Columns:      3,
		Rows:         3,
		WinCondition: 3,
		Rules:        []engine.RuleKind{engine.VerticalRun},
	})
	state.Columns[1] = []engine.Player{engine.PlayerA}
	state.CurrentPlayer = engine.PlayerB
	state.CurrentMovesCount = 1
	state.PossibleMoves = []int{0, 1, 2}
	return state
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ok":
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "abc"})
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		case "/rejected":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(service.DropResult{Success: false, ErrorCode: service.CodeColumnFull})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	var ok map[string]interface{}
	if err := client.apiCall(ctx, "GET", "/ok", nil, &ok); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok["id"] != "abc" {
		t.Errorf("Expected id abc, got %v", ok["id"])
	}

	err := client.apiCall(ctx, "GET", "/missing", nil, &ok)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}

	var rejected service.DropResult
	if err := client.apiCall(ctx, "POST", "/rejected", map[string]int{"column": 0}, &rejected); err != nil {
		t.Fatalf("Rejected drop should decode, got %v", err)
	}
	if rejected.ErrorCode != service.CodeColumnFull {
		t.Errorf("Expected column_full, got %q", rejected.ErrorCode)
	}

	if err := client.apiCall(ctx, "GET", "/boom", nil, nil); err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestHandleCreateSession(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "tiny",
			CreatedAt:  time.Now(),
			GameState:  testState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, isErr := callTool(t, client.handleCreateSession, "create_session", map[string]interface{}{"config_id": "tiny"})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if gotBody["config_id"] != "tiny" {
		t.Errorf("Expected config_id tiny in body, got %v", gotBody)
	}
	for _, want := range []string{"Created session: ab12", "To move: B", "| . A . |"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}

func TestHandleDrop(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]interface{}
		status     int
		response   interface{}
		wantColumn int
		wantText   string
		wantError  bool
	}{
		{
			name:       "column zero is valid",
			args:       map[string]interface{}{"session_id": "ab12", "column": float64(0), "intent": "start on the left"},
			status:     http.StatusOK,
			response:   service.DropResult{Success: true, GameState: testState(), Step: &service.StepInfo{Idx: 1, Column: 0, Row: 0, Player: engine.PlayerA, Success: true}},
			wantColumn: 0,
			wantText:   "✓ Drop successful",
		},
		{
			name:       "rejected drop is reported as text",
			args:       map[string]interface{}{"session_id": "ab12", "column": float64(1)},
			status:     http.StatusConflict,
			response:   service.DropResult{Success: false, ErrorCode: service.CodeColumnFull, GameState: testState()},
			wantColumn: 1,
			wantText:   "✗ Drop rejected (column_full)",
		},
		{
			name:      "missing column",
			args:      map[string]interface{}{"session_id": "ab12"},
			wantText:  "column is required",
			wantError: true,
		},
		{
			name:      "missing session",
			args:      map[string]interface{}{"column": float64(2)},
			wantText:  "session_id is required",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Column *int `json:"column"`
			}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/sessions/ab12/drop" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			text, isErr := callTool(t, NewClient(server.URL).handleDrop, "drop", tt.args)
			if isErr != tt.wantError {
				t.Errorf("Expected IsError=%v, got %v (%s)", tt.wantError, isErr, text)
			}
			if !strings.Contains(text, tt.wantText) {
				t.Errorf("Expected %q in output:\n%s", tt.wantText, text)
			}
			if !tt.wantError && (got.Column == nil || *got.Column != tt.wantColumn) {
				t.Errorf("Expected column %d to be sent, got %v", tt.wantColumn, got.Column)
			}
		})
	}
}

func TestHandleBulkDrop(t *testing.T) {
	var got struct {
		Columns []int `json:"columns"`
	}
	final := testState()
	final.GameOver = true
	final.Winner = engine.PlayerA
	final.WinningRule = engine.VerticalRun

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(service.BulkDropResult{
			RequestedDrops: 6,
			DropsExecuted:  5,
			GameState:      final,
			StoppedReason:  "Player A wins",
			StopReasonCode: service.CodeVictory,
			StoppedOnDrop:  5,
			StartPlayer:    engine.PlayerA,
			EndPlayer:      engine.PlayerB,
			Steps: []service.StepInfo{
				{Idx: 5, Column: 0, Row: 2, Player: engine.PlayerA, Success: true, WinningRule: engine.VerticalRun},
			},
			Events: []service.GameEvent{
				{Type: service.EventDrop, Message: "A dropped"},
				{Type: service.EventVictory, Message: "A wins"},
			},
		})
	}))
	defer server.Close()

	text, isErr := callTool(t, NewClient(server.URL).handleBulkDrop, "bulk_drop", map[string]interface{}{
		"session_id": "ab12",
		"columns":    []interface{}{float64(0), float64(1), float64(0), float64(1), float64(0), float64(2)},
	})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if len(got.Columns) != 6 || got.Columns[5] != 2 {
		t.Errorf("Unexpected columns sent: %v", got.Columns)
	}
	for _, want := range []string{"Executed 5/6 drops", "[victory]", "★ vertical", "victory: A wins", "VICTORY! Player A wins (vertical)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "A dropped") {
		t.Error("Per-drop events should be omitted from the summary")
	}
}

func TestHandleBulkDrop_InvalidColumns(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	text, isErr := callTool(t, client.handleBulkDrop, "bulk_drop", map[string]interface{}{
		"session_id": "ab12",
		"columns":    []interface{}{float64(1), "left"},
	})
	if !isErr || !strings.Contains(text, "columns[1]") {
		t.Errorf("Expected element error, got %s", text)
	}

	text, isErr = callTool(t, client.handleBulkDrop, "bulk_drop", map[string]interface{}{"session_id": "ab12"})
	if !isErr || !strings.Contains(text, "at least one column") {
		t.Errorf("Expected empty columns error, got %s", text)
	}
}

func TestHandleMoveHistory(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Moves: []engine.MoveHistoryEntry{
				{MoveNumber: 2, Player: engine.PlayerB, Column: 3, Success: false, Error: "column is full"},
				{MoveNumber: 1, Player: engine.PlayerA, Column: 3, Row: 0, Success: true},
			},
			TotalMoves: 2,
			Page:       1,
			TotalPages: 1,
		})
	}))
	defer server.Close()

	text, _ := callTool(t, NewClient(server.URL).handleMoveHistory, "move_history", map[string]interface{}{
		"session_id": "ab12",
		"page":       float64(1),
		"limit":      float64(5),
		"order":      "asc",
	})
	if query != "limit=5&order=asc&page=1" {
		t.Errorf("Unexpected query %q", query)
	}
	if !strings.Contains(text, "2. B → column 3 ✗ column is full") {
		t.Errorf("Expected failed move line in:\n%s", text)
	}
	if !strings.Contains(text, "1. A → column 3 (row 0) ✓") {
		t.Errorf("Expected successful move line in:\n%s", text)
	}
}

func TestHandleDescribeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/cells/1/0" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(engine.CellInfo{Column: 1, Row: 0, Player: engine.PlayerA, Occupied: true, InBounds: true, Height: 1})
	}))
	defer server.Close()

	text, isErr := callTool(t, NewClient(server.URL).handleDescribeCell, "describe_cell", map[string]interface{}{
		"session_id": "ab12",
		"column":     float64(1),
		"row":        float64(0),
	})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if !strings.Contains(text, "player A") || !strings.Contains(text, "Column height: 1") {
		t.Errorf("Unexpected output:\n%s", text)
	}
}

func TestHandleListConfigs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]service.ConfigInfo{{
			ConfigID:     "classic",
			Name:         "Classic",
			Columns:      7,
			Rows:         6,
			WinCondition: 4,
			Rules:        []engine.RuleKind{engine.VerticalRun, engine.HorizontalRun, engine.DiagonalRun},
		}})
	}))
	defer server.Close()

	text, _ := callTool(t, NewClient(server.URL).handleListConfigs, "list_configs", nil)
	if !strings.Contains(text, "config_id: classic") || !strings.Contains(text, "7 columns x 6 rows, connect 4, rules: vertical, horizontal, diagonal") {
		t.Errorf("Unexpected output:\n%s", text)
	}
}

func TestHandleRecentResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "10" {
			t.Errorf("Expected default limit 10, got %q", r.URL.Query().Get("limit"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"results": []service.GameResult{{
				SessionID: "ab12", ConfigName: "classic", Winner: engine.PlayerB,
				WinningRule: engine.DiagonalRun, Moves: 14, Columns: 7, Rows: 6, WinCondition: 4,
				FinishedAt: time.Now(),
			}},
		})
	}))
	defer server.Close()

	text, _ := callTool(t, NewClient(server.URL).handleRecentResults, "recent_results", map[string]interface{}{})
	if !strings.Contains(text, "ab12: player B won by diagonal in 14 moves") {
		t.Errorf("Unexpected output:\n%s", text)
	}
}

func TestHandleGameState_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	text, isErr := callTool(t, NewClient(server.URL).handleGameState, "game_state", map[string]interface{}{"session_id": "nope"})
	if !isErr || text != "session not found" {
		t.Errorf("Expected tool error, got %v %q", isErr, text)
	}
}

func TestHandleGameInstructions(t *testing.T) {
	text, _ := callTool(t, NewClient("http://localhost").handleGameInstructions, "game_instructions", nil)
	for _, want := range []string{"vertical", "horizontal", "diagonal", "column_full"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}

	text := formatGameState(testState())
	for _, want := range []string{"Board: 3x3 | Connect 3 | Moves: 1", "To move: B", "Possible columns: 0,1,2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}

	won := testState()
	won.Columns[1] = []engine.Player{engine.PlayerA, engine.PlayerA, engine.PlayerA}
	won.GameOver = true
	won.Winner = engine.PlayerA
	won.WinningRule = engine.VerticalRun
	won.WinningCells = [][2]int{{1, 0}, {1, 1}, {1, 2}}

	text = formatGameState(won)
	for _, want := range []string{"Player A wins (vertical)", "Winning cells (column,row): (1,0) (1,1) (1,2)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "To move:") {
		t.Errorf("Expected no turn line after a win:\n%s", text)
	}
}
