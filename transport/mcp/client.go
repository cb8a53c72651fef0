package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/connect-n/game/engine"
	"github.com/wricardo/connect-n/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Connect-N",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Connect-N - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players (A and B) take turns dropping markers into columns. A marker falls
to the lowest free row. The first player to line up win_condition markers
along an enabled rule (vertical, horizontal, diagonal) wins.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: board, current player, winner
- drop: drop the current player's marker into a column - requires intent explanation
- bulk_drop: several drops in sequence, players alternate - requires intent explanation
- reset_game: start over on the same session
- move_history: past drops
- list_configs: board sizes and rule sets
- game_instructions: complete rules
- describe_cell: what occupies (column, row); row 0 is the bottom
- recent_results: recently finished games

NOTE: The 'intent' parameter on drop/bulk_drop is a rubber duck - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, player to move and winner",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drop",
		Description: "Drop the current player's marker into a column",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"column": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Column index (0-based, left to right)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this drop (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before dropping",
				},
			},
			Required: []string{"session_id", "column"},
		},
	}, c.handleDrop)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_drop",
		Description: fmt.Sprintf("Execute several drops in sequence, alternating players. Stops at the first rejected drop or when someone wins. At most %d drops per call.", engine.MaxBulkDrops),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"columns": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer", "minimum": 0},
					"description": "Columns to drop into, in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before dropping",
				},
			},
			Required: []string{"session_id", "columns"},
		},
	}, c.handleBulkDrop)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to an empty board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get drop history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe a single board position: whether it is in bounds, occupied, by whom, and the height of its column. Row 0 is the bottom row.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column index (0-based)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row index (0-based from the bottom)",
				},
			},
			Required: []string{"session_id", "column", "row"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "recent_results",
		Description: "List recently finished games with winner and winning rule",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default 10)",
				},
			},
		},
	}, c.handleRecentResults)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

// apiCall performs a REST request. Rejected drops (409/422) still carry a
// result body, which is decoded into result.
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		if (resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity) && result != nil {
			return json.Unmarshal(data, result)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.Unmarshal(data, result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	if configID == "" {
		configID, _ = args["config_name"].(string)
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.GameOver {
			status = "won by " + s.GameState.Winner.String()
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleDrop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/drop")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, ok := intArg(args, "column")
	if !ok {
		return mcp.NewToolResultError("column is required"), nil
	}
	reset, _ := args["reset"].(bool)

	body := map[string]interface{}{
		"column": column,
		"reset":  reset,
	}

	var result service.DropResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDropResult(&result)), nil
}

func (c *Client) handleBulkDrop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/bulk-drop")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reset, _ := args["reset"].(bool)

	raw, _ := args["columns"].([]interface{})
	columns := make([]int, 0, len(raw))
	for i, v := range raw {
		n, ok := intArg(map[string]interface{}{"v": v}, "v")
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("columns[%d] is not an integer", i)), nil
		}
		columns = append(columns, n)
	}
	if len(columns) == 0 {
		return mcp.NewToolResultError("columns must contain at least one column"), nil
	}

	body := map[string]interface{}{
		"columns": columns,
		"reset":   reset,
	}

	var result service.BulkDropResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID, _ := args["session_id"].(string)
	return mcp.NewToolResultText(formatBulkDropResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		rules := make([]string, 0, len(config.Rules))
		for _, r := range config.Rules {
			rules = append(rules, string(r))
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %d columns x %d rows, connect %d, rules: %s\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Columns, config.Rows, config.WinCondition, strings.Join(rules, ", "))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Connect-N - Complete Instructions

GAME OBJECTIVE:
Be the first player to line up N of your markers, where N is the session's
win_condition. Players A and B alternate turns; the config decides who starts.

BOARD:
• The board has a fixed number of columns and rows
• Columns are numbered from 0 on the left
• Rows are numbered from 0 at the bottom
• A dropped marker lands on top of the column's existing stack
• A column that reaches the row capacity is full

BOARD LEGEND:
• A - marker of player A
• B - marker of player B
• . - empty position

WIN RULES (only the rules enabled in the config count):
• vertical   - N markers stacked consecutively in one column
• horizontal - N markers side by side in one row, with no gap
• diagonal   - N markers along either diagonal direction

REJECTED DROPS:
• invalid_column - the column index is outside the board
• column_full    - the column has no free row left
• game_over      - somebody already won; reset to play again
A rejected drop does not change the board or pass the turn.

MOVE COMMANDS:
• drop {column}       - one marker for the player to move
• bulk_drop {columns} - several drops, players alternate each step;
                        stops at the first rejection or at the winning drop
• reset_game          - empty board, history is kept

STRATEGY NOTES FOR AGENTS:
• Read current_player before dropping; bulk_drop alternates players for you
• Check possible_moves to avoid full columns
• Block any run of N-1 the opponent can complete on their next drop
• Use describe_cell to double-check a position when the rendering is unclear
• Center columns take part in more winning windows than edge columns

VICTORY CONDITIONS:
The drop that completes a run ends the game immediately. The winner and the
rule that fired are reported in the state and in recent_results.

Good luck and connect them all!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	column, okCol := intArg(args, "column")
	row, okRow := intArg(args, "row")
	if !okCol || !okRow {
		return mcp.NewToolResultError("column and row are required"), nil
	}
	path, err := sessionPath(args, fmt.Sprintf("/cells/%d/%d", column, row))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info engine.CellInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCellInfo(&info)), nil
}

func (c *Client) handleRecentResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, ok := intArg(arguments(request), "limit")
	if !ok || limit <= 0 {
		limit = 10
	}

	var response struct {
		Count   int                   `json:"count"`
		Results []*service.GameResult `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/results?limit=%d", limit), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResults(response.Results)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// renderState draws the board of a decoded state
func renderState(state *engine.GameState) string {
	b, err := engine.BoardFromColumns(state.ColumnCount, state.RowCapacity, state.Columns)
	if err != nil {
		return strings.Join(state.RowsView, "\n") + "\n"
	}
	return engine.RenderBoard(b)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board: %dx%d | Connect %d | Moves: %d\n",
		state.ColumnCount, state.RowCapacity, state.WinCondition, state.CurrentMovesCount)
	if !state.GameOver {
		fmt.Fprintf(&b, "To move: %s\n", state.CurrentPlayer)
	}
	b.WriteString("\n")
	b.WriteString(renderState(state))

	if len(state.PossibleMoves) > 0 && !state.GameOver {
		b.WriteString("Possible columns: ")
		b.WriteString(joinInts(state.PossibleMoves))
		b.WriteString("\n")
	}

	if state.GameOver {
		if state.Winner.Valid() {
			fmt.Fprintf(&b, "\n🎉 VICTORY! Player %s wins (%s)", state.Winner, state.WinningRule)
			if len(state.WinningCells) > 0 {
				fmt.Fprintf(&b, "\nWinning cells (column,row): %s", formatCells(state.WinningCells))
			}
		} else {
			b.WriteString("\nGAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatDropResult(result *service.DropResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Drop successful\n")
	} else {
		fmt.Fprintf(&b, "✗ Drop rejected (%s)\n", result.ErrorCode)
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: player %s → column %d, row %d", s.Player, s.Column, s.Row)
		if s.WinningRule != "" {
			fmt.Fprintf(&b, " completes a %s run", s.WinningRule)
		}
		b.WriteString("\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkDropResult(sessionID string, result *service.BulkDropResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d drops (start: %s, next: %s)\n",
		result.DropsExecuted, result.RequestedDrops, result.StartPlayer, result.EndPlayer)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d drops\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on drop %d: %s [%s]\n", result.StoppedOnDrop, result.StoppedReason, result.StopReasonCode)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			line := fmt.Sprintf("%d. %s → column %d, row %d", s.Idx, s.Player, s.Column, s.Row)
			if s.WinningRule != "" {
				line += fmt.Sprintf(" ★ %s", s.WinningRule)
			}
			b.WriteString(line + "\n")
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			if event.Type == service.EventDrop {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatCellInfo(info *engine.CellInfo) string {
	if !info.InBounds {
		return fmt.Sprintf("Cell (%d,%d) is outside the board", info.Column, info.Row)
	}
	occupant := "empty"
	if info.Occupied {
		occupant = "player " + info.Player.String()
	}
	return fmt.Sprintf("Cell column=%d row=%d: %s\nColumn height: %d (next drop lands on row %d)",
		info.Column, info.Row, occupant, info.Height, info.Height)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) | Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗ " + move.Error
		}
		line := fmt.Sprintf("%d. %s → column %d", move.MoveNumber, move.Player, move.Column)
		if move.Success {
			line += fmt.Sprintf(" (row %d)", move.Row)
		}
		if move.WinningRule != "" {
			line += fmt.Sprintf(" ★ %s", move.WinningRule)
		}
		fmt.Fprintf(&b, "%s %s\n", line, status)
	}

	return b.String()
}

func formatResults(results []*service.GameResult) string {
	if len(results) == 0 {
		return "No finished games yet"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Recent Results (%d):\n\n", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: player %s won by %s in %d moves (%s, %dx%d connect %d) at %s\n",
			r.SessionID, r.Winner, r.WinningRule, r.Moves, r.ConfigName,
			r.Columns, r.Rows, r.WinCondition, r.FinishedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func formatCells(cells [][2]int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("(%d,%d)", c[0], c[1])
	}
	return strings.Join(parts, " ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
