package engine

import (
	"errors"
	"strings"
	"testing"
)

var _ Engine = (*GameEngine)(nil)

// createTestConfig returns a small valid configuration
func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:         "test",
		Description:  "Test board",
		Columns:      5,
		Rows:         4,
		WinCondition: 3,
		Rules:        []RuleKind{VerticalRun, HorizontalRun, DiagonalRun},
		Messages: Messages{
			Welcome: "Welcome",
			Victory: "%s won by %s",
		},
	}
}

func newTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t)
	state := e.GetState()

	if state.ColumnCount != 5 || state.RowCapacity != 4 {
		t.Errorf("Expected 5x4 board, got %dx%d", state.ColumnCount, state.RowCapacity)
	}
	if state.CurrentPlayer != PlayerA {
		t.Errorf("Expected PlayerA to start, got %v", state.CurrentPlayer)
	}
	if state.Message != "Welcome" {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if len(state.Columns) != 5 {
		t.Errorf("Expected 5 column stacks, got %d", len(state.Columns))
	}
	if len(state.PossibleMoves) != 5 {
		t.Errorf("Expected 5 possible moves, got %v", state.PossibleMoves)
	}
	if len(state.RowsView) != 4 || state.RowsView[0] != "....." {
		t.Errorf("Unexpected rows view %v", state.RowsView)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Columns = 0
	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	e, err := NewEngineWithDefaults()
	if err != nil {
		t.Fatalf("NewEngineWithDefaults failed: %v", err)
	}
	if e.GetConfig().Name != "classic" {
		t.Errorf("Expected classic config, got %s", e.GetConfig().Name)
	}
	if e.rules.WinCondition() != 4 {
		t.Errorf("Expected win condition 4, got %d", e.rules.WinCondition())
	}
}

func TestEngine_DropAlternatesPlayers(t *testing.T) {
	e := newTestEngine(t)

	entry, err := e.Drop(0)
	if err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if entry.Player != PlayerA || entry.Row != 0 || !entry.Success {
		t.Errorf("Unexpected entry %+v", entry)
	}
	if e.CurrentPlayer() != PlayerB {
		t.Errorf("Expected PlayerB to move, got %v", e.CurrentPlayer())
	}
	if e.GetState().Message != "Player B to move" {
		t.Errorf("Unexpected turn message %q", e.GetState().Message)
	}

	entry, _ = e.Drop(0)
	if entry.Player != PlayerB || entry.Row != 1 {
		t.Errorf("Expected B at row 1, got %+v", entry)
	}
	if got := e.GetState().Columns[0]; len(got) != 2 || got[1] != PlayerB {
		t.Errorf("Unexpected column 0: %v", got)
	}
}

func TestEngine_DropRejected(t *testing.T) {
	e := newTestEngine(t)

	t.Run("invalid column", func(t *testing.T) {
		entry, err := e.Drop(9)
		if !errors.Is(err, ErrInvalidColumn) {
			t.Fatalf("Expected ErrInvalidColumn, got %v", err)
		}
		if entry == nil || entry.Success || entry.Row != -1 {
			t.Errorf("Expected failed history entry, got %+v", entry)
		}
		if e.CurrentPlayer() != PlayerA {
			t.Error("Rejected drop must not pass the turn")
		}
		if e.GetState().Message != e.GetConfig().Messages.InvalidColumn {
			t.Errorf("Unexpected message %q", e.GetState().Message)
		}
	})

	t.Run("full column", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			if _, err := e.Drop(4); err != nil {
				t.Fatalf("Drop %d failed: %v", i, err)
			}
		}
		before := e.CurrentPlayer()
		_, err := e.Drop(4)
		if !errors.Is(err, ErrColumnFull) {
			t.Fatalf("Expected ErrColumnFull, got %v", err)
		}
		if e.CurrentPlayer() != before {
			t.Error("Rejected drop must not pass the turn")
		}
		if e.CanDrop(4) {
			t.Error("Expected CanDrop false for full column")
		}
		for _, c := range e.GetPossibleMoves() {
			if c == 4 {
				t.Error("Full column listed as possible move")
			}
		}
	})
}

func TestEngine_Win(t *testing.T) {
	e := newTestEngine(t)

	// A: 0,1,2 on row 0; B: stacks on 0,1
	for _, col := range []int{0, 0, 1, 1, 2} {
		if _, err := e.Drop(col); err != nil {
			t.Fatalf("Drop %d failed: %v", col, err)
		}
	}

	state := e.GetState()
	if !state.GameOver {
		t.Fatal("Expected game over")
	}
	if state.Winner != PlayerA || state.WinningRule != HorizontalRun {
		t.Errorf("Expected A to win horizontally, got %v/%s", state.Winner, state.WinningRule)
	}
	if state.Message != "A won by horizontal" {
		t.Errorf("Unexpected victory message %q", state.Message)
	}
	wantCells := [][2]int{{0, 0}, {1, 0}, {2, 0}}
	if len(state.WinningCells) != len(wantCells) {
		t.Fatalf("Expected winning cells %v, got %v", wantCells, state.WinningCells)
	}
	for i := range wantCells {
		if state.WinningCells[i] != wantCells[i] {
			t.Errorf("Winning cell %d: expected %v, got %v", i, wantCells[i], state.WinningCells[i])
		}
	}
	last := e.GetLastMove()
	if last == nil || last.WinningRule != HorizontalRun {
		t.Errorf("Expected last move to carry the winning rule, got %+v", last)
	}
	if len(state.PossibleMoves) != 0 {
		t.Errorf("Expected no possible moves after win, got %v", state.PossibleMoves)
	}

	if _, err := e.Drop(3); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
	if e.CanDrop(3) {
		t.Error("Expected CanDrop false after game over")
	}
}

func TestEngine_ResetClearsWinningCells(t *testing.T) {
	e := newTestEngine(t)
	for _, col := range []int{0, 0, 1, 1, 2} {
		e.Drop(col)
	}
	if len(e.GetState().WinningCells) == 0 {
		t.Fatal("Expected winning cells after a win")
	}
	if state := e.Reset(); state.WinningCells != nil || state.WinningRule != "" {
		t.Errorf("Expected reset to clear the win, got %v/%q", state.WinningCells, state.WinningRule)
	}
}

func TestEngine_SnapshotIsIndependent(t *testing.T) {
	e := newTestEngine(t)
	e.Drop(0)

	snap := e.Snapshot()
	e.Drop(0)
	e.Drop(1)

	if len(snap.Columns[0]) != 1 || len(snap.Columns[1]) != 0 {
		t.Errorf("Snapshot columns changed with the engine: %v", snap.Columns)
	}
	if len(snap.MoveHistory) != 1 || snap.CurrentMovesCount != 1 {
		t.Errorf("Snapshot history changed with the engine: %d entries", len(snap.MoveHistory))
	}
	if snap.CurrentPlayer != PlayerB {
		t.Errorf("Expected snapshot to keep B to move, got %v", snap.CurrentPlayer)
	}

	snap.Columns[0][0] = PlayerB
	snap.RowsView[0] = "changed"
	if state := e.GetState(); state.Columns[0][0] != PlayerA || state.RowsView[0] == "changed" {
		t.Error("Editing a snapshot changed the engine state")
	}
}

func TestEngine_RulesLimitWins(t *testing.T) {
	config := createTestConfig()
	config.Rules = []RuleKind{VerticalRun}
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	for _, col := range []int{0, 0, 1, 1, 2} {
		e.Drop(col)
	}
	if e.IsGameOver() {
		t.Error("Horizontal row must not win when only vertical runs count")
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t)
	e.Drop(0)
	e.Drop(1)
	e.Drop(99)

	state := e.Reset()
	if state.TotalMoves != 3 || len(state.MoveHistory) != 3 {
		t.Errorf("Expected cumulative history of 3, got %d/%d", state.TotalMoves, len(state.MoveHistory))
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Expected current segment to be cleared")
	}
	if markerTotal(e.GetBoard()) != 0 {
		t.Error("Expected empty board after reset")
	}
	if state.CurrentPlayer != PlayerA || state.GameOver {
		t.Error("Expected fresh game after reset")
	}

	entry, _ := e.Drop(2)
	if entry.MoveNumber != 4 {
		t.Errorf("Expected move number 4 after reset, got %d", entry.MoveNumber)
	}
}

func TestEngine_SetState(t *testing.T) {
	e := newTestEngine(t)
	e.Drop(0)
	e.Drop(0)
	e.Drop(3)
	saved := e.GetState()

	restored := newTestEngine(t)
	if err := restored.SetState(saved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if restored.GetBoard().HeightOf(0) != 2 || restored.GetBoard().HeightOf(3) != 1 {
		t.Error("Board not rebuilt from state")
	}
	if restored.CurrentPlayer() != PlayerB {
		t.Errorf("Expected PlayerB to move, got %v", restored.CurrentPlayer())
	}

	t.Run("nil state", func(t *testing.T) {
		if err := restored.SetState(nil); err == nil {
			t.Error("Expected error for nil state")
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		bad := InitGameStateFromConfig(DefaultConfig())
		if err := restored.SetState(bad); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Expected ErrInvalidDimensions, got %v", err)
		}
	})

	t.Run("overfull column", func(t *testing.T) {
		bad := InitGameStateFromConfig(createTestConfig())
		bad.Columns[0] = []Player{PlayerA, PlayerB, PlayerA, PlayerB, PlayerA}
		if err := restored.SetState(bad); !errors.Is(err, ErrColumnFull) {
			t.Errorf("Expected ErrColumnFull, got %v", err)
		}
	})
}

func TestEngine_BulkDrop(t *testing.T) {
	e := newTestEngine(t)

	results := e.BulkDrop([]int{0, 7, 0, 1, 1, 2, 3})
	// The win on column 2 stops the sequence before column 3
	want := []bool{true, false, true, true, true, true}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %v", len(want), results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("Result %d: expected %v, got %v", i, want[i], results[i])
		}
	}
	if e.Winner() != PlayerA {
		t.Errorf("Expected PlayerA to win, got %v", e.Winner())
	}
}

func TestEngine_DescribeCell(t *testing.T) {
	e := newTestEngine(t)
	e.Drop(1)

	info := e.DescribeCell(1, 0)
	if !info.Occupied || info.Player != PlayerA || info.Height != 1 || !info.InBounds {
		t.Errorf("Unexpected cell info %+v", info)
	}

	info = e.DescribeCell(1, 3)
	if info.Occupied || !info.InBounds {
		t.Errorf("Expected empty in-bounds cell, got %+v", info)
	}

	info = e.DescribeCell(9, 0)
	if info.InBounds || info.Occupied {
		t.Errorf("Expected out-of-bounds cell, got %+v", info)
	}
}

func TestEngine_SetConfig(t *testing.T) {
	e := newTestEngine(t)
	e.Drop(0)

	if err := e.SetConfig(DefaultConfig()); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if e.GetState().ColumnCount != 7 || markerTotal(e.GetBoard()) != 0 {
		t.Error("Expected new empty classic board")
	}

	bad := createTestConfig()
	bad.Messages.Victory = "no placeholders"
	if err := e.SetConfig(bad); err == nil {
		t.Error("Expected validation error")
	}
	if e.GetConfig().Name != "classic" {
		t.Error("Config must be unchanged after failed SetConfig")
	}
}

func TestEngine_GetBoardIsCopy(t *testing.T) {
	e := newTestEngine(t)
	b := e.GetBoard()
	b.Drop(PlayerB, 0)

	if e.GetBoard().HeightOf(0) != 0 {
		t.Error("Mutating GetBoard result must not affect the engine")
	}
	if !strings.Contains(RenderBoard(e.GetBoard()), "| . . . . . |") {
		t.Error("Expected empty rendered rows")
	}
}
