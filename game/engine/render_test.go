package engine

import "testing"

func TestRenderRows(t *testing.T) {
	b, _ := BoardFromColumns(3, 3, [][]Player{{PlayerA, PlayerB}, {}, {PlayerB}})

	rows := RenderRows(b)
	want := []string{"...", "B..", "A.B"}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Row %d: expected %q, got %q", i, want[i], rows[i])
		}
	}

	if RenderRows(nil) != nil {
		t.Error("Expected nil rows for nil board")
	}
}

func TestRenderBoard(t *testing.T) {
	b, _ := BoardFromColumns(2, 2, [][]Player{{PlayerA}, {PlayerB}})

	want := "| . . |\n| A B |\n+-----+\n  0 1\n"
	if got := RenderBoard(b); got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}
