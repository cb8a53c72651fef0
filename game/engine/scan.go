package engine

// step is the offset between consecutive cells of a window
type step struct {
	dCol, dRow int
}

var ruleSteps = map[RuleKind][]step{
	VerticalRun:   {{0, 1}},
	HorizontalRun: {{1, 0}},
	DiagonalRun:   {{1, 1}, {1, -1}},
}

// verticalRun checks every window of n cells going up a column
func verticalRun(b *Board, p Player, n int) bool {
	return firstWindow(b, p, n, ruleSteps[VerticalRun]) != nil
}

// horizontalRun checks every window of n columns at every row.
// A column that does not reach the row breaks the window.
func horizontalRun(b *Board, p Player, n int) bool {
	return firstWindow(b, p, n, ruleSteps[HorizontalRun]) != nil
}

// diagonalRun checks rising (+1,+1) and falling (+1,-1) windows
func diagonalRun(b *Board, p Player, n int) bool {
	return firstWindow(b, p, n, ruleSteps[DiagonalRun]) != nil
}

// firstWindow returns the cells of the first window of n cells held by p
// along any of steps, or nil. Start cells are bounded so that every window
// lies inside the board.
func firstWindow(b *Board, p Player, n int, steps []step) [][2]int {
	if n < 1 {
		return nil
	}
	for _, s := range steps {
		lastCol := b.columnCount - 1 - (n-1)*s.dCol
		firstRow, lastRow := 0, b.rowCapacity-1
		switch {
		case s.dRow > 0:
			lastRow = b.rowCapacity - n
		case s.dRow < 0:
			firstRow = n - 1
		}
		for col := 0; col <= lastCol; col++ {
			for row := firstRow; row <= lastRow; row++ {
				if windowMatches(b, col, row, s.dCol, s.dRow, p, n) {
					return window(col, row, s.dCol, s.dRow, n)
				}
			}
		}
	}
	return nil
}

// windowMatches reports whether the n cells starting at (startCol, startRow)
// and stepping by (dCol, dRow) all hold p. Missing cells fail the window.
func windowMatches(b *Board, startCol, startRow, dCol, dRow int, p Player, n int) bool {
	col, row := startCol, startRow
	for i := 0; i < n; i++ {
		marker, ok := b.MarkerAt(col, row)
		if !ok || marker != p {
			return false
		}
		col += dCol
		row += dRow
	}
	return true
}

// WinningCells returns the cells of the first winning window found for p
// under rule, or nil when there is none. Cells are (column, row) pairs.
func WinningCells(b *Board, rule RuleKind, p Player, n int) [][2]int {
	steps, ok := ruleSteps[rule]
	if b == nil || !ok || !p.Valid() {
		return nil
	}
	return firstWindow(b, p, n, steps)
}

func window(col, row, dCol, dRow, n int) [][2]int {
	cells := make([][2]int, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, [2]int{col + i*dCol, row + i*dRow})
	}
	return cells
}
