package engine

import "fmt"

// Board is a gravity-constrained grid stored as one stack per column.
// Within a column index 0 is the bottom (first dropped) marker.
type Board struct {
	columnCount int
	rowCapacity int
	columns     [][]Player
}

// NewBoard creates an empty board with columnCount columns of rowCapacity rows
func NewBoard(columnCount, rowCapacity int) (*Board, error) {
	if columnCount < MinBoardSize || rowCapacity < MinBoardSize {
		return nil, fmt.Errorf("%w: columns=%d rows=%d", ErrInvalidDimensions, columnCount, rowCapacity)
	}

	columns := make([][]Player, columnCount)
	for i := range columns {
		columns[i] = make([]Player, 0, rowCapacity)
	}

	return &Board{
		columnCount: columnCount,
		rowCapacity: rowCapacity,
		columns:     columns,
	}, nil
}

// Drop appends the player's marker to the given column and returns the player.
// The board is left untouched when the drop is rejected.
func (b *Board) Drop(p Player, column int) (Player, error) {
	if !p.Valid() {
		return NoPlayer, fmt.Errorf("%w: %d", ErrInvalidPlayer, int(p))
	}
	if column < 0 || column >= b.columnCount {
		return NoPlayer, fmt.Errorf("%w: %d is outside [0, %d)", ErrInvalidColumn, column, b.columnCount)
	}
	if len(b.columns[column]) >= b.rowCapacity {
		return NoPlayer, fmt.Errorf("%w: column %d holds %d markers", ErrColumnFull, column, b.rowCapacity)
	}

	b.columns[column] = append(b.columns[column], p)
	return p, nil
}

// HeightOf returns the number of markers in a column, 0 for unknown columns
func (b *Board) HeightOf(column int) int {
	if column < 0 || column >= b.columnCount {
		return 0
	}
	return len(b.columns[column])
}

// MarkerAt returns the marker at (column, row) if one is present
func (b *Board) MarkerAt(column, row int) (Player, bool) {
	if column < 0 || column >= b.columnCount || row < 0 {
		return NoPlayer, false
	}
	col := b.columns[column]
	if row >= len(col) {
		return NoPlayer, false
	}
	return col[row], true
}

// ColumnCount returns the board width
func (b *Board) ColumnCount() int {
	return b.columnCount
}

// RowCapacity returns the maximum number of markers per column
func (b *Board) RowCapacity() int {
	return b.rowCapacity
}

// IsColumnFull reports whether a valid column has reached capacity
func (b *Board) IsColumnFull(column int) bool {
	return b.HeightOf(column) >= b.rowCapacity
}

// OpenColumns returns the indexes of columns that still accept a drop
func (b *Board) OpenColumns() []int {
	open := make([]int, 0, b.columnCount)
	for i, col := range b.columns {
		if len(col) < b.rowCapacity {
			open = append(open, i)
		}
	}
	return open
}

// Columns returns a copy of the column stacks
func (b *Board) Columns() [][]Player {
	out := make([][]Player, len(b.columns))
	for i, col := range b.columns {
		out[i] = append([]Player{}, col...)
	}
	return out
}

// Clone creates a deep copy of the board
func (b *Board) Clone() *Board {
	columns := make([][]Player, len(b.columns))
	for i, col := range b.columns {
		columns[i] = make([]Player, len(col), b.rowCapacity)
		copy(columns[i], col)
	}
	return &Board{
		columnCount: b.columnCount,
		rowCapacity: b.rowCapacity,
		columns:     columns,
	}
}

// BoardFromColumns rebuilds a board by replaying every column bottom to top.
// It fails when the stacks do not fit the given dimensions.
func BoardFromColumns(columnCount, rowCapacity int, stacks [][]Player) (*Board, error) {
	b, err := NewBoard(columnCount, rowCapacity)
	if err != nil {
		return nil, err
	}
	if len(stacks) > columnCount {
		return nil, fmt.Errorf("%w: %d stacks for %d columns", ErrInvalidDimensions, len(stacks), columnCount)
	}
	for c, stack := range stacks {
		for _, p := range stack {
			if _, err := b.Drop(p, c); err != nil {
				return nil, fmt.Errorf("column %d: %w", c, err)
			}
		}
	}
	return b, nil
}
