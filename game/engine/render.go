package engine

import "strings"

// EmptyCellChar marks a position with no marker in rendered rows
const EmptyCellChar = '.'

// CellChar returns the single-character form of a marker
func CellChar(p Player) byte {
	switch p {
	case PlayerA:
		return 'A'
	case PlayerB:
		return 'B'
	default:
		return EmptyCellChar
	}
}

// RenderRows renders the board as text, top row first
func RenderRows(b *Board) []string {
	if b == nil {
		return nil
	}
	rows := make([]string, 0, b.RowCapacity())
	line := make([]byte, b.ColumnCount())
	for row := b.RowCapacity() - 1; row >= 0; row-- {
		for col := 0; col < b.ColumnCount(); col++ {
			p, _ := b.MarkerAt(col, row)
			line[col] = CellChar(p)
		}
		rows = append(rows, string(line))
	}
	return rows
}

// RenderBoard renders the board with a column index footer
func RenderBoard(b *Board) string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, row := range RenderRows(b) {
		sb.WriteString("|")
		for i := 0; i < len(row); i++ {
			sb.WriteByte(' ')
			sb.WriteByte(row[i])
		}
		sb.WriteString(" |\n")
	}
	sb.WriteString("+")
	sb.WriteString(strings.Repeat("--", b.ColumnCount()))
	sb.WriteString("-+\n ")
	for col := 0; col < b.ColumnCount(); col++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte('0' + col%10))
	}
	sb.WriteString("\n")
	return sb.String()
}
