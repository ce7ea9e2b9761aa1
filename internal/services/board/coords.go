// Package board holds the static board geometry and premium layout.
package board

import "github.com/mcoot/banglascrabble/internal/model"

// InBounds reports whether row and col address a cell
func InBounds(row, col int) bool {
	return row >= 0 && row < model.BoardSize && col >= 0 && col < model.BoardSize
}

// CoordToCell returns the row-major index of (row, col).
// The result is only meaningful when InBounds(row, col).
func CoordToCell(row, col int) int {
	return row*model.BoardSize + col
}

// CellToCoord returns the row and column of a cell index
func CellToCoord(index int) (row, col int) {
	return index / model.BoardSize, index % model.BoardSize
}

// PositionOf returns the position of a cell index
func PositionOf(index int) model.Position {
	row, col := CellToCoord(index)
	return model.Position{Row: row, Col: col}
}
