package model

// Board dimensions
const (
	BoardSize  = 15
	CellCount  = BoardSize * BoardSize
	CenterCell = CellCount / 2 // row 7, col 7
)

// Letter is one tile face. Conjunct glyphs span several code points but
// are a single Letter for rack, board and scoring purposes.
type Letter string

// BlankLetter is the face of the zero-point wildcard tile
const BlankLetter Letter = "*"

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Board is the shared grid, row-major. An empty string means an empty cell.
// The array type keeps the length fixed at CellCount.
type Board [CellCount]Letter

// IsOccupied returns true if the cell at index holds a letter
func (b *Board) IsOccupied(index int) bool {
	if index < 0 || index >= CellCount {
		return false
	}
	return b[index] != ""
}

// OccupiedCount returns the number of filled cells
func (b *Board) OccupiedCount() int {
	count := 0
	for _, l := range b {
		if l != "" {
			count++
		}
	}
	return count
}

// Rows returns the board as a BoardSize x BoardSize grid
func (b *Board) Rows() [][]Letter {
	rows := make([][]Letter, BoardSize)
	for row := range rows {
		rows[row] = make([]Letter, BoardSize)
		copy(rows[row], b[row*BoardSize:(row+1)*BoardSize])
	}
	return rows
}

// PremiumKind is the bonus attached to a board cell
type PremiumKind string

const (
	PremiumNone         PremiumKind = "none"
	PremiumCenter       PremiumKind = "center"
	PremiumTripleWord   PremiumKind = "tripleWord"
	PremiumDoubleWord   PremiumKind = "doubleWord"
	PremiumTripleLetter PremiumKind = "tripleLetter"
	PremiumDoubleLetter PremiumKind = "doubleLetter"
)

// Placement is a single letter a player proposes to put on the board
type Placement struct {
	Letter Letter
	Row    int
	Col    int
}

// Position returns the placement's board position
func (p Placement) Position() Position {
	return Position{Row: p.Row, Col: p.Col}
}

// ScoredPlacement is a committed placement with its base point value
type ScoredPlacement struct {
	Letter Letter
	Row    int
	Col    int
	Points int
}
