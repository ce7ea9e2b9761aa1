package board

import "github.com/mcoot/banglascrabble/internal/model"

var (
	tripleWordCells = []int{0, 7, 14, 105, 119, 210, 217, 224}
	doubleWordCells = []int{
		16, 28, 32, 42, 48, 56, 64, 70,
		154, 160, 168, 176, 182, 192, 196, 208,
	}
	tripleLetterCells = []int{20, 24, 76, 80, 84, 88, 136, 140, 144, 148, 200, 204}
	doubleLetterCells = []int{
		3, 11, 36, 38, 45, 52, 59, 92, 96, 98, 102, 108,
		116, 122, 126, 128, 132, 165, 172, 179, 186, 188, 213, 221,
	}
)

var layout = func() [model.CellCount]model.PremiumKind {
	var l [model.CellCount]model.PremiumKind
	for i := range l {
		l[i] = model.PremiumNone
	}
	mark := func(cells []int, kind model.PremiumKind) {
		for _, c := range cells {
			l[c] = kind
		}
	}
	mark(tripleWordCells, model.PremiumTripleWord)
	mark(doubleWordCells, model.PremiumDoubleWord)
	mark(tripleLetterCells, model.PremiumTripleLetter)
	mark(doubleLetterCells, model.PremiumDoubleLetter)
	l[model.CenterCell] = model.PremiumCenter
	return l
}()

// PremiumKindOf returns the bonus of the cell at index; out of range is none
func PremiumKindOf(index int) model.PremiumKind {
	if index < 0 || index >= model.CellCount {
		return model.PremiumNone
	}
	return layout[index]
}

// Layout returns the premium kind of every cell, row-major
func Layout() []model.PremiumKind {
	out := make([]model.PremiumKind, model.CellCount)
	copy(out, layout[:])
	return out
}

// LetterMultiplier returns the factor applied to a letter placed on kind
func LetterMultiplier(kind model.PremiumKind) int {
	switch kind {
	case model.PremiumTripleLetter:
		return 3
	case model.PremiumDoubleLetter:
		return 2
	default:
		return 1
	}
}

// WordMultiplier returns the factor applied to a move touching kind.
// The center cell carries no multiplier.
func WordMultiplier(kind model.PremiumKind) int {
	switch kind {
	case model.PremiumTripleWord:
		return 3
	case model.PremiumDoubleWord:
		return 2
	default:
		return 1
	}
}
