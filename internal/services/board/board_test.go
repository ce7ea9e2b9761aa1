package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/banglascrabble/internal/model"
)

func TestLayoutHasEveryCell(t *testing.T) {
	l := Layout()
	require.Len(t, l, 225)

	counts := make(map[model.PremiumKind]int)
	for _, k := range l {
		counts[k]++
	}
	assert.Equal(t, 1, counts[model.PremiumCenter])
	assert.Equal(t, 8, counts[model.PremiumTripleWord])
	assert.Equal(t, 16, counts[model.PremiumDoubleWord])
	assert.Equal(t, 12, counts[model.PremiumTripleLetter])
	assert.Equal(t, 24, counts[model.PremiumDoubleLetter])
	assert.Equal(t, 225-1-8-16-12-24, counts[model.PremiumNone])
}

func TestLayoutIsSymmetric(t *testing.T) {
	for i := range model.CellCount {
		assert.Equal(t, PremiumKindOf(i), PremiumKindOf(model.CellCount-1-i), "cell %d", i)
	}
}

func TestLayoutReturnsCopy(t *testing.T) {
	l := Layout()
	l[0] = model.PremiumNone
	assert.Equal(t, model.PremiumTripleWord, PremiumKindOf(0))
}

func TestPremiumKindOf(t *testing.T) {
	assert.Equal(t, model.PremiumTripleWord, PremiumKindOf(0))
	assert.Equal(t, model.PremiumDoubleLetter, PremiumKindOf(3))
	assert.Equal(t, model.PremiumTripleLetter, PremiumKindOf(20))
	assert.Equal(t, model.PremiumDoubleWord, PremiumKindOf(16))
	assert.Equal(t, model.PremiumCenter, PremiumKindOf(112))
	assert.Equal(t, model.PremiumNone, PremiumKindOf(1))
	assert.Equal(t, model.PremiumNone, PremiumKindOf(-1))
	assert.Equal(t, model.PremiumNone, PremiumKindOf(225))
}

func TestMultipliers(t *testing.T) {
	assert.Equal(t, 3, LetterMultiplier(model.PremiumTripleLetter))
	assert.Equal(t, 2, LetterMultiplier(model.PremiumDoubleLetter))
	assert.Equal(t, 1, LetterMultiplier(model.PremiumTripleWord))

	assert.Equal(t, 3, WordMultiplier(model.PremiumTripleWord))
	assert.Equal(t, 2, WordMultiplier(model.PremiumDoubleWord))
	assert.Equal(t, 1, WordMultiplier(model.PremiumCenter))
	assert.Equal(t, 1, WordMultiplier(model.PremiumTripleLetter))
}

func TestCoordinates(t *testing.T) {
	assert.Equal(t, 112, CoordToCell(7, 7))
	assert.Equal(t, 20, CoordToCell(1, 5))

	row, col := CellToCoord(224)
	assert.Equal(t, 14, row)
	assert.Equal(t, 14, col)

	assert.Equal(t, model.Position{Row: 1, Col: 5}, PositionOf(20))

	for i := range model.CellCount {
		r, c := CellToCoord(i)
		assert.Equal(t, i, CoordToCell(r, c))
	}
}

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(0, 0))
	assert.True(t, InBounds(14, 14))
	assert.False(t, InBounds(-1, 0))
	assert.False(t, InBounds(0, 15))
	assert.False(t, InBounds(15, 0))
}
