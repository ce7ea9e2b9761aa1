package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedRandom struct{ picks []int }

func (f *fixedRandom) Intn(n int) int {
	if len(f.picks) == 0 {
		return 0
	}
	v := f.picks[0]
	f.picks = f.picks[1:]
	return v
}

func TestShuffleSwapsFromTheEnd(t *testing.T) {
	items := []int{0, 1, 2, 3}
	r := &fixedRandom{picks: []int{0, 0, 0}}

	Shuffle(r, len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	// i=3 swaps with 0, i=2 swaps with 0, i=1 swaps with 0
	assert.Equal(t, []int{1, 2, 3, 0}, items)
}

func TestShuffleIdentityWhenPickingSelf(t *testing.T) {
	items := []string{"a", "b", "c"}
	r := &fixedRandom{picks: []int{2, 1}}

	Shuffle(r, len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestCryptoRandomIntnRange(t *testing.T) {
	r := New()
	for range 100 {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
}
