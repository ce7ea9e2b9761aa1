package bot

import (
	"github.com/mcoot/banglascrabble/internal/dependencies/random"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
)

// Strategy decides a bot's move. No placements means the bot skips.
type Strategy interface {
	ChooseMove(snapshot *model.Snapshot, rack []model.Letter) []model.Placement
}

// Suggester lists lexicon words formable from a rack
type Suggester interface {
	Suggest(rack []model.Letter, limit int) []dictionary.Suggestion
}

// WordStrategy plays a lexicon word from its rack on the first free
// horizontal run, trying the centre row first and working outwards
type WordStrategy struct {
	words  Suggester
	random random.Random
}

// NewWordStrategy creates a new WordStrategy
func NewWordStrategy(words Suggester, rnd random.Random) *WordStrategy {
	return &WordStrategy{words: words, random: rnd}
}

// ChooseMove returns placements spelling one suggestion, or nil if none fits
func (s *WordStrategy) ChooseMove(snapshot *model.Snapshot, rack []model.Letter) []model.Placement {
	suggestions := s.words.Suggest(rack, dictionary.MaxSuggestions)
	if len(suggestions) == 0 {
		return nil
	}

	// Rotate so repeated games don't always open with the same word
	start := s.random.Intn(len(suggestions))
	for i := range suggestions {
		letters := suggestions[(start+i)%len(suggestions)].Letters
		if placements := placeHorizontally(&snapshot.Session.Board, letters); placements != nil {
			return placements
		}
	}
	return nil
}

// placeHorizontally finds the first run of empty cells long enough for letters
func placeHorizontally(b *model.Board, letters []model.Letter) []model.Placement {
	n := len(letters)
	if n == 0 || n > model.BoardSize {
		return nil
	}
	for _, row := range rowOrder() {
		run := 0
		for col := range model.BoardSize {
			if b.IsOccupied(board.CoordToCell(row, col)) {
				run = 0
				continue
			}
			run++
			if run == n {
				first := col - n + 1
				placements := make([]model.Placement, n)
				for i, l := range letters {
					placements[i] = model.Placement{Letter: l, Row: row, Col: first + i}
				}
				return placements
			}
		}
	}
	return nil
}

// rowOrder returns the centre row, then rows alternating above and below it
func rowOrder() []int {
	center := model.BoardSize / 2
	rows := []int{center}
	for d := 1; d <= center; d++ {
		rows = append(rows, center-d, center+d)
	}
	return rows
}

// PassStrategy always skips
type PassStrategy struct{}

// NewPassStrategy creates a new PassStrategy
func NewPassStrategy() *PassStrategy {
	return &PassStrategy{}
}

// ChooseMove always returns nil
func (s *PassStrategy) ChooseMove(*model.Snapshot, []model.Letter) []model.Placement {
	return nil
}

var (
	_ Strategy = (*WordStrategy)(nil)
	_ Strategy = (*PassStrategy)(nil)
)
