// Package tiles owns the letter table and the bag of tiles a session draws from.
package tiles

import (
	"slices"

	"github.com/mcoot/banglascrabble/internal/dependencies/random"
	"github.com/mcoot/banglascrabble/internal/model"
)

// Service provides tile economy operations
type Service struct {
	random random.Random
}

// New creates a new tiles Service
func New(rnd random.Random) *Service {
	return &Service{random: rnd}
}

// LetterTable returns a copy of the fixed letter table
func (s *Service) LetterTable() map[model.Letter]LetterInfo {
	m := make(map[model.Letter]LetterInfo, len(letterIndex))
	for k, v := range letterIndex {
		m[k] = v
	}
	return m
}

// Letters returns the letter table in display order
func (s *Service) Letters() []LetterEntry {
	return slices.Clone(letterTable)
}

// TotalTiles returns the number of tiles in a full bag
func (s *Service) TotalTiles() int {
	return totalTiles
}

// BuildBag returns a freshly shuffled bag holding every tile once per count unit
func (s *Service) BuildBag() []model.Letter {
	bag := make([]model.Letter, 0, totalTiles)
	for _, e := range letterTable {
		for range e.Count {
			bag = append(bag, e.Letter)
		}
	}
	random.Shuffle(s.random, len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	return bag
}

// Draw removes the first n letters of bag. Callers ask for at most len(bag).
func (s *Service) Draw(bag []model.Letter, n int) (drawn, remaining []model.Letter, err error) {
	return Draw(bag, n)
}

// PointsOf returns the point value of letter; unknown letters and blanks score 0
func (s *Service) PointsOf(letter model.Letter) int {
	return PointsOf(letter)
}

// Draw removes the first n letters of bag without modifying it
func Draw(bag []model.Letter, n int) (drawn, remaining []model.Letter, err error) {
	if n < 0 || n > len(bag) {
		return nil, nil, model.ErrInsufficientTiles
	}
	return slices.Clone(bag[:n]), slices.Clone(bag[n:]), nil
}

// PointsOf returns the point value of letter; unknown letters and blanks score 0
func PointsOf(letter model.Letter) int {
	return letterIndex[letter].Points
}

// IsKnown reports whether letter is in the table
func IsKnown(letter model.Letter) bool {
	_, ok := letterIndex[letter]
	return ok
}

// Interface for dependency injection
type ServiceInterface interface {
	LetterTable() map[model.Letter]LetterInfo
	Letters() []LetterEntry
	TotalTiles() int
	BuildBag() []model.Letter
	Draw(bag []model.Letter, n int) (drawn, remaining []model.Letter, err error)
	PointsOf(letter model.Letter) int
}

var _ ServiceInterface = (*Service)(nil)
