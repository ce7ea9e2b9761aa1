// Package scoring computes the value of a set of placements.
package scoring

import (
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
)

// Result is the score of a move along with per-placement base points
type Result struct {
	Placements     []model.ScoredPlacement
	LetterTotal    int // Sum of letter points after letter multipliers
	WordMultiplier int
	Total          int
}

// Service provides scoring functionality
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Score sums each placement's points times its letter multiplier, then applies
// the single highest word multiplier among the placed cells. Placements are
// assumed to be in bounds.
func (s *Service) Score(placements []model.Placement) Result {
	result := Result{
		Placements:     make([]model.ScoredPlacement, 0, len(placements)),
		WordMultiplier: 1,
	}
	for _, p := range placements {
		kind := board.PremiumKindOf(board.CoordToCell(p.Row, p.Col))
		points := tiles.PointsOf(p.Letter)

		result.Placements = append(result.Placements, model.ScoredPlacement{
			Letter: p.Letter,
			Row:    p.Row,
			Col:    p.Col,
			Points: points,
		})
		result.LetterTotal += points * board.LetterMultiplier(kind)
		result.WordMultiplier = max(result.WordMultiplier, board.WordMultiplier(kind))
	}
	result.Total = result.LetterTotal * result.WordMultiplier
	return result
}

// Interface for dependency injection
type ServiceInterface interface {
	Score(placements []model.Placement) Result
}

var _ ServiceInterface = (*Service)(nil)
