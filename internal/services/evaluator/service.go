// Package evaluator decides whether a proposed move is legal and what it scores.
package evaluator

import (
	"strings"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/board"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/scoring"
)

// Evaluation is the outcome of a legal move
type Evaluation struct {
	Word       string
	Placements []model.ScoredPlacement
	Score      int
	// UsedLetters are the rack entries consumed, in placement order
	UsedLetters []model.Letter
}

// WordValidator decides whether a string is an acceptable word
type WordValidator interface {
	IsValidWord(word string) bool
}

// Service validates and scores moves. It never mutates its inputs.
type Service struct {
	words   WordValidator
	scoring scoring.ServiceInterface
}

// New creates a new evaluator Service
func New(words WordValidator, scoring scoring.ServiceInterface) *Service {
	return &Service{
		words:   words,
		scoring: scoring,
	}
}

// Evaluate checks placements against the board and rack and scores them.
// Checks run in a fixed order and the first failure is returned.
func (s *Service) Evaluate(b *model.Board, rack []model.Letter, placements []model.Placement) (*Evaluation, error) {
	if len(placements) == 0 {
		return nil, model.ErrEmptyMove
	}

	normalized := make([]model.Placement, len(placements))
	for i, p := range placements {
		p.Letter = model.Letter(dictionary.Normalize(string(p.Letter)))
		normalized[i] = p
	}

	for _, p := range normalized {
		if !board.InBounds(p.Row, p.Col) {
			return nil, model.ErrOutOfBounds
		}
	}

	for _, p := range normalized {
		if b.IsOccupied(board.CoordToCell(p.Row, p.Col)) {
			return nil, model.ErrCellOccupied
		}
	}

	seen := make(map[int]struct{}, len(normalized))
	for _, p := range normalized {
		cell := board.CoordToCell(p.Row, p.Col)
		if _, ok := seen[cell]; ok {
			return nil, model.ErrDuplicateCell
		}
		seen[cell] = struct{}{}
	}

	used, err := takeFromRack(rack, normalized)
	if err != nil {
		return nil, err
	}

	// Blanks score nothing and add nothing to the word
	var word strings.Builder
	for _, p := range normalized {
		if p.Letter == model.BlankLetter {
			continue
		}
		word.WriteString(string(p.Letter))
	}
	if !s.words.IsValidWord(word.String()) {
		return nil, model.ErrNotAWord
	}

	scored := s.scoring.Score(normalized)
	return &Evaluation{
		Word:        word.String(),
		Placements:  scored.Placements,
		Score:       scored.Total,
		UsedLetters: used,
	}, nil
}

// takeFromRack matches placement letters against the rack as a multiset
func takeFromRack(rack []model.Letter, placements []model.Placement) ([]model.Letter, error) {
	available := make(map[model.Letter]int, len(rack))
	for _, l := range rack {
		available[model.Letter(dictionary.Normalize(string(l)))]++
	}
	used := make([]model.Letter, 0, len(placements))
	for _, p := range placements {
		if available[p.Letter] == 0 {
			return nil, model.ErrRackShortage
		}
		available[p.Letter]--
		used = append(used, p.Letter)
	}
	return used, nil
}

// RemoveLetters returns rack without one instance of each used letter.
// Letters are compared in NFC form.
func RemoveLetters(rack, used []model.Letter) []model.Letter {
	pending := make(map[model.Letter]int, len(used))
	for _, l := range used {
		pending[model.Letter(dictionary.Normalize(string(l)))]++
	}
	out := make([]model.Letter, 0, len(rack))
	for _, l := range rack {
		key := model.Letter(dictionary.Normalize(string(l)))
		if pending[key] > 0 {
			pending[key]--
			continue
		}
		out = append(out, l)
	}
	return out
}

// Interface for dependency injection
type ServiceInterface interface {
	Evaluate(b *model.Board, rack []model.Letter, placements []model.Placement) (*Evaluation, error)
}

var _ ServiceInterface = (*Service)(nil)
