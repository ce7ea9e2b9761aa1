package dictionary

import (
	"cmp"
	"slices"

	"github.com/mcoot/banglascrabble/internal/model"
)

// Suggestion is a lexicon word together with the rack letters that spell it
type Suggestion struct {
	Word    string
	Letters []model.Letter
}

// Suggest returns lexicon words that can be spelled from rack, in lexicon
// order, at most limit (capped at MaxSuggestions) of them.
func (s *Service) Suggest(rack []model.Letter, limit int) []Suggestion {
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	units := make([]string, 0, len(rack))
	for _, l := range rack {
		units = append(units, Normalize(string(l)))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Suggestion
	for _, word := range s.order {
		letters, ok := Spell(word, units)
		if !ok {
			continue
		}
		out = append(out, Suggestion{Word: word, Letters: letters})
		if len(out) == limit {
			break
		}
	}
	return out
}

// Spell splits word into a sequence of the given letter units, each unit used
// at most once. Longer units are tried first; on a dead end the search backs up.
func Spell(word string, units []string) ([]model.Letter, bool) {
	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	// Longest first; equal lengths keep rack order
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(len(units[b]), len(units[a]))
	})

	used := make([]bool, len(units))
	var out []model.Letter

	var walk func(rest string) bool
	walk = func(rest string) bool {
		if rest == "" {
			return true
		}
		tried := make(map[string]bool)
		for _, i := range order {
			u := units[i]
			if used[i] || u == "" || tried[u] || len(u) > len(rest) || rest[:len(u)] != u {
				continue
			}
			tried[u] = true
			used[i] = true
			out = append(out, model.Letter(u))
			if walk(rest[len(u):]) {
				return true
			}
			out = out[:len(out)-1]
			used[i] = false
		}
		return false
	}

	if word == "" || !walk(word) {
		return nil, false
	}
	return out, true
}
