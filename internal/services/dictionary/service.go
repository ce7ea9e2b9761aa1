// Package dictionary validates Bangla words against an embedded lexicon and
// a set of script well-formedness rules.
package dictionary

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/mcoot/banglascrabble/internal/model"
)

//go:embed lexicon.txt
var embeddedLexicon string

// MaxSuggestions caps the number of words Suggest returns
const MaxSuggestions = 10

// Service provides word validation functionality
type Service struct {
	logger *slog.Logger

	mu    sync.RWMutex
	words map[string]struct{}
	order []string // Insertion order, used for stable suggestions
}

// New creates a Service preloaded with the embedded lexicon
func New(logger *slog.Logger) *Service {
	s := &Service{
		logger: logger.With(slog.String("component", "dictionary")),
		words:  make(map[string]struct{}),
	}
	// The embedded lexicon is a compile-time asset; a read error here cannot happen
	_ = s.load(strings.NewReader(embeddedLexicon))
	return s
}

// Normalize trims whitespace and applies NFC normalization
func Normalize(word string) string {
	return norm.NFC.String(strings.TrimSpace(word))
}

// LoadFromFile adds the words of a file (one word per line) to the lexicon
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dictionary file: %w", err)
	}
	defer file.Close()

	before := s.WordCount()
	if err := s.load(file); err != nil {
		return fmt.Errorf("read dictionary file: %w", err)
	}
	s.logger.InfoContext(ctx, "dictionary file loaded",
		slog.String("path", path),
		slog.Int("added", s.WordCount()-before))
	return nil
}

// LoadWords adds words to the lexicon
func (s *Service) LoadWords(words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		s.addLocked(w)
	}
	return nil
}

func (s *Service) load(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		s.addLocked(line)
	}
	return scanner.Err()
}

func (s *Service) addLocked(word string) {
	w := Normalize(word)
	if w == "" {
		return
	}
	if _, ok := s.words[w]; ok {
		return
	}
	s.words[w] = struct{}{}
	s.order = append(s.order, w)
}

// Contains reports whether word is a lexicon member
func (s *Service) Contains(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.words[Normalize(word)]
	return ok
}

// IsValidWord accepts lexicon members and otherwise any well-formed Bangla
// string: Bangla block runes (plus ZWNJ/ZWJ) without doubled signs and with
// every hasanta followed by a consonant.
func (s *Service) IsValidWord(word string) bool {
	w := Normalize(word)
	if w == "" {
		return false
	}
	if s.Contains(w) {
		return true
	}
	return IsWellFormed(w)
}

// WordCount returns the number of words in the lexicon
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Interface for dependency injection
type ServiceInterface interface {
	IsValidWord(word string) bool
	Contains(word string) bool
	Meaning(word string) (string, bool)
	Suggest(rack []model.Letter, limit int) []Suggestion
	WordCount() int
	LoadFromFile(ctx context.Context, path string) error
	LoadWords(words []string) error
}

var _ ServiceInterface = (*Service)(nil)
