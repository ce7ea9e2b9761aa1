package tiles

import "github.com/mcoot/banglascrabble/internal/model"

// LetterInfo is the point value and bag count of one letter
type LetterInfo struct {
	Points int
	Count  int
}

// LetterEntry is a letter with its info, used where a stable order matters
type LetterEntry struct {
	Letter model.Letter
	LetterInfo
}

// Conjunct glyphs are single tiles even though they span several code points.
// য় ড় ঢ় are written decomposed because that is their NFC form.
var letterTable = []LetterEntry{
	// Vowels
	{"অ", LetterInfo{1, 8}},
	{"আ", LetterInfo{1, 7}},
	{"ই", LetterInfo{1, 6}},
	{"ঈ", LetterInfo{2, 4}},
	{"উ", LetterInfo{2, 4}},
	{"ঊ", LetterInfo{3, 2}},
	{"ঋ", LetterInfo{8, 1}},
	{"এ", LetterInfo{1, 6}},
	{"ঐ", LetterInfo{4, 2}},
	{"ও", LetterInfo{2, 4}},
	{"ঔ", LetterInfo{4, 2}},

	// Consonants
	{"ক", LetterInfo{2, 6}},
	{"খ", LetterInfo{4, 3}},
	{"গ", LetterInfo{3, 4}},
	{"ঘ", LetterInfo{5, 2}},
	{"ঙ", LetterInfo{6, 2}},
	{"চ", LetterInfo{4, 3}},
	{"ছ", LetterInfo{5, 2}},
	{"জ", LetterInfo{3, 4}},
	{"ঝ", LetterInfo{6, 2}},
	{"ঞ", LetterInfo{7, 1}},
	{"ট", LetterInfo{3, 4}},
	{"ঠ", LetterInfo{5, 2}},
	{"ড", LetterInfo{4, 3}},
	{"ঢ", LetterInfo{6, 2}},
	{"ণ", LetterInfo{3, 4}},
	{"ত", LetterInfo{2, 6}},
	{"থ", LetterInfo{4, 3}},
	{"দ", LetterInfo{2, 6}},
	{"ধ", LetterInfo{4, 3}},
	{"ন", LetterInfo{1, 8}},
	{"প", LetterInfo{2, 5}},
	{"ফ", LetterInfo{4, 3}},
	{"ব", LetterInfo{2, 5}},
	{"ভ", LetterInfo{4, 3}},
	{"ম", LetterInfo{2, 5}},
	{"য", LetterInfo{3, 4}},
	{"র", LetterInfo{1, 8}},
	{"ল", LetterInfo{2, 5}},
	{"শ", LetterInfo{3, 4}},
	{"ষ", LetterInfo{4, 3}},
	{"স", LetterInfo{2, 5}},
	{"হ", LetterInfo{3, 4}},
	{"\u09AF\u09BC", LetterInfo{5, 2}}, // য়
	{"\u09A1\u09BC", LetterInfo{5, 2}}, // ড়
	{"\u09A2\u09BC", LetterInfo{6, 2}}, // ঢ়
	{"ৎ", LetterInfo{7, 1}},

	// Signs
	{"ং", LetterInfo{4, 3}},
	{"ঃ", LetterInfo{6, 2}},
	{"ঁ", LetterInfo{7, 1}},

	// Conjuncts
	{"ক্ষ", LetterInfo{5, 2}},
	{"জ্ঞ", LetterInfo{6, 2}},
	{"ক্র", LetterInfo{4, 2}},
	{"গ্র", LetterInfo{4, 2}},
	{"ত্র", LetterInfo{4, 2}},
	{"দ্র", LetterInfo{4, 2}},
	{"প্র", LetterInfo{4, 2}},
	{"ব্র", LetterInfo{4, 2}},
	{"ম্র", LetterInfo{4, 2}},
	{"শ্র", LetterInfo{5, 2}},
	{"স্র", LetterInfo{4, 2}},
	{"হ্র", LetterInfo{5, 2}},

	// Blank
	{model.BlankLetter, LetterInfo{0, 2}},
}

var letterIndex = func() map[model.Letter]LetterInfo {
	m := make(map[model.Letter]LetterInfo, len(letterTable))
	for _, e := range letterTable {
		m[e.Letter] = e.LetterInfo
	}
	return m
}()

var totalTiles = func() int {
	total := 0
	for _, e := range letterTable {
		total += e.Count
	}
	return total
}()
