package dictionary

var glosses = map[string]string{
	"বই":    "Book",
	"ঘর":    "House/Room",
	"পানি":  "Water",
	"ভাত":   "Rice",
	"মাছ":   "Fish",
	"গাছ":   "Tree",
	"ফুল":   "Flower",
	"পাখি":  "Bird",
	"ভালো":  "Good",
	"খারাপ": "Bad",
	"বড়":   "Big",
	"ছোট":   "Small",
	"লাল":   "Red",
	"নীল":   "Blue",
	"সবুজ":  "Green",
	"জল":    "Water",
	"কলম":   "Pen",
	"ফল":    "Fruit",
	"বন":    "Forest",
	"মন":    "Mind",
	"দল":    "Team",
}

// Meaning returns an English gloss for word, if one is known
func (s *Service) Meaning(word string) (string, bool) {
	m, ok := glosses[Normalize(word)]
	return m, ok
}
