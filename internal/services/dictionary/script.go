package dictionary

const (
	hasanta = '\u09CD'
	nukta   = '\u09BC'
	zwnj    = '\u200C'
	zwj     = '\u200D'
)

func isBanglaRune(r rune) bool {
	return (r >= '\u0980' && r <= '\u09FF') || r == zwnj || r == zwj
}

func isConsonant(r rune) bool {
	return (r >= '\u0995' && r <= '\u09B9') || (r >= '\u09DC' && r <= '\u09DF')
}

// Candrabindu, anusvara and visarga
func isNasalSign(r rune) bool {
	return r >= '\u0981' && r <= '\u0983'
}

// IsWellFormed applies the script rules to an already normalized word
func IsWellFormed(word string) bool {
	runes := []rune(word)
	if len(runes) == 0 {
		return false
	}
	for i, r := range runes {
		if !isBanglaRune(r) {
			return false
		}
		var next rune
		hasNext := i+1 < len(runes)
		if hasNext {
			next = runes[i+1]
		}
		switch {
		case r == hasanta && (!hasNext || !isConsonant(next)):
			// Also covers a doubled hasanta
			return false
		case r == nukta && next == nukta:
			return false
		case isNasalSign(r) && hasNext && isNasalSign(next):
			return false
		}
	}
	return true
}
