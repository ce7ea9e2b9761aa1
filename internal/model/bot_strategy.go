package model

// Bot strategy constants
const (
	BotStrategyWord = "word"
	BotStrategyPass = "pass"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyWord:
		return "Wordsmith"
	case BotStrategyPass:
		return "Passer"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyWord, BotStrategyPass}
}
