package problemgen

// Config controls the generation Client.
type Config struct {
	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxExclusions is the maximum number of already-accepted questions
	// listed in the prompt for deduplication. Zero lists all of them.
	MaxExclusions int
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     4000,
		Temperature:   0.7,
		MaxExclusions: 20,
	}
}
