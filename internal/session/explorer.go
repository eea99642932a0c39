package session

// Candidate is a possible next token with its model-assigned probability.
type Candidate struct {
	TokenID     int     `json:"token_id"`
	Token       string  `json:"token"`
	Probability float64 `json:"probability"`
}

// Explorer is the model capability a Session drives. It remembers the active
// prompt internally.
type Explorer interface {
	// SetPrompt tokenizes text and makes it the active context.
	SetPrompt(text string) error
	// Prompt returns the canonical text for the active context, which may
	// differ from the text passed to SetPrompt.
	Prompt() string
	PromptTokens() []int
	PromptTokenStrings() []string
	// PromptTokenProbabilities returns one probability per prompt token. The
	// first position has no context and is reported as 0.5.
	PromptTokenProbabilities() ([]float64, error)
	// TopNTokens returns at most n candidates for the next token ranked by
	// descending probability. A non-empty search restricts the candidates.
	TopNTokens(n int, search string) ([]Candidate, error)
	AppendToken(tokenID int) error
	// PopToken removes and returns the most recent token id; ok is false
	// when the prompt holds no tokens.
	PopToken() (tokenID int, ok bool)
}

// EndTokener is implemented by explorers whose model has an end-of-sequence
// token.
type EndTokener interface {
	EndTokenID() (int, bool)
}

// Rand is the random source used by weighted sampling. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}
