// Package explorer adapts a gpt.Model to the session.Explorer contract.
package explorer

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/atomicstack/token-explorer/internal/gpt"
	"github.com/atomicstack/token-explorer/internal/session"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownToken is returned when a token id is outside the vocabulary.
var ErrUnknownToken = errors.New("explorer: unknown token id")

// Explorer holds the active prompt as token ids and answers queries about it
// with the model. The last next-token distribution is cached, since drivers
// re-read candidates far more often than the prompt changes.
type Explorer struct {
	model  *gpt.Model
	tokens []int

	cachedFor []int
	cached    []float64
}

var (
	_ session.Explorer   = (*Explorer)(nil)
	_ session.EndTokener = (*Explorer)(nil)
)

// New returns an explorer with an empty prompt.
func New(model *gpt.Model) *Explorer {
	return &Explorer{model: model}
}

// SetPrompt encodes text with the model vocabulary. Characters the model has
// never seen are dropped, which Prompt reflects.
func (e *Explorer) SetPrompt(text string) error {
	if e.model == nil {
		return errors.New("explorer: no model loaded")
	}
	e.tokens = e.model.Vocab.Encode(text)
	return nil
}

func (e *Explorer) Prompt() string {
	if e.model == nil {
		return ""
	}
	return e.model.Vocab.Decode(e.tokens)
}

func (e *Explorer) PromptTokens() []int {
	return append([]int(nil), e.tokens...)
}

func (e *Explorer) PromptTokenStrings() []string {
	if e.model == nil {
		return nil
	}
	out := make([]string, len(e.tokens))
	for i, id := range e.tokens {
		out[i] = e.model.Vocab.Label(id)
	}
	return out
}

func (e *Explorer) PromptTokenProbabilities() ([]float64, error) {
	if e.model == nil {
		return nil, errors.New("explorer: no model loaded")
	}
	return e.model.SequenceProbs(e.tokens), nil
}

// TopNTokens ranks the whole vocabulary by next-token probability, keeps
// the labels that fuzzy-match search, and returns the first n. Probabilities
// are taken from the full distribution and are not renormalized.
func (e *Explorer) TopNTokens(n int, search string) ([]session.Candidate, error) {
	if e.model == nil {
		return nil, errors.New("explorer: no model loaded")
	}
	if n <= 0 {
		return nil, nil
	}
	probs := e.nextProbs()
	cands := make([]session.Candidate, 0, len(probs))
	for id, p := range probs {
		label := e.model.Vocab.Label(id)
		if search != "" && !fuzzy.MatchFold(search, label) {
			continue
		}
		cands = append(cands, session.Candidate{TokenID: id, Token: label, Probability: p})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Probability != cands[j].Probability {
			return cands[i].Probability > cands[j].Probability
		}
		return cands[i].TokenID < cands[j].TokenID
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	return cands, nil
}

func (e *Explorer) nextProbs() []float64 {
	if e.cached != nil && slices.Equal(e.cachedFor, e.tokens) {
		return e.cached
	}
	e.cached = e.model.NextProbs(e.tokens)
	e.cachedFor = append(e.cachedFor[:0], e.tokens...)
	return e.cached
}

func (e *Explorer) AppendToken(tokenID int) error {
	if e.model == nil {
		return errors.New("explorer: no model loaded")
	}
	if !e.model.Vocab.Contains(tokenID) {
		return fmt.Errorf("%w: %d", ErrUnknownToken, tokenID)
	}
	e.tokens = append(e.tokens, tokenID)
	return nil
}

func (e *Explorer) PopToken() (int, bool) {
	if len(e.tokens) == 0 {
		return 0, false
	}
	last := e.tokens[len(e.tokens)-1]
	e.tokens = e.tokens[:len(e.tokens)-1]
	return last, true
}

// EndTokenID is the model's shared BOS/END control token.
func (e *Explorer) EndTokenID() (int, bool) {
	if e.model == nil {
		return 0, false
	}
	return e.model.Vocab.BOS, true
}
