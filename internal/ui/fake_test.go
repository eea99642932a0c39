package ui

import (
	"errors"
	"strings"

	"github.com/atomicstack/token-explorer/internal/session"
)

// fakeExplorer speaks a four-token vocabulary: a, b, c and an end token. The
// next-token distribution never changes, which keeps rendering predictable.
type fakeExplorer struct {
	tokens     []int
	failAppend bool
}

var (
	fakeLabels = []string{"a", "b", "c", "<END>"}
	fakeProbs  = []float64{0.5, 0.3, 0.15, 0.05}
)

const fakeEnd = 3

func (f *fakeExplorer) SetPrompt(text string) error {
	f.tokens = f.tokens[:0]
	for text != "" {
		if strings.HasPrefix(text, "<END>") {
			f.tokens = append(f.tokens, fakeEnd)
			text = text[len("<END>"):]
			continue
		}
		if idx := strings.IndexByte("abc", text[0]); idx >= 0 {
			f.tokens = append(f.tokens, idx)
		}
		text = text[1:]
	}
	return nil
}

func (f *fakeExplorer) Prompt() string {
	return strings.Join(f.PromptTokenStrings(), "")
}

func (f *fakeExplorer) PromptTokens() []int {
	return append([]int(nil), f.tokens...)
}

func (f *fakeExplorer) PromptTokenStrings() []string {
	out := make([]string, len(f.tokens))
	for i, id := range f.tokens {
		out[i] = fakeLabels[id]
	}
	return out
}

func (f *fakeExplorer) PromptTokenProbabilities() ([]float64, error) {
	out := make([]float64, len(f.tokens))
	for i, id := range f.tokens {
		out[i] = fakeProbs[id]
	}
	if len(out) > 0 {
		out[0] = 0.5
	}
	return out, nil
}

func (f *fakeExplorer) TopNTokens(n int, search string) ([]session.Candidate, error) {
	var out []session.Candidate
	for id, label := range fakeLabels {
		if search != "" && !strings.Contains(strings.ToLower(label), strings.ToLower(search)) {
			continue
		}
		out = append(out, session.Candidate{TokenID: id, Token: label, Probability: fakeProbs[id]})
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeExplorer) AppendToken(id int) error {
	if f.failAppend {
		return errors.New("backend unavailable")
	}
	if id < 0 || id >= len(fakeLabels) {
		return errors.New("unknown token")
	}
	f.tokens = append(f.tokens, id)
	return nil
}

func (f *fakeExplorer) PopToken() (int, bool) {
	if len(f.tokens) == 0 {
		return 0, false
	}
	id := f.tokens[len(f.tokens)-1]
	f.tokens = f.tokens[:len(f.tokens)-1]
	return id, true
}

func (f *fakeExplorer) EndTokenID() (int, bool) {
	return fakeEnd, true
}

type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }
