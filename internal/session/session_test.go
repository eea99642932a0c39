package session

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExplorer maps whitespace-separated integers to token ids and always
// offers the same three candidates.
type fakeExplorer struct {
	text   string
	tokens []int
	top    []Candidate

	failSetPrompt string
	failTop       error
	failAppend    error
	end           int
	hasEnd        bool
	lastSearch    string
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		top: []Candidate{
			{TokenID: 10, Token: "A", Probability: 0.7},
			{TokenID: 20, Token: "B", Probability: 0.2},
			{TokenID: 30, Token: "C", Probability: 0.1},
		},
	}
}

func (f *fakeExplorer) SetPrompt(text string) error {
	if f.failSetPrompt != "" && text == f.failSetPrompt {
		return errors.New("backend unavailable")
	}
	tokens := []int{}
	for _, field := range strings.Fields(text) {
		id, err := strconv.Atoi(field)
		if err != nil {
			return err
		}
		tokens = append(tokens, id)
	}
	f.text = text
	f.tokens = tokens
	return nil
}

func (f *fakeExplorer) Prompt() string { return f.text }

func (f *fakeExplorer) PromptTokens() []int { return f.tokens }

func (f *fakeExplorer) PromptTokenStrings() []string {
	out := make([]string, len(f.tokens))
	for i, tok := range f.tokens {
		out[i] = strconv.Itoa(tok)
	}
	return out
}

func (f *fakeExplorer) PromptTokenProbabilities() ([]float64, error) {
	out := make([]float64, len(f.tokens))
	for i := range out {
		out[i] = 0.5
	}
	return out, nil
}

func (f *fakeExplorer) TopNTokens(n int, search string) ([]Candidate, error) {
	f.lastSearch = search
	if f.failTop != nil {
		return nil, f.failTop
	}
	top := f.top
	if search != "" {
		top = nil
		for _, c := range f.top {
			if strings.EqualFold(c.Token, search) {
				top = append(top, c)
			}
		}
	}
	if n < len(top) {
		top = top[:n]
	}
	return append([]Candidate(nil), top...), nil
}

func (f *fakeExplorer) AppendToken(tokenID int) error {
	if f.failAppend != nil {
		return f.failAppend
	}
	f.tokens = append(f.tokens, tokenID)
	f.syncText()
	return nil
}

func (f *fakeExplorer) PopToken() (int, bool) {
	if len(f.tokens) == 0 {
		return 0, false
	}
	last := f.tokens[len(f.tokens)-1]
	f.tokens = f.tokens[:len(f.tokens)-1]
	f.syncText()
	return last, true
}

func (f *fakeExplorer) EndTokenID() (int, bool) { return f.end, f.hasEnd }

func (f *fakeExplorer) syncText() {
	parts := make([]string, len(f.tokens))
	for i, tok := range f.tokens {
		parts[i] = strconv.Itoa(tok)
	}
	f.text = strings.Join(parts, " ")
}

// fixedRand returns the same draw every time.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

func newTestSession(t *testing.T, prompt string, opts ...Option) (*Session, *fakeExplorer) {
	t.Helper()
	explorer := newFakeExplorer()
	opts = append([]Option{WithPrompt(prompt), WithTokensToShow(3)}, opts...)
	s, err := New(explorer, opts...)
	require.NoError(t, err)
	return s, explorer
}

func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	require.NotEmpty(t, s.Prompts)
	require.GreaterOrEqual(t, s.PromptIndex, 0)
	require.Less(t, s.PromptIndex, len(s.Prompts))
	require.Equal(t, s.explorer.Prompt(), s.Prompts[s.PromptIndex])
	if len(s.DisplayedTokens) == 0 {
		require.Equal(t, 0, s.SelectedRow)
	} else {
		require.GreaterOrEqual(t, s.SelectedRow, 0)
		require.Less(t, s.SelectedRow, len(s.DisplayedTokens))
	}
}

func TestNewSeedsSingleBuffer(t *testing.T) {
	s, explorer := newTestSession(t, "1 2")

	assert.Equal(t, []string{"1 2"}, s.Prompts)
	assert.Equal(t, 0, s.PromptIndex)
	assert.Equal(t, 0, s.SelectedRow)
	assert.Len(t, s.DisplayedTokens, 3)
	assert.Equal(t, "1 2", explorer.text)
	assert.NotEmpty(t, s.ID)
}

func TestNewDefaultsTokensToShow(t *testing.T) {
	s, err := New(newFakeExplorer())
	require.NoError(t, err)
	assert.Equal(t, DefaultTokensToShow, s.TokensToShow)
	assert.Equal(t, []string{""}, s.Prompts)
}

func TestNewPropagatesExplorerFault(t *testing.T) {
	explorer := newFakeExplorer()
	explorer.failTop = errors.New("model offline")
	_, err := New(explorer)
	require.Error(t, err)
	assert.ErrorIs(t, err, explorer.failTop)
}

func TestAddRemovePromptUpdatesIndexAndPrompt(t *testing.T) {
	s, _ := newTestSession(t, "1 2")

	ok, err := s.AddPrompt(2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1 2", "1 2"}, s.Prompts)
	assert.Equal(t, 1, s.PromptIndex)

	_, err = s.SetPromptText("3 4")
	require.NoError(t, err)
	assert.Equal(t, "3 4", s.Prompts[1])

	ok, err = s.RemovePrompt()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1 2"}, s.Prompts)
	assert.Equal(t, 0, s.PromptIndex)
	assert.Equal(t, "1 2", s.Prompt())
	assertInvariants(t, s)
}

func TestAddPromptRespectsLimit(t *testing.T) {
	s, _ := newTestSession(t, "1")

	ok, err := s.AddPrompt(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"1"}, s.Prompts)

	for i := 0; i < 4; i++ {
		ok, err = s.AddPrompt(0)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, s.Prompts, 5)
	assertInvariants(t, s)
}

func TestAddThenRemoveRoundTrips(t *testing.T) {
	s, _ := newTestSession(t, "1")
	_, err := s.AddPrompt(0)
	require.NoError(t, err)
	_, err = s.SetPromptText("2")
	require.NoError(t, err)
	_, err = s.AddPrompt(0)
	require.NoError(t, err)
	_, err = s.SetPromptText("3")
	require.NoError(t, err)

	// activate the middle buffer, then add and remove from there
	require.NoError(t, s.DecrementPrompt())
	before := append([]string(nil), s.Prompts...)
	beforeIndex := s.PromptIndex
	require.Equal(t, "2", s.Prompt())

	ok, err := s.AddPrompt(0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, beforeIndex+1, s.PromptIndex)
	assert.Equal(t, []string{"1", "2", "2", "3"}, s.Prompts, "copy is inserted next to its source")

	ok, err = s.RemovePrompt()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, s.Prompts)
	assert.Equal(t, beforeIndex, s.PromptIndex)
	assert.Equal(t, "2", s.Prompt())
	assertInvariants(t, s)
}

func TestRemovePromptKeepsLastBuffer(t *testing.T) {
	s, _ := newTestSession(t, "1 2")
	ok, err := s.RemovePrompt()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"1 2"}, s.Prompts)
}

func TestRemoveFirstPromptWrapsToLast(t *testing.T) {
	s, _ := newTestSession(t, "1")
	_, _ = s.AddPrompt(0)
	_, _ = s.SetPromptText("2")
	_, _ = s.AddPrompt(0)
	_, _ = s.SetPromptText("3")
	require.NoError(t, s.IncrementPrompt())
	require.Equal(t, 0, s.PromptIndex)

	ok, err := s.RemovePrompt()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"2", "3"}, s.Prompts)
	assert.Equal(t, 1, s.PromptIndex)
	assert.Equal(t, "3", s.Prompt())
}

func TestIncrementDecrementWrap(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	_, _ = s.AddPrompt(0)
	_, _ = s.SetPromptText("2")
	require.Equal(t, 1, s.PromptIndex)

	s.SelectNextToken()
	require.NoError(t, s.IncrementPrompt())
	assert.Equal(t, 0, s.PromptIndex)
	assert.Equal(t, 0, s.SelectedRow)
	assert.Equal(t, "1", explorer.text)

	require.NoError(t, s.DecrementPrompt())
	assert.Equal(t, 1, s.PromptIndex)
	assert.Equal(t, "2", explorer.text)
	assertInvariants(t, s)
}

func TestSelectionClampsToDisplayedTokens(t *testing.T) {
	s, _ := newTestSession(t, "1 2")

	assert.False(t, s.SelectPrevToken())
	assert.True(t, s.SelectNextToken())
	assert.True(t, s.SelectNextToken())
	assert.False(t, s.SelectNextToken())
	assert.Equal(t, 2, s.SelectedRow)
	assert.True(t, s.SelectPrevToken())
	assert.Equal(t, 1, s.SelectedRow)
}

func TestSelectionOnEmptyList(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	explorer.top = nil
	_, err := s.SetPromptText("1")
	require.NoError(t, err)

	assert.False(t, s.SelectNextToken())
	assert.False(t, s.SelectPrevToken())
	assert.Equal(t, 0, s.SelectedRow)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestAppendSelectedTokenResetsSelection(t *testing.T) {
	s, _ := newTestSession(t, "1 2")

	assert.True(t, s.SelectNextToken())
	assert.Equal(t, 1, s.SelectedRow)

	ok, err := s.AppendSelectedToken()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.SelectedRow)
	assert.Equal(t, "1 2 20", s.Prompt())
	assert.Equal(t, "1 2 20", s.Prompts[0])
}

func TestAppendSelectedTokenRejectsEmptyList(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	explorer.top = nil
	_, err := s.SetPromptText("1")
	require.NoError(t, err)

	ok, err := s.AppendSelectedToken()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "1", s.Prompt())
}

func TestAppendTokenAppendsArbitraryID(t *testing.T) {
	s, _ := newTestSession(t, "1")
	s.SelectNextToken()
	require.NoError(t, s.AppendToken(99))
	assert.Equal(t, "1 99", s.Prompt())
	assert.Equal(t, 0, s.SelectedRow)
}

func TestAppendWeightedTokenAppendsFromDisplayedTokens(t *testing.T) {
	s, _ := newTestSession(t, "5", WithRand(rand.New(rand.NewSource(123))))

	before := len(s.PromptTokens())
	ok, err := s.AppendWeightedToken()
	require.NoError(t, err)
	require.True(t, ok)

	after := s.PromptTokens()
	assert.Len(t, after, before+1)
	assert.Contains(t, []int{10, 20, 30}, after[len(after)-1])
	assert.Equal(t, 0, s.SelectedRow)
}

func TestAppendWeightedTokenFollowsWeights(t *testing.T) {
	cases := []struct {
		draw float64
		want int
	}{
		{0.0, 10},
		{0.69, 10},
		{0.71, 20},
		{0.89, 20},
		{0.95, 30},
	}
	for _, tc := range cases {
		s, _ := newTestSession(t, "5", WithRand(fixedRand(tc.draw)))
		ok, err := s.AppendWeightedToken()
		require.NoError(t, err)
		require.True(t, ok)
		tokens := s.PromptTokens()
		assert.Equal(t, tc.want, tokens[len(tokens)-1], "draw %v", tc.draw)
	}
}

func TestAppendWeightedTokenRejectsZeroWeights(t *testing.T) {
	s, explorer := newTestSession(t, "5")
	explorer.top = []Candidate{
		{TokenID: 10, Token: "A"},
		{TokenID: 20, Token: "B"},
	}
	_, err := s.SetPromptText("5")
	require.NoError(t, err)
	s.SelectNextToken()

	ok, err := s.AppendWeightedToken()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "5", s.Prompt())
	assert.Equal(t, 1, s.SelectedRow)

	explorer.top = nil
	_, err = s.SetPromptText("5")
	require.NoError(t, err)
	ok, err = s.AppendWeightedToken()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendWeightedTokenSkipsZeroWeightCandidate(t *testing.T) {
	s, explorer := newTestSession(t, "5", WithRand(fixedRand(0.99)))
	explorer.top = []Candidate{
		{TokenID: 10, Token: "A", Probability: 0},
		{TokenID: 20, Token: "B", Probability: 0.3},
		{TokenID: 30, Token: "C", Probability: 0},
	}
	_, err := s.SetPromptText("5")
	require.NoError(t, err)

	ok, err := s.AppendWeightedToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5 20", s.Prompt())
}

func TestPopTokenMinTokens(t *testing.T) {
	s, _ := newTestSession(t, "1 2")

	ok, err := s.PopToken(1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", s.Prompt())

	ok, err = s.PopToken(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "1", s.Prompt())
}

func TestPopTokenFloorZero(t *testing.T) {
	s, _ := newTestSession(t, "1 2 3")
	for i := 0; i < 3; i++ {
		ok, err := s.PopToken(0)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := s.PopToken(0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", s.Prompt())
	assertInvariants(t, s)
}

func TestFaultLeavesStateUnchanged(t *testing.T) {
	s, explorer := newTestSession(t, "1 2")
	s.SelectNextToken()
	explorer.failAppend = errors.New("inference failed")

	ok, err := s.AppendSelectedToken()
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, explorer.failAppend)
	assert.Contains(t, err.Error(), "append selected token")
	assert.Equal(t, []string{"1 2"}, s.Prompts)
	assert.Equal(t, 1, s.SelectedRow)
	assert.Equal(t, "1 2", explorer.text)
}

func TestFaultDuringRefreshRestoresExplorer(t *testing.T) {
	s, explorer := newTestSession(t, "1 2")
	displayed := s.DisplayedTokens
	explorer.failTop = errors.New("model offline")

	_, err := s.SetPromptText("7 8")
	require.Error(t, err)
	assert.Equal(t, []string{"1 2"}, s.Prompts)
	assert.Equal(t, displayed, s.DisplayedTokens)
	assert.Equal(t, "1 2", explorer.text)
}

func TestFaultDuringSwitchRestoresIndex(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	_, _ = s.AddPrompt(0)
	_, _ = s.SetPromptText("2")
	explorer.failSetPrompt = "1"

	err := s.IncrementPrompt()
	require.Error(t, err)
	assert.Equal(t, 1, s.PromptIndex)
	assert.Equal(t, []string{"1", "2"}, s.Prompts)
	assert.Equal(t, "2", explorer.text)
}

func TestSetSearchRefreshesCandidates(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	s.SelectNextToken()

	tokens, err := s.SetSearch("b")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, 20, tokens[0].TokenID)
	assert.Equal(t, 0, s.SelectedRow)
	assert.Equal(t, "b", explorer.lastSearch)

	// search persists across mutations
	_, err = s.AppendSelectedToken()
	require.NoError(t, err)
	assert.Equal(t, "1 20", s.Prompt())
	assert.Len(t, s.DisplayedTokens, 1)
}

func TestEndTokenDetection(t *testing.T) {
	s, explorer := newTestSession(t, "1")
	assert.False(t, s.AtEndToken())

	explorer.end, explorer.hasEnd = 30, true
	id, ok := s.EndTokenID()
	require.True(t, ok)
	assert.Equal(t, 30, id)
	require.NoError(t, s.AppendToken(30))
	assert.True(t, s.AtEndToken())
}

func TestInvariantsHoldAcrossRandomCommands(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, _ := newTestSession(t, "1 2", WithRand(rng))
	for i := 0; i < 500; i++ {
		var err error
		switch rng.Intn(9) {
		case 0:
			_, err = s.AddPrompt(4)
		case 1:
			_, err = s.RemovePrompt()
		case 2:
			err = s.IncrementPrompt()
		case 3:
			err = s.DecrementPrompt()
		case 4:
			s.SelectNextToken()
		case 5:
			s.SelectPrevToken()
		case 6:
			_, err = s.AppendSelectedToken()
		case 7:
			_, err = s.AppendWeightedToken()
		case 8:
			_, err = s.PopToken(1)
		}
		require.NoError(t, err)
		assertInvariants(t, s)
		require.LessOrEqual(t, len(s.Prompts), 4)
	}
}
