package session

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// DefaultTokensToShow is the number of candidates fetched per refresh when no
// option overrides it.
const DefaultTokensToShow = 30

// Session owns the prompt buffers, the selection cursor and the candidate
// list for one interactive context. Drivers may read the exported fields for
// rendering but must mutate them only through the command methods.
type Session struct {
	ID              string
	Prompts         []string
	PromptIndex     int
	SelectedRow     int
	DisplayedTokens []Candidate
	TokensToShow    int
	Search          string

	explorer Explorer
	rng      Rand
}

// Option customises a Session at construction time.
type Option func(*config)

type config struct {
	prompt       string
	tokensToShow int
	rng          Rand
}

// WithPrompt seeds the first buffer.
func WithPrompt(prompt string) Option {
	return func(c *config) { c.prompt = prompt }
}

// WithTokensToShow caps the candidate list. Values <= 0 keep the default.
func WithTokensToShow(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.tokensToShow = n
		}
	}
}

// WithRand injects the random source used by AppendWeightedToken.
func WithRand(rng Rand) Option {
	return func(c *config) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// New creates a session around explorer, sets the explorer's prompt to the
// seed prompt and computes the initial candidates.
func New(explorer Explorer, opts ...Option) (*Session, error) {
	if explorer == nil {
		return nil, errors.New("session: nil explorer")
	}
	cfg := config{tokensToShow: DefaultTokensToShow}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		ID:           uuid.NewString(),
		Prompts:      []string{cfg.prompt},
		TokensToShow: cfg.tokensToShow,
		explorer:     explorer,
		rng:          cfg.rng,
	}
	if err := explorer.SetPrompt(cfg.prompt); err != nil {
		return nil, fmt.Errorf("session: set prompt: %w", err)
	}
	s.Prompts[0] = explorer.Prompt()
	if err := s.refresh(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return s, nil
}

// snapshot captures everything a failed command has to put back.
type snapshot struct {
	prompts   []string
	index     int
	row       int
	displayed []Candidate
}

func (s *Session) snapshot() snapshot {
	return snapshot{
		prompts:   append([]string(nil), s.Prompts...),
		index:     s.PromptIndex,
		row:       s.SelectedRow,
		displayed: s.DisplayedTokens,
	}
}

// fail restores snap, points the explorer back at the restored buffer and
// wraps err with the command name.
func (s *Session) fail(op string, snap snapshot, err error) error {
	s.Prompts = snap.prompts
	s.PromptIndex = snap.index
	s.SelectedRow = snap.row
	s.DisplayedTokens = snap.displayed
	if rerr := s.explorer.SetPrompt(s.Prompts[s.PromptIndex]); rerr != nil {
		err = errors.Join(err, fmt.Errorf("restore prompt: %w", rerr))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) refresh() error {
	tokens, err := s.explorer.TopNTokens(s.TokensToShow, s.Search)
	if err != nil {
		return fmt.Errorf("top tokens: %w", err)
	}
	if len(tokens) > s.TokensToShow {
		tokens = tokens[:s.TokensToShow]
	}
	s.DisplayedTokens = tokens
	s.SelectedRow = 0
	return nil
}

// syncAndRefresh copies the explorer's echo into the active buffer and
// re-reads the candidates.
func (s *Session) syncAndRefresh() error {
	s.Prompts[s.PromptIndex] = s.explorer.Prompt()
	return s.refresh()
}

// switchTo makes buffer idx active in the explorer and refreshes.
func (s *Session) switchTo(idx int) error {
	s.PromptIndex = idx
	if err := s.explorer.SetPrompt(s.Prompts[idx]); err != nil {
		return err
	}
	return s.refresh()
}

// SetPromptText replaces the active buffer with the explorer's normalized
// echo of text.
func (s *Session) SetPromptText(text string) ([]Candidate, error) {
	snap := s.snapshot()
	if err := s.explorer.SetPrompt(text); err != nil {
		return nil, s.fail("set prompt text", snap, err)
	}
	if err := s.syncAndRefresh(); err != nil {
		return nil, s.fail("set prompt text", snap, err)
	}
	return s.DisplayedTokens, nil
}

// SetSearch restricts the candidate list to tokens matching query and
// refreshes it. An empty query removes the restriction.
func (s *Session) SetSearch(query string) ([]Candidate, error) {
	snap := s.snapshot()
	prev := s.Search
	s.Search = query
	if err := s.refresh(); err != nil {
		s.Search = prev
		return nil, s.fail("set search", snap, err)
	}
	return s.DisplayedTokens, nil
}

// AddPrompt inserts a copy of the current prompt directly after the active
// buffer and moves the cursor onto it. On the last buffer this is an append;
// from any other buffer the copy lands next to its source rather than at the
// end, so a following RemovePrompt restores the previous buffers and cursor.
// maxPrompts <= 0 means unlimited; otherwise the command is rejected once the
// buffer count reaches it.
func (s *Session) AddPrompt(maxPrompts int) (bool, error) {
	if maxPrompts > 0 && len(s.Prompts) >= maxPrompts {
		return false, nil
	}
	snap := s.snapshot()
	at := s.PromptIndex + 1
	prompts := make([]string, 0, len(s.Prompts)+1)
	prompts = append(prompts, s.Prompts[:at]...)
	prompts = append(prompts, s.explorer.Prompt())
	prompts = append(prompts, s.Prompts[at:]...)
	s.Prompts = prompts
	if err := s.switchTo(wrap(s.PromptIndex+1, len(s.Prompts))); err != nil {
		return false, s.fail("add prompt", snap, err)
	}
	return true, nil
}

// RemovePrompt deletes the active buffer and moves to the previous one,
// wrapping to the last buffer when the first is removed. The last remaining
// buffer cannot be removed.
func (s *Session) RemovePrompt() (bool, error) {
	if len(s.Prompts) <= 1 {
		return false, nil
	}
	snap := s.snapshot()
	prompts := make([]string, 0, len(s.Prompts)-1)
	prompts = append(prompts, s.Prompts[:s.PromptIndex]...)
	prompts = append(prompts, s.Prompts[s.PromptIndex+1:]...)
	s.Prompts = prompts
	if err := s.switchTo(wrap(s.PromptIndex-1, len(s.Prompts))); err != nil {
		return false, s.fail("remove prompt", snap, err)
	}
	return true, nil
}

// IncrementPrompt activates the next buffer, wrapping after the last.
func (s *Session) IncrementPrompt() error {
	snap := s.snapshot()
	if err := s.switchTo(wrap(s.PromptIndex+1, len(s.Prompts))); err != nil {
		return s.fail("increment prompt", snap, err)
	}
	return nil
}

// DecrementPrompt activates the previous buffer, wrapping before the first.
func (s *Session) DecrementPrompt() error {
	snap := s.snapshot()
	if err := s.switchTo(wrap(s.PromptIndex-1, len(s.Prompts))); err != nil {
		return s.fail("decrement prompt", snap, err)
	}
	return nil
}

// SelectNextToken moves the selection down one row. It reports false when
// the selection is already on the last row.
func (s *Session) SelectNextToken() bool {
	if s.SelectedRow < len(s.DisplayedTokens)-1 {
		s.SelectedRow++
		return true
	}
	return false
}

// SelectPrevToken moves the selection up one row. It reports false when the
// selection is already on the first row.
func (s *Session) SelectPrevToken() bool {
	if s.SelectedRow > 0 {
		s.SelectedRow--
		return true
	}
	return false
}

// Selected returns the candidate under the selection cursor.
func (s *Session) Selected() (Candidate, bool) {
	if s.SelectedRow < 0 || s.SelectedRow >= len(s.DisplayedTokens) {
		return Candidate{}, false
	}
	return s.DisplayedTokens[s.SelectedRow], true
}

// AppendSelectedToken appends the selected candidate to the active prompt.
func (s *Session) AppendSelectedToken() (bool, error) {
	token, ok := s.Selected()
	if !ok {
		return false, nil
	}
	if err := s.appendToken("append selected token", token.TokenID); err != nil {
		return false, err
	}
	return true, nil
}

// AppendToken appends an arbitrary token id to the active prompt, for
// drivers that let the user pick any displayed row directly.
func (s *Session) AppendToken(tokenID int) error {
	return s.appendToken("append token", tokenID)
}

// AppendWeightedToken samples one displayed candidate with probability
// proportional to its reported probability and appends it. It is rejected
// when there are no candidates or none has a positive probability.
func (s *Session) AppendWeightedToken() (bool, error) {
	idx, ok := weightedIndex(s.DisplayedTokens, s.rng)
	if !ok {
		return false, nil
	}
	if err := s.appendToken("append weighted token", s.DisplayedTokens[idx].TokenID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) appendToken(op string, tokenID int) error {
	snap := s.snapshot()
	if err := s.explorer.AppendToken(tokenID); err != nil {
		return s.fail(op, snap, err)
	}
	if err := s.syncAndRefresh(); err != nil {
		return s.fail(op, snap, err)
	}
	return nil
}

// PopToken removes the most recent token from the active prompt as long as
// more than minTokens tokens remain.
func (s *Session) PopToken(minTokens int) (bool, error) {
	if len(s.explorer.PromptTokens()) <= minTokens {
		return false, nil
	}
	snap := s.snapshot()
	if _, ok := s.explorer.PopToken(); !ok {
		return false, nil
	}
	if err := s.syncAndRefresh(); err != nil {
		return false, s.fail("pop token", snap, err)
	}
	return true, nil
}

// Prompt returns the explorer's text for the active buffer.
func (s *Session) Prompt() string {
	s.mustBeValid()
	return s.explorer.Prompt()
}

// PromptTokens returns the token ids of the active buffer.
func (s *Session) PromptTokens() []int {
	return s.explorer.PromptTokens()
}

// PromptTokenStrings returns the readable form of each prompt token.
func (s *Session) PromptTokenStrings() []string {
	return s.explorer.PromptTokenStrings()
}

// PromptTokenProbabilities returns one probability per prompt token.
func (s *Session) PromptTokenProbabilities() ([]float64, error) {
	return s.explorer.PromptTokenProbabilities()
}

// EndTokenID reports the explorer's end-of-sequence token, if it has one.
func (s *Session) EndTokenID() (int, bool) {
	if et, ok := s.explorer.(EndTokener); ok {
		return et.EndTokenID()
	}
	return 0, false
}

// AtEndToken reports whether the active prompt ends with the end token.
func (s *Session) AtEndToken() bool {
	end, ok := s.EndTokenID()
	if !ok {
		return false
	}
	tokens := s.explorer.PromptTokens()
	return len(tokens) > 0 && tokens[len(tokens)-1] == end
}

// mustBeValid panics when the buffer invariants are broken. Only a bug in
// this package can get there.
func (s *Session) mustBeValid() {
	if len(s.Prompts) == 0 {
		panic("session: no prompt buffers")
	}
	if s.PromptIndex < 0 || s.PromptIndex >= len(s.Prompts) {
		panic(fmt.Sprintf("session: prompt index %d out of range [0,%d)", s.PromptIndex, len(s.Prompts)))
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
