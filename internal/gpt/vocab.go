package gpt

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// EndLabel is how the shared BOS/END control token is displayed and written
// in prompt text.
const EndLabel = "<END>"

// escapedOpen is a literal '<' in prompt text, so a corpus holding the
// characters of EndLabel still round-trips through Decode and Encode.
const escapedOpen = "<<"

// Vocab maps single runes to token ids. Runes are sorted so ids are stable
// for a given corpus; the control token takes the id after the last rune.
type Vocab struct {
	Chars []string
	BOS   int
	index map[string]int
}

// NewVocab collects every rune that appears in docs.
func NewVocab(docs []string) (Vocab, error) {
	set := make(map[rune]struct{})
	for _, doc := range docs {
		for _, r := range doc {
			set[r] = struct{}{}
		}
	}
	if len(set) == 0 {
		return Vocab{}, ErrEmptyCorpus
	}
	chars := make([]string, 0, len(set))
	for r := range set {
		chars = append(chars, string(r))
	}
	sort.Strings(chars)
	return vocabFromChars(chars), nil
}

func vocabFromChars(chars []string) Vocab {
	index := make(map[string]int, len(chars))
	for i, c := range chars {
		index[c] = i
	}
	return Vocab{Chars: chars, BOS: len(chars), index: index}
}

// Size is the number of token ids including the control token.
func (v Vocab) Size() int {
	return len(v.Chars) + 1
}

// Encode converts text to token ids. EndLabel is read back as the control
// token and "<<" as a literal '<'; a lone '<' is also taken literally. Runes
// outside the vocabulary are dropped.
func (v Vocab) Encode(text string) []int {
	tokens := make([]int, 0, len(text))
	for len(text) > 0 {
		if strings.HasPrefix(text, escapedOpen) {
			if id, ok := v.index["<"]; ok {
				tokens = append(tokens, id)
			}
			text = text[len(escapedOpen):]
			continue
		}
		if strings.HasPrefix(text, EndLabel) {
			tokens = append(tokens, v.BOS)
			text = text[len(EndLabel):]
			continue
		}
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if id, ok := v.index[string(r)]; ok {
			tokens = append(tokens, id)
		}
	}
	return tokens
}

// Decode is the inverse of Encode: Encode(Decode(tokens)) == tokens for any
// valid ids. Literal '<' is written as "<<".
func (v Vocab) Decode(tokens []int) string {
	var b strings.Builder
	for _, id := range tokens {
		if label := v.Label(id); label == "<" {
			b.WriteString(escapedOpen)
		} else {
			b.WriteString(label)
		}
	}
	return b.String()
}

// Label returns the display form of a single token id.
func (v Vocab) Label(id int) string {
	if id == v.BOS {
		return EndLabel
	}
	if id < 0 || id >= len(v.Chars) {
		return ""
	}
	return v.Chars[id]
}

// Contains reports whether id is a valid token id.
func (v Vocab) Contains(id int) bool {
	return id >= 0 && id < v.Size()
}
