package gpt

// FirstTokenProbability stands in for the first prompt position, which has no
// preceding context to score it against.
const FirstTokenProbability = 0.5

// NextProbs returns the distribution over the vocabulary for the token that
// follows tokens. The context is the control token followed by tokens,
// keeping only the most recent BlockSize positions.
func (m *Model) NextProbs(tokens []int) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextProbs(tokens)
}

func (m *Model) nextProbs(tokens []int) []float64 {
	context := m.window(tokens)
	cache := newKVCache(m.Config.NLayer)
	var logits []*Value
	for pos, tok := range context {
		logits = m.forward(tok, pos, cache)
	}
	return softmaxData(logits)
}

// window prefixes the control token and trims to BlockSize positions.
func (m *Model) window(tokens []int) []int {
	context := make([]int, 0, len(tokens)+1)
	context = append(context, m.Vocab.BOS)
	context = append(context, tokens...)
	if over := len(context) - m.Config.BlockSize; over > 0 {
		context = context[over:]
	}
	return context
}

// SequenceProbs scores each token of tokens against the model's prediction
// from the tokens before it. Position 0 is FirstTokenProbability.
func (m *Model) SequenceProbs(tokens []int) []float64 {
	out := make([]float64, len(tokens))
	if len(tokens) == 0 {
		return out
	}
	out[0] = FirstTokenProbability

	m.mu.Lock()
	defer m.mu.Unlock()

	// one incremental pass covers every position that fits in the window
	cache := newKVCache(m.Config.NLayer)
	fits := min(len(tokens), m.Config.BlockSize-1)
	prev := m.Vocab.BOS
	for pos := 0; pos < fits; pos++ {
		probs := softmaxData(m.forward(prev, pos, cache))
		if pos > 0 {
			out[pos] = probs[tokens[pos]]
		}
		prev = tokens[pos]
	}
	for i := fits; i < len(tokens); i++ {
		out[i] = m.nextProbs(tokens[:i])[tokens[i]]
	}
	return out
}
