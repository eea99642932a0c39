package gpt

import (
	"fmt"
	"math/rand"
)

// TrainStep runs one optimizer step over batch documents drawn from docs and
// returns the mean loss. Gradients are averaged over the batch before the
// Adam update.
func (m *Model) TrainStep(docs []string, batch int, rng *rand.Rand) (float64, error) {
	if len(docs) == 0 {
		return 0, ErrEmptyCorpus
	}
	if batch < 1 {
		batch = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.params {
		p.Grad = 0
	}
	total := 0.0
	for b := 0; b < batch; b++ {
		loss, err := m.trainExample(docs[rng.Intn(len(docs))])
		if err != nil {
			return 0, err
		}
		total += loss
	}
	scale := 1 / float64(batch)
	for _, p := range m.params {
		p.Grad *= scale
	}
	m.update()
	return total / float64(batch), nil
}

// trainExample accumulates gradients for one document wrapped in control
// tokens, scoring every next token over at most BlockSize positions.
func (m *Model) trainExample(doc string) (float64, error) {
	tokens := append([]int{m.Vocab.BOS}, m.Vocab.Encode(doc)...)
	tokens = append(tokens, m.Vocab.BOS)

	n := min(len(tokens)-1, m.Config.BlockSize)
	if n <= 0 {
		return 0, fmt.Errorf("gpt: training sequence %q is empty", doc)
	}

	cache := newKVCache(m.Config.NLayer)
	sum := NewValue(0)
	for pos := 0; pos < n; pos++ {
		probs := softmax(m.forward(tokens[pos], pos, cache))
		sum = sum.Add(probs[tokens[pos+1]].Log().Scale(-1))
	}
	loss := sum.Scale(1 / float64(n))
	loss.Backward()
	return loss.Data, nil
}
