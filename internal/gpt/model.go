// Package gpt is a character-level micro transformer small enough to train
// on a handful of sentences at startup. It uses a scalar autograd engine, so
// it favours readability over speed.
package gpt

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

var (
	// ErrEmptyCorpus is returned when the training documents contain no text.
	ErrEmptyCorpus = errors.New("gpt: empty corpus")
	// ErrInvalidConfig wraps hyperparameter validation failures.
	ErrInvalidConfig = errors.New("gpt: invalid config")
)

// Config holds the model hyperparameters.
type Config struct {
	NEmbd        int     `json:"n_embd"`
	NHead        int     `json:"n_head"`
	NLayer       int     `json:"n_layer"`
	BlockSize    int     `json:"block_size"`
	LearningRate float64 `json:"learning_rate"`
}

// DefaultConfig is tuned to train in seconds on the embedded corpus.
func DefaultConfig() Config {
	return Config{
		NEmbd:        16,
		NHead:        4,
		NLayer:       1,
		BlockSize:    32,
		LearningRate: 0.01,
	}
}

// Validate rejects configurations the forward pass cannot run.
func (c Config) Validate() error {
	switch {
	case c.NEmbd <= 0:
		return fmt.Errorf("%w: n_embd must be > 0 (got %d)", ErrInvalidConfig, c.NEmbd)
	case c.NHead <= 0:
		return fmt.Errorf("%w: n_head must be > 0 (got %d)", ErrInvalidConfig, c.NHead)
	case c.NEmbd%c.NHead != 0:
		return fmt.Errorf("%w: n_embd %d not divisible by n_head %d", ErrInvalidConfig, c.NEmbd, c.NHead)
	case c.NLayer <= 0:
		return fmt.Errorf("%w: n_layer must be > 0 (got %d)", ErrInvalidConfig, c.NLayer)
	case c.BlockSize < 2:
		return fmt.Errorf("%w: block_size must be >= 2 (got %d)", ErrInvalidConfig, c.BlockSize)
	case c.LearningRate <= 0 || math.IsNaN(c.LearningRate):
		return fmt.Errorf("%w: learning_rate must be > 0 (got %v)", ErrInvalidConfig, c.LearningRate)
	}
	return nil
}

// Model stores the parameters, optimizer state and vocabulary. Exported
// methods lock mu so a trainer goroutine and readers can share a model.
type Model struct {
	Config Config
	Vocab  Vocab
	Steps  int

	params []*Value
	state  map[string][][]*Value
	adamM  []float64
	adamV  []float64
	mu     sync.Mutex
}

// NewModel builds the vocabulary from docs and initialises every weight from
// a small Gaussian drawn from rng.
func NewModel(cfg Config, docs []string, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	vocab, err := NewVocab(docs)
	if err != nil {
		return nil, err
	}
	return newModel(cfg, vocab, rng), nil
}

func newModel(cfg Config, vocab Vocab, rng *rand.Rand) *Model {
	m := &Model{
		Config: cfg,
		Vocab:  vocab,
		state:  make(map[string][][]*Value),
	}
	for _, shape := range m.matrixSpecs() {
		m.state[shape.name] = m.newMatrix(shape.rows, shape.cols, rng)
	}
	m.adamM = make([]float64, len(m.params))
	m.adamV = make([]float64, len(m.params))
	return m
}

type matrixSpec struct {
	name       string
	rows, cols int
}

// matrixSpecs lists weight matrices in a fixed order, which also fixes the
// order of params.
func (m *Model) matrixSpecs() []matrixSpec {
	c := m.Config
	vocab := m.Vocab.Size()
	specs := []matrixSpec{
		{"wte", vocab, c.NEmbd},
		{"wpe", c.BlockSize, c.NEmbd},
		{"lm_head", vocab, c.NEmbd},
	}
	for i := 0; i < c.NLayer; i++ {
		specs = append(specs,
			matrixSpec{layerKey(i, "attn_wq"), c.NEmbd, c.NEmbd},
			matrixSpec{layerKey(i, "attn_wk"), c.NEmbd, c.NEmbd},
			matrixSpec{layerKey(i, "attn_wv"), c.NEmbd, c.NEmbd},
			matrixSpec{layerKey(i, "attn_wo"), c.NEmbd, c.NEmbd},
			matrixSpec{layerKey(i, "mlp_fc1"), 4 * c.NEmbd, c.NEmbd},
			matrixSpec{layerKey(i, "mlp_fc2"), c.NEmbd, 4 * c.NEmbd},
		)
	}
	return specs
}

func layerKey(layer int, name string) string {
	return fmt.Sprintf("layer%d.%s", layer, name)
}

func (m *Model) newMatrix(rows, cols int, rng *rand.Rand) [][]*Value {
	mat := make([][]*Value, rows)
	for i := range mat {
		mat[i] = make([]*Value, cols)
		for j := range mat[i] {
			v := NewValue(rng.NormFloat64() * 0.02)
			mat[i][j] = v
			m.params = append(m.params, v)
		}
	}
	return mat
}

// NumParams is the number of trainable scalars.
func (m *Model) NumParams() int {
	return len(m.params)
}

func linear(x []*Value, w [][]*Value) []*Value {
	out := make([]*Value, len(w))
	for i, row := range w {
		sum := row[0].Mul(x[0])
		for j := 1; j < len(x); j++ {
			sum = sum.Add(row[j].Mul(x[j]))
		}
		out[i] = sum
	}
	return out
}

func softmax(logits []*Value) []*Value {
	maxVal := math.Inf(-1)
	for _, l := range logits {
		maxVal = math.Max(maxVal, l.Data)
	}
	exps := make([]*Value, len(logits))
	total := NewValue(0)
	for i, l := range logits {
		exps[i] = l.Shift(-maxVal).Exp()
		total = total.Add(exps[i])
	}
	inv := total.Pow(-1)
	probs := make([]*Value, len(logits))
	for i, e := range exps {
		probs[i] = e.Mul(inv)
	}
	return probs
}

// softmaxData is the inference-only softmax over plain floats.
func softmaxData(logits []*Value) []float64 {
	maxVal := math.Inf(-1)
	for _, l := range logits {
		maxVal = math.Max(maxVal, l.Data)
	}
	probs := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		probs[i] = math.Exp(l.Data - maxVal)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func rmsNorm(x []*Value) []*Value {
	sumSq := NewValue(0)
	for _, xi := range x {
		sumSq = sumSq.Add(xi.Mul(xi))
	}
	scale := sumSq.Scale(1 / float64(len(x))).Shift(1e-5).Pow(-0.5)
	out := make([]*Value, len(x))
	for i, xi := range x {
		out[i] = xi.Mul(scale)
	}
	return out
}

// update applies one Adam step with bias correction and clears gradients.
func (m *Model) update() {
	m.Steps++
	const beta1, beta2, eps = 0.85, 0.99, 1e-8
	lr := m.Config.LearningRate
	c1 := 1 - math.Pow(beta1, float64(m.Steps))
	c2 := 1 - math.Pow(beta2, float64(m.Steps))
	for i, p := range m.params {
		m.adamM[i] = beta1*m.adamM[i] + (1-beta1)*p.Grad
		m.adamV[i] = beta2*m.adamV[i] + (1-beta2)*p.Grad*p.Grad
		p.Data -= lr * (m.adamM[i] / c1) / (math.Sqrt(m.adamV[i]/c2) + eps)
		p.Grad = 0
	}
}
