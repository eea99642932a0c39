package gpt

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

type checkpoint struct {
	Config  Config                 `json:"config"`
	Chars   []string               `json:"chars"`
	Steps   int                    `json:"steps"`
	Weights map[string][][]float64 `json:"weights"`
}

// SaveCheckpoint writes the configuration, vocabulary and weights as JSON.
// Optimizer moments are not kept; a reloaded model is for inference.
func (m *Model) SaveCheckpoint(path string) error {
	m.mu.Lock()
	cp := checkpoint{
		Config:  m.Config,
		Chars:   append([]string(nil), m.Vocab.Chars...),
		Steps:   m.Steps,
		Weights: make(map[string][][]float64, len(m.state)),
	}
	for name, mat := range m.state {
		rows := make([][]float64, len(mat))
		for i, row := range mat {
			rows[i] = make([]float64, len(row))
			for j, v := range row {
				rows[i][j] = v.Data
			}
		}
		cp.Weights[name] = rows
	}
	m.mu.Unlock()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint rebuilds a model written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var cp checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	if err := cp.Config.Validate(); err != nil {
		return nil, err
	}
	if len(cp.Chars) == 0 {
		return nil, ErrEmptyCorpus
	}
	m := newModel(cp.Config, vocabFromChars(cp.Chars), rand.New(rand.NewSource(0)))
	m.Steps = cp.Steps
	for _, shape := range m.matrixSpecs() {
		rows, ok := cp.Weights[shape.name]
		if !ok {
			return nil, fmt.Errorf("checkpoint missing %s", shape.name)
		}
		if len(rows) != shape.rows {
			return nil, fmt.Errorf("checkpoint %s: %d rows, want %d", shape.name, len(rows), shape.rows)
		}
		mat := m.state[shape.name]
		for i, row := range rows {
			if len(row) != shape.cols {
				return nil, fmt.Errorf("checkpoint %s row %d: %d cols, want %d", shape.name, i, len(row), shape.cols)
			}
			for j, v := range row {
				mat[i][j].Data = v
			}
		}
	}
	return m, nil
}
