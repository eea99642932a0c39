package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/token-explorer/internal/gpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyConfig(t *testing.T) Config {
	t.Helper()
	corpusPath := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte("hello\nhelp\nhero\n"), 0o644))
	cfg := DefaultConfig()
	cfg.CorpusPath = corpusPath
	cfg.Model = gpt.Config{NEmbd: 8, NHead: 2, NLayer: 1, BlockSize: 8, LearningRate: 0.05}
	cfg.TrainSteps = 3
	cfg.BatchSize = 1
	cfg.TokensToShow = 5
	cfg.Prompt = "he"
	return cfg
}

func TestPrepareTrainsAndSavesCheckpoint(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.Checkpoint = filepath.Join(t.TempDir(), "model.json")

	var out bytes.Buffer
	sess, err := Prepare(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, "he", sess.Prompt())
	assert.Len(t, sess.DisplayedTokens, 5)
	assert.Contains(t, out.String(), "training")
	assert.Contains(t, out.String(), "step 3/3")
	assert.FileExists(t, cfg.Checkpoint)

	out.Reset()
	cfg.CorpusPath = filepath.Join(t.TempDir(), "missing.txt")
	sess, err = Prepare(context.Background(), cfg, &out)
	require.NoError(t, err, "an existing checkpoint skips the corpus")
	assert.True(t, strings.HasPrefix(out.String(), "loaded "))
	assert.Equal(t, "he", sess.Prompt())
}

func TestPrepareWithoutTraining(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.TrainSteps = 0
	var out bytes.Buffer
	sess, err := Prepare(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "step")
	assert.NotEmpty(t, sess.ID)
}

func TestPrepareStopsWhenCancelled(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.TrainSteps = 1000
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prepare(ctx, cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepareRejectsBadInputs(t *testing.T) {
	cfg := tinyConfig(t)
	cfg.CorpusPath = filepath.Join(t.TempDir(), "missing.txt")
	_, err := Prepare(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)

	cfg = tinyConfig(t)
	cfg.Model.NHead = 3
	_, err = Prepare(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, gpt.ErrInvalidConfig)
}
