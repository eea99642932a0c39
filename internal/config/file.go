package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/atomicstack/token-explorer/internal/app"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration. Every field is optional; unset fields
// keep their defaults and environment variables and flags override the rest.
type File struct {
	Prompt        *string  `json:"prompt,omitempty" yaml:"prompt" toml:"prompt" jsonschema:"description=Initial prompt text"`
	Tokens        *int     `json:"tokens,omitempty" yaml:"tokens" toml:"tokens" jsonschema:"description=Number of candidate tokens shown,minimum=1"`
	MaxPrompts    *int     `json:"max_prompts,omitempty" yaml:"max_prompts" toml:"max_prompts" jsonschema:"description=Maximum number of prompt buffers (0 for unlimited),minimum=0"`
	Corpus        *string  `json:"corpus,omitempty" yaml:"corpus" toml:"corpus" jsonschema:"description=Training corpus file with one document per line"`
	Checkpoint    *string  `json:"checkpoint,omitempty" yaml:"checkpoint" toml:"checkpoint" jsonschema:"description=Model checkpoint to load or to write after training"`
	Seed          *int64   `json:"seed,omitempty" yaml:"seed" toml:"seed" jsonschema:"description=Seed for model initialisation and training"`
	Embd          *int     `json:"embd,omitempty" yaml:"embd" toml:"embd" jsonschema:"description=Embedding width,minimum=1"`
	Heads         *int     `json:"heads,omitempty" yaml:"heads" toml:"heads" jsonschema:"description=Attention heads per layer,minimum=1"`
	Layers        *int     `json:"layers,omitempty" yaml:"layers" toml:"layers" jsonschema:"description=Transformer layers,minimum=1"`
	BlockSize     *int     `json:"block_size,omitempty" yaml:"block_size" toml:"block_size" jsonschema:"description=Context window in tokens,minimum=2"`
	LearningRate  *float64 `json:"learning_rate,omitempty" yaml:"learning_rate" toml:"learning_rate" jsonschema:"description=Adam learning rate"`
	TrainSteps    *int     `json:"train_steps,omitempty" yaml:"train_steps" toml:"train_steps" jsonschema:"description=Training steps when no checkpoint is loaded,minimum=0"`
	BatchSize     *int     `json:"batch_size,omitempty" yaml:"batch_size" toml:"batch_size" jsonschema:"description=Documents per training step,minimum=1"`
	ContinueDelay *string  `json:"continue_delay,omitempty" yaml:"continue_delay" toml:"continue_delay" jsonschema:"description=Pause between continue steps as a Go duration,example=150ms"`
	MaxContinue   *int     `json:"max_continue,omitempty" yaml:"max_continue" toml:"max_continue" jsonschema:"description=Maximum tokens appended by one continue run (0 for unlimited),minimum=0"`
	Width         *int     `json:"width,omitempty" yaml:"width" toml:"width" jsonschema:"description=Viewport width in cells (0 uses terminal width),minimum=0"`
	Height        *int     `json:"height,omitempty" yaml:"height" toml:"height" jsonschema:"description=Viewport height in rows (0 uses terminal height),minimum=0"`
	Footer        *bool    `json:"footer,omitempty" yaml:"footer" toml:"footer" jsonschema:"description=Show the key help footer"`
	Trace         *bool    `json:"trace,omitempty" yaml:"trace" toml:"trace" jsonschema:"description=Enable JSON trace logging"`
	LogFile       *string  `json:"log_file,omitempty" yaml:"log_file" toml:"log_file" jsonschema:"description=Path to the log file"`
}

// ReadFile decodes a YAML or TOML configuration file, chosen by extension.
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return f, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return f, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return f, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	return f, nil
}

// apply overlays the fields set in f onto cfg and logging.
func (f File) apply(cfg *app.Config, logging *Logging) error {
	setString(&cfg.Prompt, f.Prompt)
	setInt(&cfg.TokensToShow, f.Tokens)
	setInt(&cfg.MaxPrompts, f.MaxPrompts)
	setString(&cfg.CorpusPath, f.Corpus)
	setString(&cfg.Checkpoint, f.Checkpoint)
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	setInt(&cfg.Model.NEmbd, f.Embd)
	setInt(&cfg.Model.NHead, f.Heads)
	setInt(&cfg.Model.NLayer, f.Layers)
	setInt(&cfg.Model.BlockSize, f.BlockSize)
	if f.LearningRate != nil {
		cfg.Model.LearningRate = *f.LearningRate
	}
	setInt(&cfg.TrainSteps, f.TrainSteps)
	setInt(&cfg.BatchSize, f.BatchSize)
	if f.ContinueDelay != nil {
		d, err := time.ParseDuration(*f.ContinueDelay)
		if err != nil {
			return fmt.Errorf("continue_delay: %w", err)
		}
		cfg.ContinueDelay = d
	}
	setInt(&cfg.MaxContinue, f.MaxContinue)
	setInt(&cfg.Width, f.Width)
	setInt(&cfg.Height, f.Height)
	setBool(&cfg.ShowFooter, f.Footer)
	setBool(&logging.Trace, f.Trace)
	setString(&logging.FilePath, f.LogFile)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Schema returns the JSON schema describing File.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&File{})
	schema.Title = "token-explorer configuration"
	return json.MarshalIndent(schema, "", "  ")
}
