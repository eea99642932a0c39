// Package corpus supplies the documents the model is trained on.
package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed default.txt
var defaultText string

// Default returns the embedded training documents.
func Default() []string {
	return Parse(defaultText)
}

// Load reads documents from path, one per line. An empty path selects the
// embedded corpus.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	docs := Parse(string(data))
	if len(docs) == 0 {
		return nil, fmt.Errorf("corpus %s has no documents", path)
	}
	return docs, nil
}

// Parse splits text into trimmed, non-empty lines.
func Parse(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	docs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			docs = append(docs, line)
		}
	}
	return docs
}
