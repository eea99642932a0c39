package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func plainView(h *Harness) string {
	return ansi.Strip(h.View())
}

func TestViewShowsPromptAndCandidates(t *testing.T) {
	h := newTestHarness(t, "ab", 0, Options{})
	view := plainView(h)
	for _, want := range []string{"token-explorer", "ab", "Next token", "50.0%", "30.0%", "<END>"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if !strings.Contains(view, "2 tokens (2 prompt, 0 generated)") {
		t.Fatalf("expected token counts in view:\n%s", view)
	}
}

func TestViewTokenNumbers(t *testing.T) {
	h := newTestHarness(t, "abc", 0, Options{})
	h.Keys("#")
	view := plainView(h)
	if !strings.Contains(view, "0 1 2") {
		t.Fatalf("expected token ids in view:\n%s", view)
	}
}

func TestViewProbabilityLegend(t *testing.T) {
	h := newTestHarness(t, "ab", 0, Options{})
	if strings.Contains(plainView(h), "probability") {
		t.Fatalf("legend hidden by default")
	}
	h.Keys("p")
	view := plainView(h)
	for _, want := range []string{"probability", "0%", "25%", "100%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in legend:\n%s", want, view)
		}
	}
}

func TestViewEmptyPromptPlaceholder(t *testing.T) {
	h := newTestHarness(t, "", 0, Options{})
	if !strings.Contains(plainView(h), "empty prompt") {
		t.Fatalf("expected placeholder for empty prompt")
	}
}

func TestViewScrollsToSelection(t *testing.T) {
	h := newTestHarness(t, "", 0, Options{Height: 8})
	h.View()
	h.Keys("down", "down", "down")
	view := plainView(h)
	if !strings.Contains(view, "<END>") {
		t.Fatalf("selected last row must be visible:\n%s", view)
	}
	if h.Model().viewport.Offset == 0 {
		t.Fatalf("expected viewport to scroll, offset %d", h.Model().viewport.Offset)
	}
}

func TestViewTruncatesToWidth(t *testing.T) {
	h := newTestHarness(t, "abcabcabcabc", 0, Options{Width: 12, ShowFooter: true})
	for _, line := range strings.Split(h.View(), "\n") {
		if w := ansi.StringWidth(line); w > 12 {
			t.Fatalf("line wider than 12 cells (%d): %q", w, line)
		}
	}
}

func TestViewSearchHeader(t *testing.T) {
	h := newTestHarness(t, "", 0, Options{})
	h.Keys("/", "z")
	view := plainView(h)
	if !strings.Contains(view, `No matches for "z"`) {
		t.Fatalf("expected empty search notice:\n%s", view)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatPercent(0.123); got != "12.3%" {
		t.Fatalf("unexpected percent %q", got)
	}
	if got := probabilityBar(0.5); got != strings.Repeat("█", barWidth/2) {
		t.Fatalf("unexpected bar %q", got)
	}
	if probabilityBar(0) != "" {
		t.Fatalf("zero probability has no bar")
	}
	if displayToken(" ") != "␣" {
		t.Fatalf("space should be visible")
	}
}
