package theme

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Header                *lipgloss.Style
	BufferTab             *lipgloss.Style
	ActiveBufferTab       *lipgloss.Style
	Prompt                *lipgloss.Style
	Completion            *lipgloss.Style
	TokenNumber           *lipgloss.Style
	EndToken              *lipgloss.Style
	Placeholder           *lipgloss.Style
	TableHeader           *lipgloss.Style
	Item                  *lipgloss.Style
	ItemIndicator         *lipgloss.Style
	SelectedItemIndicator *lipgloss.Style
	SelectedItem          *lipgloss.Style
	Bar                   *lipgloss.Style
	Legend                *lipgloss.Style
	Error                 *lipgloss.Style
	Info                  *lipgloss.Style
	Busy                  *lipgloss.Style
	Footer                *lipgloss.Style
	Filter                *lipgloss.Style
	FilterPrompt          *lipgloss.Style
	FilterPlaceholder     *lipgloss.Style
}

var defaultStyles = Styles{
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	BufferTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	),
	ActiveBufferTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true).Padding(0, 1),
	),
	Prompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	),
	Completion: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	),
	TokenNumber: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	),
	EndToken: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	),
	Placeholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	TableHeader: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Underline(true),
	),
	Item: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	ItemIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	SelectedItemIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("238")),
	),
	SelectedItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	Bar: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	),
	Legend: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Busy: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	FilterPlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}

// LegendStops are the probabilities shown in the colour legend.
var LegendStops = []float64{0, 0.25, 0.5, 0.75, 1}

// ProbabilityColor maps a probability onto a pastel hue running from warm
// (unlikely) to cool (likely). Values outside [0,1] are clamped.
func ProbabilityColor(p float64) string {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))
	return colorful.Hsl(20+180*p, 0.8, 0.85).Hex()
}

// ProbabilityStyle renders text on the probability colour.
func ProbabilityStyle(p float64) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(ProbabilityColor(p))).
		Foreground(lipgloss.Color("0"))
}
