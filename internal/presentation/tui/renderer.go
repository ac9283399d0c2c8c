package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without a usable renderer the markdown is returned unchanged.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(out, "\n"), nil
	}
}

// OrderCard renders a conversation summary as a markdown table.
func OrderCard(state, size, payment string, cycles int) string {
	var sb strings.Builder
	sb.WriteString("| state | size | payment | cycles |\n")
	sb.WriteString("|---|---|---|---|\n")
	sb.WriteString("| `" + state + "` | " + orDash(size) + " | " + orDash(payment) + " | " + strconv.Itoa(cycles) + " |\n")
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
