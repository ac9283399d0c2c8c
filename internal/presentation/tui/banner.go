package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`        _              _           _   `, "#fde047"},
	{`  _ __ (_)__________ _| |__   ___ | |_ `, "#facc15"},
	{` | '_ \| |_  /_  / _' | '_ \ / _ \| __|`, "#fb923c"},
	{` | |_) | |/ / / / (_| | |_) | (_) | |_ `, "#f97316"},
	{` | .__/|_/___/___\__,_|_.__/ \___/ \__|`, "#ef4444"},
	{` |_|                                   `, "#dc2626"},
}

// PrintBanner writes the chat banner, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Bot styles a line spoken by the bot.
func Bot(w io.Writer, text string) string {
	out := termenv.NewOutput(w)
	return out.String("🍕 " + text).Bold().String()
}

// Muted styles secondary information such as the active state.
func Muted(w io.Writer, text string) string {
	out := termenv.NewOutput(w)
	return out.String(text).Faint().String()
}
