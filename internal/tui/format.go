package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/tgreview/tgreview/internal/api"
)

// truncate shortens s to maxWidth display cells, appending "..." when
// anything was cut. Safe for strings containing wide runes.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// truncateANSI shortens styled text to maxWidth display cells without
// breaking escape sequences.
func truncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "")
}

// padRight pads s with spaces to exactly width display cells, truncating
// first when it is too long.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// formatScore renders a relevance score with two decimals.
func formatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// labelBadge returns the fixed-width list badge for a label state.
func labelBadge(label *api.Label) string {
	if label == nil {
		return "[ ]"
	}
	switch *label {
	case api.LabelRelevant:
		return "[+]"
	case api.LabelNotRelevant:
		return "[-]"
	default:
		return "[?]"
	}
}

// snippet collapses whitespace in an embed payload so it fits on one row.
func snippet(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// summarizeCriteria renders the applied criteria for the filter status line.
func summarizeCriteria(c api.FilterCriteria) string {
	var parts []string
	if c.DateStart != "" {
		parts = append(parts, "from "+c.DateStart)
	}
	if c.DateEnd != "" {
		parts = append(parts, "to "+c.DateEnd)
	}
	switch n := len(c.Channels); {
	case n == 1:
		parts = append(parts, "channel "+c.Channels[0])
	case n > 1:
		parts = append(parts, fmt.Sprintf("%d channels", n))
	}
	if c.ScoreMin != nil {
		parts = append(parts, fmt.Sprintf("score >= %g", *c.ScoreMin))
	}
	if c.ScoreMax != nil {
		parts = append(parts, fmt.Sprintf("score <= %g", *c.ScoreMax))
	}
	if c.MediaType != "" {
		parts = append(parts, "type "+string(c.MediaType))
	}
	if c.SortBy != "" && c.SortBy != api.SortByScore {
		parts = append(parts, "sort "+string(c.SortBy))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, " · ")
}
