package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/tgreview/tgreview/internal/api"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		s        string
		maxWidth int
		want     string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this one is too long", 10, "this on..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.s, tt.maxWidth); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.maxWidth, got, tt.want)
		}
	}
}

func TestTruncate_WideRunes(t *testing.T) {
	got := truncate("日本語のメッセージ", 8)
	if w := runewidth.StringWidth(got); w > 8 {
		t.Errorf("truncated width = %d, want <= 8 (%q)", w, got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight(ab, 5) = %q", got)
	}
	if got := padRight("toolong", 4); runewidth.StringWidth(got) != 4 {
		t.Errorf("padRight(toolong, 4) = %q, want width 4", got)
	}
	if got := padRight("x", 0); got != "" {
		t.Errorf("padRight(x, 0) = %q, want empty", got)
	}
}

func TestLabelBadge(t *testing.T) {
	if got := labelBadge(nil); got != "[ ]" {
		t.Errorf("labelBadge(nil) = %q", got)
	}
	if got := labelBadge(labelPtr(api.LabelRelevant)); got != "[+]" {
		t.Errorf("relevant badge = %q", got)
	}
	if got := labelBadge(labelPtr(api.LabelNotRelevant)); got != "[-]" {
		t.Errorf("not-relevant badge = %q", got)
	}
}

func TestSnippet(t *testing.T) {
	got := snippet("  first line\n\tsecond   line\n")
	if got != "first line second line" {
		t.Errorf("snippet = %q", got)
	}
}

func TestFormatScore(t *testing.T) {
	if got := formatScore(7.319); got != "7.32" {
		t.Errorf("formatScore(7.319) = %q", got)
	}
}

func TestSummarizeCriteria(t *testing.T) {
	if got := summarizeCriteria(api.DefaultCriteria()); got != "no filters" {
		t.Errorf("default summary = %q", got)
	}

	min := 2.5
	c := api.FilterCriteria{
		DateStart: "2024-01-01",
		Channels:  []string{"alpha", "beta"},
		ScoreMin:  &min,
		MediaType: api.MediaPhoto,
		SortBy:    api.SortByDate,
	}
	got := summarizeCriteria(c)
	for _, want := range []string{"from 2024-01-01", "2 channels", "score >= 2.5", "type photo", "sort date"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}

	c.Channels = []string{"alpha"}
	if got := summarizeCriteria(c); !strings.Contains(got, "channel alpha") {
		t.Errorf("single-channel summary = %q", got)
	}
}
