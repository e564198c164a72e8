package tui

import (
	"fmt"
	"regexp"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tgreview/tgreview/internal/api"
	"github.com/tgreview/tgreview/internal/api/apitest"
)

// forcePlainColors pins lipgloss to uncolored output so rendered views are
// deterministic regardless of the test environment's terminal.
func forcePlainColors(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func windowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

// key builds a KeyMsg whose String() matches the given key name.
func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// newTestModel builds a dashboard model over the mock with a small page size
// and a fixed window.
func newTestModel(client api.Service) Model {
	m := New(client, Options{PageSize: 4, Version: "test"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	return next.(Model)
}

// deliver feeds one message to Update, discarding the returned command.
func deliver(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// runCmd executes a command tree and returns the produced messages, with
// batches flattened.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliverAll feeds every message to Update in order, discarding follow-up
// commands.
func deliverAll(t *testing.T, m Model, msgs []tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m = deliver(t, m, msg)
	}
	return m
}

// makeMessages builds n unlabeled messages with sequential IDs from start.
func makeMessages(start int64, n int) []api.Message {
	out := make([]api.Message, n)
	for i := range out {
		id := start + int64(i)
		out[i] = api.Message{
			MessageID: id,
			Score:     float64(10 - i),
			URL:       fmt.Sprintf("https://t.me/chan/%d", id),
			Embed:     fmt.Sprintf("message body %d", id),
			Channel:   "chan",
		}
	}
	return out
}

func labelPtr(l api.Label) *api.Label { return &l }

// loadedModel builds a model with one full page of items already delivered.
func loadedModel(t *testing.T, mock *apitest.MockClient, items []api.Message, total int) Model {
	t.Helper()
	m := newTestModel(mock)
	m = deliver(t, m, messagesLoadedMsg{
		page:      1,
		items:     items,
		total:     total,
		requestID: m.listRequestID,
	})
	return m
}
