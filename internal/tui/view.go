package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgreview/tgreview/internal/api"
)

// Monochrome base theme with severity accents - adaptive for light and dark
// terminals
var (
	bgBase = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	filterLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	pendingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"}).
			Background(bgBase)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Background(bgBase)

	separatorStyle = lipgloss.NewStyle().
			Faint(true).
			Background(bgBase)

	cursorRowStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"})

	normalRowStyle = lipgloss.NewStyle().
			Background(bgBase)

	relevantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}).
			Background(bgBase)

	notRelevantStyle = lipgloss.NewStyle().
				Faint(true).
				Background(bgBase)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}).
			Background(bgBase).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Italic(true).
			Background(bgBase)

	spinnerStyle = lipgloss.NewStyle().
			Bold(true).
			Background(bgBase)

	focusMarkerStyle = lipgloss.NewStyle().
				Bold(true)

	flashInfoStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#0288d1", Dark: "#4fc3f7"}).
			Background(bgBase)

	flashSuccessStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}).
				Background(bgBase)

	flashErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#d32f2f", Dark: "#ef5350"}).
			Background(bgBase)
)

// column widths for the message table
const (
	colLabelWidth = 3
	colScoreWidth = 7
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar(width))
	b.WriteString("\n")
	b.WriteString(m.renderFilterLine(width))
	b.WriteString("\n")

	if m.form.active {
		b.WriteString(m.renderForm(width))
	} else {
		b.WriteString(m.renderList(width))
	}

	b.WriteString(m.renderFooter(width))
	return b.String()
}

func (m Model) renderTitleBar(width int) string {
	title := "tgreview · Telegram relevance review"
	if m.version != "" {
		title += "  (" + m.version + ")"
	}
	return truncateANSI(titleBarStyle.Render(title), width)
}

func (m Model) renderFilterLine(width int) string {
	line := "filters: " + summarizeCriteria(m.form.appliedCriteria)
	out := filterLineStyle.Render(line)
	if m.form.pending() {
		out += pendingStyle.Render(" pending changes - press f, then enter to apply")
	}
	return truncateANSI(out, width)
}

func (m Model) renderList(width int) string {
	var b strings.Builder

	header := padRight("LBL", colLabelWidth) + " " +
		padRight("SCORE", colScoreWidth) + " " +
		padRight("CHANNEL", channelColWidth(width)) + " " +
		"MESSAGE"
	b.WriteString(truncateANSI(tableHeaderStyle.Render(padRight(header, width)), width))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if len(m.items) == 0 {
		if m.loading {
			b.WriteString(loadingStyle.Render("Loading messages..."))
		} else {
			b.WriteString(footerStyle.Render("No messages loaded"))
		}
		b.WriteString("\n")
		return b.String()
	}

	end := m.scrollOffset + m.listRows
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(m.renderRow(i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(i, width int) string {
	msg := m.items[i]

	badge := labelBadge(msg.Label)
	switch {
	case msg.Label != nil && *msg.Label == api.LabelRelevant:
		badge = relevantStyle.Render(badge)
	case msg.Label != nil && *msg.Label == api.LabelNotRelevant:
		badge = notRelevantStyle.Render(badge)
	}

	text := snippet(msg.Embed)
	if text == "" {
		text = msg.URL
	}

	chWidth := channelColWidth(width)
	textWidth := width - colLabelWidth - colScoreWidth - chWidth - 3
	row := badge + " " +
		padRight(formatScore(msg.Score), colScoreWidth) + " " +
		padRight(msg.Channel, chWidth) + " " +
		padRight(text, textWidth)

	if i == m.cursor {
		return truncateANSI(cursorRowStyle.Render(row), width)
	}
	return truncateANSI(normalRowStyle.Render(row), width)
}

// channelColWidth sizes the channel column relative to the terminal width.
func channelColWidth(width int) int {
	w := width / 5
	if w < 10 {
		w = 10
	}
	if w > 28 {
		w = 28
	}
	return w
}

func (m Model) renderForm(width int) string {
	var b strings.Builder

	writeField := func(field formField, label, value string) {
		marker := "  "
		if m.form.focus == field {
			marker = focusMarkerStyle.Render("> ")
		}
		b.WriteString(truncateANSI(marker+padRight(label, 12)+value, width))
		b.WriteString("\n")
	}

	writeField(fieldDateStart, "From date", m.form.inputs[inputDateStart].View())
	writeField(fieldDateEnd, "To date", m.form.inputs[inputDateEnd].View())
	writeField(fieldScoreMin, "Min score", m.form.inputs[inputScoreMin].View())
	writeField(fieldScoreMax, "Max score", m.form.inputs[inputScoreMax].View())
	writeField(fieldChannels, "Channels", m.renderChannelField(width))

	media := "all types"
	if m.form.draft.MediaType != "" {
		media = string(m.form.draft.MediaType)
	}
	writeField(fieldMediaType, "Media type", "< "+media+" >")
	writeField(fieldSortBy, "Sort by", "< "+string(m.form.draft.SortBy)+" >")

	b.WriteString("\n")
	hints := "tab next field · enter apply · ctrl+r reset · esc close"
	if m.form.focus == fieldChannels && !m.freeFormChannels() {
		hints = "←/→ move · space toggle · a all · x none · c refresh · " + hints
	}
	b.WriteString(truncateANSI(footerStyle.Render(hints), width))
	b.WriteString("\n")
	return b.String()
}

// renderChannelField renders the channel selector: a toggle list when
// channels are known, free-form text entry otherwise.
func (m Model) renderChannelField(width int) string {
	if m.freeFormChannels() {
		return m.form.inputs[inputChannels].View()
	}

	selected := make(map[string]bool, len(m.form.draft.Channels))
	for _, ch := range m.form.draft.Channels {
		selected[ch] = true
	}

	var parts []string
	for i, ch := range m.channelList {
		mark := "[ ]"
		if selected[ch] {
			mark = "[x]"
		}
		entry := mark + " " + ch
		if m.form.focus == fieldChannels && i == m.form.channelCursor {
			entry = cursorRowStyle.Render(entry)
		}
		parts = append(parts, entry)
	}

	caption := fmt.Sprintf("(%d selected) ", len(m.form.draft.Channels))
	return caption + strings.Join(parts, "  ")
}

func (m Model) renderFooter(width int) string {
	var b strings.Builder

	status := fmt.Sprintf("%d of %d messages · page %d", len(m.items), m.totalCount, m.page)
	if m.hasMore {
		status += " · more available"
	} else if len(m.items) > 0 {
		status += " · all loaded"
	}
	if m.loading || m.channelsLoading {
		status += "  " + spinnerStyle.Render(spinnerFrames[m.spinnerFrame])
		if m.loadingMore {
			status += loadingStyle.Render(" loading more...")
		}
	}
	b.WriteString(truncateANSI(footerStyle.Render(status), width))
	b.WriteString("\n")

	if m.flashText != "" {
		style := flashInfoStyle
		switch m.flashSeverity {
		case severitySuccess:
			style = flashSuccessStyle
		case severityError:
			style = flashErrorStyle
		}
		b.WriteString(truncateANSI(style.Render(m.flashText), width))
		return b.String()
	}

	hints := "j/k move · r relevant · n not relevant · m more · f filters · R refresh · e export · c channels · q quit"
	b.WriteString(truncateANSI(footerStyle.Render(hints), width))
	return b.String()
}
