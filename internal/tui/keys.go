package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgreview/tgreview/internal/api"
)

// handleKeyPress routes key events to the filter form or the message list.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.form.active {
		return m.handleFormKeys(msg)
	}
	return m.handleListKeys(msg)
}

// handleListKeys handles keys while the message list has focus.
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.dismissFlash()
		return m, nil

	case "f":
		m.form.active = true
		m.form.setFocus(fieldDateStart, m.freeFormChannels())
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampCursor()
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.clampCursor()
			return m, nil
		}
		// At the last loaded item: pull in the next page if one exists
		return m, m.startLoadMore()

	case "pgup":
		m.cursor -= m.listRows
		m.clampCursor()
		return m, nil

	case "pgdown":
		m.cursor += m.listRows
		m.clampCursor()
		return m, nil

	case "g", "home":
		m.cursor = 0
		m.clampCursor()
		return m, nil

	case "G", "end":
		m.cursor = len(m.items) - 1
		m.clampCursor()
		return m, nil

	case "m":
		return m, m.startLoadMore()

	case "r":
		return m.labelUnderCursor(api.LabelRelevant)

	case "n":
		return m.labelUnderCursor(api.LabelNotRelevant)

	case "R":
		return m, m.startReload()

	case "e":
		return m, m.exportCmd()

	case "c":
		return m, m.startChannelRefresh()
	}

	return m, nil
}

// labelUnderCursor issues a label write for the message under the cursor.
func (m Model) labelUnderCursor(label api.Label) (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return m, nil
	}
	return m, m.applyLabelCmd(m.items[m.cursor].MessageID, label)
}

// handleFormKeys handles keys while the filter form has focus.
func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	freeForm := m.freeFormChannels()

	switch msg.String() {
	case "esc":
		// Leave the form; draft edits are kept and shown as pending
		m.form.active = false
		for i := range m.form.inputs {
			m.form.inputs[i].Blur()
		}
		return m, nil

	case "enter":
		if _, err := m.form.apply(); err != nil {
			// Validation failure blocks the apply; applied criteria and the
			// list stay unchanged
			return m, m.showFlash(err.Error(), severityError)
		}
		m.form.active = false
		return m, m.startReload()

	case "ctrl+r":
		m.form.reset()
		m.form.active = false
		return m, m.startReload()

	case "tab", "down":
		next := (m.form.focus + 1) % fieldCount
		m.form.setFocus(next, freeForm)
		return m, nil

	case "shift+tab", "up":
		prev := (m.form.focus - 1 + fieldCount) % fieldCount
		m.form.setFocus(prev, freeForm)
		return m, nil
	}

	switch m.form.focus {
	case fieldChannels:
		if !freeForm {
			return m.handleChannelKeys(msg)
		}

	case fieldMediaType:
		switch msg.String() {
		case "left", "h":
			m.form.draft.MediaType = cycleMediaType(m.form.draft.MediaType, -1)
			return m, nil
		case "right", "l", " ":
			m.form.draft.MediaType = cycleMediaType(m.form.draft.MediaType, 1)
			return m, nil
		}
		return m, nil

	case fieldSortBy:
		switch msg.String() {
		case "left", "h":
			m.form.draft.SortBy = cycleSortField(m.form.draft.SortBy, -1)
			return m, nil
		case "right", "l", " ":
			m.form.draft.SortBy = cycleSortField(m.form.draft.SortBy, 1)
			return m, nil
		}
		return m, nil
	}

	// Text-backed field: delegate to the focused input
	if idx := m.form.textInputFor(m.form.focus, freeForm); idx >= 0 {
		var cmd tea.Cmd
		m.form.inputs[idx], cmd = m.form.inputs[idx].Update(msg)
		m.form.syncDraft(freeForm)
		return m, cmd
	}

	return m, nil
}

// handleChannelKeys handles the channel multi-select toggle list.
func (m Model) handleChannelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if m.form.channelCursor > 0 {
			m.form.channelCursor--
		}
		return m, nil

	case "right", "l":
		if m.form.channelCursor < len(m.channelList)-1 {
			m.form.channelCursor++
		}
		return m, nil

	case " ":
		if m.form.channelCursor < len(m.channelList) {
			m.form.toggleChannel(m.channelList[m.form.channelCursor])
		}
		return m, nil

	case "a":
		// Select every known channel
		m.form.draft.Channels = append([]string(nil), m.channelList...)
		return m, nil

	case "x":
		m.form.draft.Channels = nil
		return m, nil

	case "c":
		return m, m.startChannelRefresh()
	}

	return m, nil
}
