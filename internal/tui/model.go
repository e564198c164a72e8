// Package tui provides the interactive message review dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgreview/tgreview/internal/api"
)

// severity classifies a notification for display styling.
type severity int

const (
	severityInfo severity = iota
	severitySuccess
	severityError
)

// defaultFetchSize is the messages-per-page used when Options does not set one.
const defaultFetchSize = 24

// flashDuration is how long notifications are displayed before auto-dismiss.
const flashDuration = 6 * time.Second

// spinnerFrames are the Braille dot animation frames for the loading spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is how fast the spinner animates.
const spinnerInterval = 80 * time.Millisecond

// Options configuration for the dashboard.
type Options struct {
	PageSize   int // messages fetched per page (default 24)
	ChannelTTL time.Duration
	Version    string
}

// Model is the dashboard model following the Elm architecture. It owns the
// filter form, the paginated message list, and the single-slot notification.
type Model struct {
	client   api.Service
	channels *api.Directory

	form formState

	// Message list state. items is append-only across pages within one
	// applied-filter session; hasMore is derived from the last page's size,
	// not from totalCount arithmetic (the server total may lag edits).
	items      []api.Message
	page       int
	totalCount int
	hasMore    bool

	// List navigation
	cursor       int
	scrollOffset int
	listRows     int // rows visible in the list viewport

	fetchSize int

	width  int
	height int

	// Loading state. loading covers both reloads and load-more; while set,
	// further list fetches are refused.
	loading     bool
	loadingMore bool

	channelList     []string
	channelsLoading bool

	// Request tracking to ignore stale async results
	listRequestID    uint64
	channelRequestID uint64

	// Flash message (single-slot notification; a new one replaces the old)
	flashText      string
	flashSeverity  severity
	flashExpiresAt time.Time

	spinnerFrame  int
	spinnerActive bool

	version        string
	sessionExpired bool
	quitting       bool
}

// New creates a dashboard model over the given API service.
func New(client api.Service, opts Options) Model {
	fetchSize := opts.PageSize
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}

	return Model{
		client:        client,
		channels:      api.NewDirectory(client, opts.ChannelTTL),
		form:          newFormState(),
		fetchSize:     fetchSize,
		listRows:      20,
		loading:       true,
		spinnerActive: true,
		version:       opts.Version,
	}
}

// SessionExpired reports whether the dashboard exited because the server
// rejected the session. The caller should direct the user to log in again.
func (m Model) SessionExpired() bool {
	return m.sessionExpired
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchPage(1, false),
		m.loadChannels(false),
		spinnerTick(),
	)
}

// messagesLoadedMsg is sent when a list page fetch completes.
type messagesLoadedMsg struct {
	page       int
	items      []api.Message
	total      int
	appendPage bool
	err        error
	requestID  uint64 // To detect stale responses
}

// labelResultMsg is sent when a label write completes.
type labelResultMsg struct {
	messageID int64
	label     api.Label
	err       error
}

// exportResultMsg is sent when the relevant-messages export completes.
type exportResultMsg struct {
	message string
	err     error
}

// channelsLoadedMsg is sent when the channel directory responds.
type channelsLoadedMsg struct {
	channels  []string
	requestID uint64 // To detect stale responses
}

// flashClearMsg clears the notification after its timeout.
type flashClearMsg struct{}

// spinnerTickMsg advances the loading spinner animation.
type spinnerTickMsg struct{}

// fetchPage fetches one page for the currently applied criteria.
func (m Model) fetchPage(page int, appendPage bool) tea.Cmd {
	requestID := m.listRequestID
	criteria := m.form.appliedCriteria
	fetchSize := m.fetchSize
	client := m.client
	return func() (msg tea.Msg) {
		// Recover from panics to keep the dashboard responsive
		defer func() {
			if r := recover(); r != nil {
				msg = messagesLoadedMsg{err: fmt.Errorf("fetch panic: %v", r), requestID: requestID}
			}
		}()

		result, err := client.FetchMessages(context.Background(), criteria, page, fetchSize)
		if err != nil {
			return messagesLoadedMsg{page: page, appendPage: appendPage, err: err, requestID: requestID}
		}
		return messagesLoadedMsg{
			page:       page,
			items:      result.Messages,
			total:      result.TotalCount,
			appendPage: appendPage,
			requestID:  requestID,
		}
	}
}

// applyLabelCmd writes a relevance judgment for one message. Label writes
// are independent per message and are not tracked by the list request ID:
// a late acknowledgment still patches the matching item.
func (m Model) applyLabelCmd(messageID int64, label api.Label) tea.Cmd {
	client := m.client
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = labelResultMsg{messageID: messageID, label: label, err: fmt.Errorf("label panic: %v", r)}
			}
		}()

		err := client.SetLabel(context.Background(), messageID, label)
		return labelResultMsg{messageID: messageID, label: label, err: err}
	}
}

// exportCmd triggers the server-side export of relevant messages.
func (m Model) exportCmd() tea.Cmd {
	client := m.client
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = exportResultMsg{err: fmt.Errorf("export panic: %v", r)}
			}
		}()

		message, err := client.ExportRelevant(context.Background())
		return exportResultMsg{message: message, err: err}
	}
}

// loadChannels fetches the channel list, optionally bypassing the cache.
func (m Model) loadChannels(refresh bool) tea.Cmd {
	requestID := m.channelRequestID
	dir := m.channels
	return func() tea.Msg {
		ctx := context.Background()
		var channels []string
		if refresh {
			channels = dir.Refresh(ctx)
		} else {
			channels = dir.Channels(ctx)
		}
		return channelsLoadedMsg{channels: channels, requestID: requestID}
	}
}

// spinnerTick returns a command that fires a spinnerTickMsg after the spinner interval.
func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// startSpinner returns a spinnerTick command if the spinner isn't already
// active, and marks it as active.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinnerActive {
		return nil
	}
	m.spinnerActive = true
	m.spinnerFrame = 0
	return spinnerTick()
}

// startReload issues a fresh page-1 fetch for the applied criteria. The
// request ID bump supersedes any in-flight list fetch: its response will be
// discarded on arrival, so the list only ever renders the latest intent.
func (m *Model) startReload() tea.Cmd {
	m.listRequestID++
	m.loading = true
	m.loadingMore = false
	return tea.Batch(m.startSpinner(), m.fetchPage(1, false))
}

// startLoadMore fetches the next page with the applied criteria. It is a
// no-op while another list fetch is in flight or when the last page was
// short.
func (m *Model) startLoadMore() tea.Cmd {
	if m.loading || !m.hasMore {
		return nil
	}
	m.listRequestID++
	m.loading = true
	m.loadingMore = true
	return tea.Batch(m.startSpinner(), m.fetchPage(m.page+1, true))
}

// startChannelRefresh refetches the channel list, bypassing the cache.
func (m *Model) startChannelRefresh() tea.Cmd {
	m.channelRequestID++
	m.channelsLoading = true
	return tea.Batch(m.startSpinner(), m.loadChannels(true))
}

// showFlash displays a notification, replacing any existing one.
func (m *Model) showFlash(text string, sev severity) tea.Cmd {
	m.flashText = text
	m.flashSeverity = sev
	m.flashExpiresAt = time.Now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

// dismissFlash hides the notification immediately.
func (m *Model) dismissFlash() {
	m.flashText = ""
	m.flashExpiresAt = time.Time{}
}

// quitWithExpiredSession records the forced logout and exits the dashboard.
func (m *Model) quitWithExpiredSession() tea.Cmd {
	m.sessionExpired = true
	m.quitting = true
	return tea.Quit
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width < 0 {
			m.width = 0
		}
		if m.height < 0 {
			m.height = 0
		}
		// Reserve space for: title (1) + filter line (1) + header (1) +
		// separator (1) + footer (2)
		m.listRows = m.height - 6
		if m.listRows < 1 {
			m.listRows = 1
		}
		m.clampCursor()
		return m, nil

	case messagesLoadedMsg:
		// Ignore stale responses from superseded fetches
		if msg.requestID != m.listRequestID {
			return m, nil
		}
		m.loading = false
		m.loadingMore = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, m.quitWithExpiredSession()
			}
			// List state stays at its last-known-good value
			return m, m.showFlash("Failed to load messages: "+msg.err.Error(), severityError)
		}

		if msg.appendPage {
			m.items = append(m.items, msg.items...)
		} else {
			m.items = msg.items
			m.cursor = 0
			m.scrollOffset = 0
		}
		m.page = msg.page
		m.totalCount = msg.total
		m.hasMore = len(msg.items) == m.fetchSize

		if !msg.appendPage && len(msg.items) == 0 {
			return m, m.showFlash("No messages match the applied filters", severityInfo)
		}
		return m, nil

	case labelResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, m.quitWithExpiredSession()
			}
			return m, m.showFlash("Failed to label message: "+msg.err.Error(), severityError)
		}
		// Patch the one matching item in place; position and every other
		// field stay untouched.
		for i := range m.items {
			if m.items[i].MessageID == msg.messageID {
				label := msg.label
				m.items[i].Label = &label
				break
			}
		}
		return m, m.showFlash("Message marked "+msg.label.String(), severitySuccess)

	case exportResultMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, m.quitWithExpiredSession()
			}
			return m, m.showFlash("Export failed: "+msg.err.Error(), severityError)
		}
		return m, m.showFlash(msg.message, severitySuccess)

	case channelsLoadedMsg:
		if msg.requestID != m.channelRequestID {
			return m, nil
		}
		m.channelsLoading = false
		m.channelList = msg.channels
		if m.form.channelCursor >= len(m.channelList) {
			m.form.channelCursor = 0
		}
		return m, nil

	case flashClearMsg:
		// Only clear if the notification was not replaced since this timer
		// started
		if time.Now().After(m.flashExpiresAt) || m.flashExpiresAt.IsZero() {
			m.flashText = ""
		}
		return m, nil

	case spinnerTickMsg:
		if m.loading || m.channelsLoading {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, spinnerTick()
		}
		m.spinnerActive = false
		return m, nil
	}

	return m, nil
}

// clampCursor keeps the cursor and scroll window within the loaded items.
func (m *Model) clampCursor() {
	if len(m.items) == 0 {
		m.cursor = 0
		m.scrollOffset = 0
		return
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+m.listRows {
		m.scrollOffset = m.cursor - m.listRows + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// freeFormChannels reports whether the channels field has no fetched list to
// toggle from and degrades to free-form text entry.
func (m Model) freeFormChannels() bool {
	return len(m.channelList) == 0
}
