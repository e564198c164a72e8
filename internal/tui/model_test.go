package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tgreview/tgreview/internal/api"
	"github.com/tgreview/tgreview/internal/api/apitest"
)

func TestInitialLoadPopulatesList(t *testing.T) {
	mock := &apitest.MockClient{
		Page: &api.MessagePage{Messages: makeMessages(1, 4), TotalCount: 37},
	}
	m := newTestModel(mock)

	msg := m.fetchPage(1, false)()
	m = deliver(t, m, msg)

	if len(m.items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(m.items))
	}
	if m.page != 1 || m.totalCount != 37 {
		t.Errorf("page/total = %d/%d, want 1/37", m.page, m.totalCount)
	}
	if !m.hasMore {
		t.Error("hasMore = false after a full page")
	}
	if m.loading {
		t.Error("loading still set after the page arrived")
	}
	if got := mock.LastFetch(); got.Page != 1 || got.PageSize != 4 {
		t.Errorf("fetch = page %d size %d, want 1/4", got.Page, got.PageSize)
	}
}

func TestShortPageMeansNoMore(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 3), 3)

	if m.hasMore {
		t.Error("hasMore = true after a short page")
	}
}

func TestEmptyFirstPageShowsInfoFlash(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, nil, 0)

	if m.flashText == "" {
		t.Fatal("no notification after an empty result")
	}
	if m.flashSeverity != severityInfo {
		t.Errorf("flash severity = %v, want info (an empty result is not an error)", m.flashSeverity)
	}
	if m.hasMore {
		t.Error("hasMore = true for an empty result")
	}
}

func TestLoadMoreAppends(t *testing.T) {
	mock := &apitest.MockClient{
		Pages: map[int]*api.MessagePage{
			2: {Messages: makeMessages(5, 4), TotalCount: 37},
		},
	}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)
	m.cursor = 3

	next, cmd := m.Update(key("m"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("load-more produced no command")
	}
	m = deliverAll(t, m, runCmd(t, cmd))

	if len(m.items) != 8 {
		t.Fatalf("len(items) = %d, want 8 after append", len(m.items))
	}
	if m.items[4].MessageID != 5 {
		t.Errorf("appended page starts at ID %d, want 5", m.items[4].MessageID)
	}
	if m.page != 2 {
		t.Errorf("page = %d, want 2", m.page)
	}
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want unchanged at 3", m.cursor)
	}
}

func TestLoadMoreNoopOnLastPage(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 3), 3) // short page, no more

	before := mock.FetchCount()
	_, cmd := m.Update(key("m"))
	if cmd != nil {
		t.Error("load-more issued a command with no further pages")
	}
	if mock.FetchCount() != before {
		t.Error("load-more reached the network with no further pages")
	}
}

func TestLoadMoreNoopWhileLoading(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)
	m.loading = true

	if cmd := (&m).startLoadMore(); cmd != nil {
		t.Error("load-more issued a command while a fetch was in flight")
	}
}

func TestDownAtBottomLoadsMore(t *testing.T) {
	mock := &apitest.MockClient{
		Pages: map[int]*api.MessagePage{
			2: {Messages: makeMessages(5, 4), TotalCount: 37},
		},
	}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)
	m.cursor = len(m.items) - 1

	next, cmd := m.Update(key("down"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("down at the last item did not request the next page")
	}
	m = deliverAll(t, m, runCmd(t, cmd))

	if got := mock.LastFetch().Page; got != 2 {
		t.Errorf("fetched page %d, want 2", got)
	}
	if len(m.items) != 8 {
		t.Errorf("len(items) = %d, want 8", len(m.items))
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	mock := &apitest.MockClient{}
	m := newTestModel(mock)

	// Two reloads in a row: the first fetch is superseded by the second.
	_ = (&m).startReload()
	staleID := m.listRequestID
	_ = (&m).startReload()
	currentID := m.listRequestID

	latest := makeMessages(100, 2)
	m = deliver(t, m, messagesLoadedMsg{page: 1, items: latest, total: 2, requestID: currentID})

	// The superseded fetch resolves late with different content.
	m = deliver(t, m, messagesLoadedMsg{page: 1, items: makeMessages(1, 4), total: 99, requestID: staleID})

	if diff := cmp.Diff(latest, m.items); diff != "" {
		t.Errorf("stale response overwrote the list (-want +got):\n%s", diff)
	}
	if m.totalCount != 2 {
		t.Errorf("totalCount = %d, want 2 from the latest fetch", m.totalCount)
	}
}

func TestLabelPatchesItemInPlace(t *testing.T) {
	mock := &apitest.MockClient{}
	items := makeMessages(1, 3)
	m := loadedModel(t, mock, items, 3)

	m = deliver(t, m, labelResultMsg{messageID: 2, label: api.LabelRelevant})

	if len(m.items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(m.items))
	}
	if m.items[1].MessageID != 2 {
		t.Errorf("item order changed: items[1].MessageID = %d", m.items[1].MessageID)
	}
	if m.items[1].Label == nil || *m.items[1].Label != api.LabelRelevant {
		t.Errorf("items[1].Label = %v, want relevant", m.items[1].Label)
	}
	if m.items[0].Label != nil || m.items[2].Label != nil {
		t.Error("labeling one message touched its neighbors")
	}
	if m.items[1].Score != items[1].Score || m.items[1].Embed != items[1].Embed {
		t.Error("labeling changed fields other than the label")
	}
	if m.flashSeverity != severitySuccess || m.flashText == "" {
		t.Errorf("flash = %q/%v, want a success confirmation", m.flashText, m.flashSeverity)
	}
}

func TestLabelFailureKeepsList(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 3), 3)
	before := append([]api.Message(nil), m.items...)

	m = deliver(t, m, labelResultMsg{messageID: 2, label: api.LabelRelevant, err: errors.New("write failed")})

	if diff := cmp.Diff(before, m.items); diff != "" {
		t.Errorf("failed label changed the list (-want +got):\n%s", diff)
	}
	if m.flashSeverity != severityError {
		t.Errorf("flash severity = %v, want error", m.flashSeverity)
	}
}

func TestLabelKeysWriteForCursorItem(t *testing.T) {
	tests := []struct {
		key  string
		want api.Label
	}{
		{"r", api.LabelRelevant},
		{"n", api.LabelNotRelevant},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			mock := &apitest.MockClient{}
			m := loadedModel(t, mock, makeMessages(1, 3), 3)
			m.cursor = 1

			_, cmd := m.Update(key(tt.key))
			if cmd == nil {
				t.Fatal("label key produced no command")
			}
			runCmd(t, cmd)

			want := []apitest.LabelCall{{MessageID: 2, Label: tt.want}}
			if diff := cmp.Diff(want, mock.LabelCalls); diff != "" {
				t.Errorf("label calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnauthorizedExitsDashboard(t *testing.T) {
	mock := &apitest.MockClient{}
	m := newTestModel(mock)

	next, cmd := m.Update(messagesLoadedMsg{page: 1, err: api.ErrUnauthorized, requestID: m.listRequestID})
	m = next.(Model)

	if !m.SessionExpired() {
		t.Error("SessionExpired() = false after a 401")
	}
	if cmd == nil {
		t.Fatal("no quit command issued")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a quit command after a 401")
	}
}

func TestFetchFailureKeepsLastGoodList(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)
	before := append([]api.Message(nil), m.items...)

	_ = (&m).startReload()
	m = deliver(t, m, messagesLoadedMsg{page: 1, err: errors.New("connection refused"), requestID: m.listRequestID})

	if diff := cmp.Diff(before, m.items); diff != "" {
		t.Errorf("failed reload changed the list (-want +got):\n%s", diff)
	}
	if m.flashSeverity != severityError || m.flashText == "" {
		t.Errorf("flash = %q/%v, want an error notification", m.flashText, m.flashSeverity)
	}
	if m.loading {
		t.Error("loading still set after the failure")
	}
}

func TestFlashReplacedNotStacked(t *testing.T) {
	mock := &apitest.MockClient{}
	m := newTestModel(mock)

	_ = (&m).showFlash("first", severityInfo)
	_ = (&m).showFlash("second", severitySuccess)

	if m.flashText != "second" {
		t.Errorf("flashText = %q, want the newest notification only", m.flashText)
	}

	// The first notification's expiry timer must not clear the replacement.
	m = deliver(t, m, flashClearMsg{})
	if m.flashText != "second" {
		t.Error("an expired timer cleared a newer notification")
	}

	// Once the replacement itself expires, the clear goes through.
	m.flashExpiresAt = time.Now().Add(-time.Second)
	m = deliver(t, m, flashClearMsg{})
	if m.flashText != "" {
		t.Errorf("flashText = %q, want cleared after expiry", m.flashText)
	}
}

func TestEscDismissesFlash(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 3), 3)
	_ = (&m).showFlash("note", severityInfo)

	m = deliver(t, m, key("esc"))
	if m.flashText != "" {
		t.Errorf("flashText = %q, want dismissed", m.flashText)
	}
}

func TestChannelsLoaded(t *testing.T) {
	mock := &apitest.MockClient{}
	m := newTestModel(mock)

	m = deliver(t, m, channelsLoadedMsg{channels: []string{"alpha", "beta"}, requestID: m.channelRequestID})
	if len(m.channelList) != 2 {
		t.Fatalf("channelList = %v", m.channelList)
	}
	if m.freeFormChannels() {
		t.Error("freeFormChannels() = true with a fetched list")
	}

	// A stale directory response must not overwrite a newer one.
	staleID := m.channelRequestID
	_ = (&m).startChannelRefresh()
	m = deliver(t, m, channelsLoadedMsg{channels: []string{"gamma"}, requestID: m.channelRequestID})
	m = deliver(t, m, channelsLoadedMsg{channels: nil, requestID: staleID})

	want := []string{"gamma"}
	if diff := cmp.Diff(want, m.channelList); diff != "" {
		t.Errorf("stale channels overwrote the list (-want +got):\n%s", diff)
	}
}

func TestApplyValidationBlocksReload(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)
	fetchesBefore := mock.FetchCount()

	m = deliver(t, m, key("f"))
	m.form.inputs[inputDateStart].SetValue("2024-02-01")
	m.form.inputs[inputDateEnd].SetValue("2024-01-01")
	m.form.syncDraft(m.freeFormChannels())

	next, _ := m.Update(key("enter"))
	m = next.(Model)

	if m.flashSeverity != severityError || m.flashText == "" {
		t.Errorf("flash = %q/%v, want a validation error", m.flashText, m.flashSeverity)
	}
	if !m.form.active {
		t.Error("form closed despite the validation failure")
	}
	if diff := cmp.Diff(api.DefaultCriteria(), m.form.appliedCriteria, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("applied criteria changed on a failed apply (-want +got):\n%s", diff)
	}
	if mock.FetchCount() != fetchesBefore {
		t.Error("a failed apply reached the network")
	}
}

func TestApplyReloadsFromPageOne(t *testing.T) {
	mock := &apitest.MockClient{
		Pages: map[int]*api.MessagePage{
			1: {Messages: makeMessages(50, 2), TotalCount: 2},
			2: {Messages: makeMessages(5, 4), TotalCount: 37},
		},
	}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)

	// Scroll into page 2 first.
	next, cmd := m.Update(key("m"))
	m = deliverAll(t, next.(Model), runCmd(t, cmd))
	m.cursor = 5

	m = deliver(t, m, key("f"))
	m.form.draft.MediaType = api.MediaPhoto

	next, cmd = m.Update(key("enter"))
	m = next.(Model)
	if m.form.active {
		t.Error("form still active after a successful apply")
	}
	m = deliverAll(t, m, runCmd(t, cmd))

	last := mock.LastFetch()
	if last.Page != 1 {
		t.Errorf("apply fetched page %d, want 1", last.Page)
	}
	if last.Criteria.MediaType != api.MediaPhoto {
		t.Errorf("apply fetched media type %q, want photo", last.Criteria.MediaType)
	}
	if m.cursor != 0 || m.page != 1 {
		t.Errorf("cursor/page = %d/%d, want reset to 0/1", m.cursor, m.page)
	}
	if len(m.items) != 2 {
		t.Errorf("len(items) = %d, want the fresh page only", len(m.items))
	}
}

func TestResetTriggersSingleReload(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)

	m = deliver(t, m, key("f"))
	m.form.inputs[inputScoreMin].SetValue("3")
	m.form.syncDraft(m.freeFormChannels())

	fetchesBefore := mock.FetchCount()
	next, cmd := m.Update(key("ctrl+r"))
	m = next.(Model)
	m = deliverAll(t, m, runCmd(t, cmd))

	if mock.FetchCount() != fetchesBefore+1 {
		t.Errorf("reset issued %d fetches, want exactly 1", mock.FetchCount()-fetchesBefore)
	}
	last := mock.LastFetch()
	if last.Page != 1 {
		t.Errorf("reset fetched page %d, want 1", last.Page)
	}
	if diff := cmp.Diff(api.DefaultCriteria(), last.Criteria, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("reset fetched non-default criteria (-want +got):\n%s", diff)
	}
	if m.form.pending() {
		t.Error("pending changes remain after reset")
	}
}

func TestEscKeepsDraftAsPending(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 4), 37)

	m = deliver(t, m, key("f"))
	m.form.inputs[inputScoreMin].SetValue("3")
	m.form.syncDraft(m.freeFormChannels())

	m = deliver(t, m, key("esc"))
	if m.form.active {
		t.Error("form still active after esc")
	}
	if !m.form.pending() {
		t.Error("draft edits lost on esc, want kept as pending")
	}
	if diff := cmp.Diff(api.DefaultCriteria(), m.form.appliedCriteria, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("esc changed the applied criteria (-want +got):\n%s", diff)
	}
}

func TestCursorNavigation(t *testing.T) {
	mock := &apitest.MockClient{}
	m := loadedModel(t, mock, makeMessages(1, 3), 3)

	m = deliver(t, m, key("j"))
	m = deliver(t, m, key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d after j j, want 2", m.cursor)
	}
	m = deliver(t, m, key("k"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after k, want 1", m.cursor)
	}
	m = deliver(t, m, key("G"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d after G, want 2", m.cursor)
	}
	m = deliver(t, m, key("g"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after g, want 0", m.cursor)
	}
	m = deliver(t, m, key("pgdown"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d after pgdown, want clamped to 2", m.cursor)
	}
}

func TestChannelToggleKeys(t *testing.T) {
	mock := &apitest.MockClient{}
	m := newTestModel(mock)
	m = deliver(t, m, channelsLoadedMsg{channels: []string{"alpha", "beta", "gamma"}, requestID: m.channelRequestID})

	m = deliver(t, m, key("f"))
	m.form.setFocus(fieldChannels, m.freeFormChannels())

	m = deliver(t, m, key(" ")) // toggle alpha
	m = deliver(t, m, key("l"))
	m = deliver(t, m, key(" ")) // toggle beta
	want := []string{"alpha", "beta"}
	if diff := cmp.Diff(want, m.form.draft.Channels); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}

	m = deliver(t, m, key(" ")) // untoggle beta
	if diff := cmp.Diff([]string{"alpha"}, m.form.draft.Channels); diff != "" {
		t.Errorf("untoggle mismatch (-want +got):\n%s", diff)
	}

	m = deliver(t, m, key("a"))
	if len(m.form.draft.Channels) != 3 {
		t.Errorf("select-all picked %d channels, want 3", len(m.form.draft.Channels))
	}
	m = deliver(t, m, key("x"))
	if len(m.form.draft.Channels) != 0 {
		t.Errorf("clear left %d channels selected", len(m.form.draft.Channels))
	}
}
