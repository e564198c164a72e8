// Package apitest provides a shared test double for the api.Service interface.
package apitest

import (
	"context"
	"sync"

	"github.com/tgreview/tgreview/internal/api"
)

// FetchCall records one FetchMessages invocation.
type FetchCall struct {
	Criteria api.FilterCriteria
	Page     int
	PageSize int
}

// LabelCall records one SetLabel invocation.
type LabelCall struct {
	MessageID int64
	Label     api.Label
}

// MockClient implements api.Service for testing. Each method delegates to an
// optional function field; when the field is nil, the corresponding canned
// result is returned. All invocations are recorded for assertions.
type MockClient struct {
	mu sync.Mutex

	// Canned results.
	Page          *api.MessagePage
	Pages         map[int]*api.MessagePage // per page number; overrides Page when set
	Channels      []string
	ExportMessage string

	// Optional overrides — set these to customise behavior per-test.
	FetchMessagesFunc  func(ctx context.Context, criteria api.FilterCriteria, page, pageSize int) (*api.MessagePage, error)
	SetLabelFunc       func(ctx context.Context, messageID int64, label api.Label) error
	ExportRelevantFunc func(ctx context.Context) (string, error)
	ListChannelsFunc   func(ctx context.Context) ([]string, error)

	// Recorded calls.
	FetchCalls    []FetchCall
	LabelCalls    []LabelCall
	ExportCalls   int
	ChannelsCalls int
}

// Compile-time check.
var _ api.Service = (*MockClient)(nil)

func (m *MockClient) FetchMessages(ctx context.Context, criteria api.FilterCriteria, page, pageSize int) (*api.MessagePage, error) {
	m.mu.Lock()
	m.FetchCalls = append(m.FetchCalls, FetchCall{Criteria: criteria, Page: page, PageSize: pageSize})
	m.mu.Unlock()

	if m.FetchMessagesFunc != nil {
		return m.FetchMessagesFunc(ctx, criteria, page, pageSize)
	}
	if m.Pages != nil {
		if p, ok := m.Pages[page]; ok {
			return p, nil
		}
		return &api.MessagePage{}, nil
	}
	if m.Page != nil {
		return m.Page, nil
	}
	return &api.MessagePage{}, nil
}

func (m *MockClient) SetLabel(ctx context.Context, messageID int64, label api.Label) error {
	m.mu.Lock()
	m.LabelCalls = append(m.LabelCalls, LabelCall{MessageID: messageID, Label: label})
	m.mu.Unlock()

	if m.SetLabelFunc != nil {
		return m.SetLabelFunc(ctx, messageID, label)
	}
	return nil
}

func (m *MockClient) ExportRelevant(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.ExportCalls++
	m.mu.Unlock()

	if m.ExportRelevantFunc != nil {
		return m.ExportRelevantFunc(ctx)
	}
	if m.ExportMessage != "" {
		return m.ExportMessage, nil
	}
	return "Relevant messages exported", nil
}

func (m *MockClient) ListChannels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.ChannelsCalls++
	m.mu.Unlock()

	if m.ListChannelsFunc != nil {
		return m.ListChannelsFunc(ctx)
	}
	return m.Channels, nil
}

// FetchCount returns the number of recorded FetchMessages calls.
func (m *MockClient) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FetchCalls)
}

// LastFetch returns the most recent FetchMessages call, or a zero value.
func (m *MockClient) LastFetch() FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.FetchCalls) == 0 {
		return FetchCall{}
	}
	return m.FetchCalls[len(m.FetchCalls)-1]
}
