// Package dataset holds the in-memory fake message corpus served by devserver.
package dataset

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// Message is one fake reviewable message.
type Message struct {
	ID      int64
	Score   float64
	URL     string
	Label   *int // nil = unlabeled, 0/1 otherwise
	Embed   string
	Channel string
	Media   string
	Views   int
	Date    time.Time
}

// Query mirrors the filter endpoint's request semantics.
type Query struct {
	DateStart string
	DateEnd   string
	Channels  []string
	ScoreMin  *float64
	ScoreMax  *float64
	MediaType string
	SortBy    string
}

// Dataset is a mutable fake corpus. All methods are safe for concurrent use.
type Dataset struct {
	mu       sync.Mutex
	messages []Message
}

var channelNames = []string{
	"technews", "marketwatch", "dailydigest", "localalerts", "deepdives",
}

var mediaTypes = []string{"text", "photo", "video", "link", "document", "audio", "sticker"}

var snippets = []string{
	"Breaking: major outage reported across several regions",
	"Weekly roundup of the most discussed releases",
	"Opinion: why this quarter looks different",
	"Thread: a close look at the new policy changes",
	"Reminder: maintenance window scheduled for tonight",
}

// Generate builds a deterministic corpus of n messages from the given seed.
func Generate(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	messages := make([]Message, n)
	for i := range messages {
		id := int64(1000 + i)
		ch := channelNames[rng.Intn(len(channelNames))]
		messages[i] = Message{
			ID:      id,
			Score:   float64(rng.Intn(1000)) / 100,
			URL:     fmt.Sprintf("https://t.me/%s/%d", ch, id),
			Embed:   snippets[rng.Intn(len(snippets))],
			Channel: ch,
			Media:   mediaTypes[rng.Intn(len(mediaTypes))],
			Views:   rng.Intn(50000),
			Date:    base.AddDate(0, 0, rng.Intn(365)),
		}
	}
	return &Dataset{messages: messages}
}

const dateLayout = "2006-01-02"

// Filter returns the page of messages matching q plus the total match count.
// Page numbering starts at 1.
func (d *Dataset) Filter(q Query, page, perPage int) ([]Message, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var start, end time.Time
	var err error
	if q.DateStart != "" {
		if start, err = time.Parse(dateLayout, q.DateStart); err != nil {
			return nil, 0, fmt.Errorf("invalid dateStart %q", q.DateStart)
		}
	}
	if q.DateEnd != "" {
		if end, err = time.Parse(dateLayout, q.DateEnd); err != nil {
			return nil, 0, fmt.Errorf("invalid dateEnd %q", q.DateEnd)
		}
	}

	wantChannel := make(map[string]bool, len(q.Channels))
	for _, ch := range q.Channels {
		wantChannel[strings.TrimSpace(ch)] = true
	}

	var matched []Message
	for _, m := range d.messages {
		if !start.IsZero() && m.Date.Before(start) {
			continue
		}
		if !end.IsZero() && m.Date.After(end) {
			continue
		}
		if len(wantChannel) > 0 && !wantChannel[m.Channel] {
			continue
		}
		if q.ScoreMin != nil && m.Score < *q.ScoreMin {
			continue
		}
		if q.ScoreMax != nil && m.Score > *q.ScoreMax {
			continue
		}
		if q.MediaType != "" && m.Media != q.MediaType {
			continue
		}
		matched = append(matched, m)
	}

	switch q.SortBy {
	case "views":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Views > matched[j].Views })
	case "date":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	case "channel":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Channel < matched[j].Channel })
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Score > matched[j].Score })
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 24
	}
	offset := (page - 1) * perPage
	if offset >= len(matched) {
		return nil, len(matched), nil
	}
	limit := offset + perPage
	if limit > len(matched) {
		limit = len(matched)
	}
	return matched[offset:limit], len(matched), nil
}

// Label records a relevance judgment. It fails when the message is unknown
// or the label value is out of range.
func (d *Dataset) Label(id int64, label int) error {
	if label != 0 && label != 1 {
		return fmt.Errorf("label must be 0 or 1, got %d", label)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.messages {
		if d.messages[i].ID == id {
			v := label
			d.messages[i].Label = &v
			return nil
		}
	}
	return fmt.Errorf("message %d not found", id)
}

// RelevantCount returns how many messages are currently labeled relevant.
func (d *Dataset) RelevantCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, m := range d.messages {
		if m.Label != nil && *m.Label == 1 {
			count++
		}
	}
	return count
}

// Channels returns the distinct channel names present in the corpus.
func (d *Dataset) Channels() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, m := range d.messages {
		if !seen[m.Channel] {
			seen[m.Channel] = true
			out = append(out, m.Channel)
		}
	}
	sort.Strings(out)
	return out
}
