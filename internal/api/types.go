package api

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Label is a relevance judgment on a message.
type Label int

const (
	LabelNotRelevant Label = 0
	LabelRelevant    Label = 1
)

// String returns a human-readable name for the label.
func (l Label) String() string {
	switch l {
	case LabelRelevant:
		return "relevant"
	case LabelNotRelevant:
		return "not relevant"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// UnmarshalJSON accepts integral labels that the backend may serialize as
// floats (pandas promotes nullable integer columns to float64).
func (l *Label) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse label %q: %w", string(data), err)
	}
	*l = Label(int(f))
	return nil
}

// MediaType narrows results to one kind of message content.
type MediaType string

const (
	MediaText     MediaType = "text"
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaLink     MediaType = "link"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
	MediaSticker  MediaType = "sticker"
)

// MediaTypes lists all filterable media types in display order.
var MediaTypes = []MediaType{
	MediaText, MediaPhoto, MediaVideo, MediaLink, MediaDocument, MediaAudio, MediaSticker,
}

// SortField selects the result ordering for a list request.
type SortField string

const (
	SortByScore   SortField = "score"
	SortByViews   SortField = "views"
	SortByDate    SortField = "date"
	SortByChannel SortField = "channel"
)

// SortFields lists all sort options in display order.
var SortFields = []SortField{SortByScore, SortByViews, SortByDate, SortByChannel}

// FilterCriteria is the query a list request is scoped by. Zero values mean
// "unbounded" for every field except SortBy, which defaults to score.
//
// Channels is a multi-select set: empty means all channels. (The single-value
// channel variant is subsumed by a one-element set.)
type FilterCriteria struct {
	DateStart string     // inclusive, ISO YYYY-MM-DD
	DateEnd   string     // inclusive, ISO YYYY-MM-DD
	Channels  []string
	ScoreMin  *float64 // inclusive
	ScoreMax  *float64 // inclusive
	MediaType MediaType
	SortBy    SortField
}

// DefaultCriteria returns the all-empty criteria used on startup and reset.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{SortBy: SortByScore}
}

const dateLayout = "2006-01-02"

// Validate checks the criteria invariants before a request is issued:
// dates must be ISO formatted, and both range filters must not be inverted.
// The returned *ValidationError carries a user-facing message.
func (c FilterCriteria) Validate() error {
	var start, end time.Time
	var err error

	if c.DateStart != "" {
		if start, err = time.Parse(dateLayout, c.DateStart); err != nil {
			return &ValidationError{Message: fmt.Sprintf("start date %q is not a valid YYYY-MM-DD date", c.DateStart)}
		}
	}
	if c.DateEnd != "" {
		if end, err = time.Parse(dateLayout, c.DateEnd); err != nil {
			return &ValidationError{Message: fmt.Sprintf("end date %q is not a valid YYYY-MM-DD date", c.DateEnd)}
		}
	}
	if c.DateStart != "" && c.DateEnd != "" && start.After(end) {
		return &ValidationError{Message: "start date must not be after end date"}
	}

	if c.ScoreMin != nil && c.ScoreMax != nil && *c.ScoreMin > *c.ScoreMax {
		return &ValidationError{Message: "minimum score must not exceed maximum score"}
	}

	return nil
}

// filterRequest is the wire form of a filter_messages request body.
type filterRequest struct {
	DateStart string    `json:"dateStart,omitempty"`
	DateEnd   string    `json:"dateEnd,omitempty"`
	Channel   []string  `json:"channel,omitempty"`
	ScoreMin  *float64  `json:"scoreMin,omitempty"`
	ScoreMax  *float64  `json:"scoreMax,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	SortBy    SortField `json:"sortBy"`
	Page      int       `json:"page"`
	PerPage   int       `json:"per_page"`
}

// newFilterRequest builds the request body for a page fetch.
func newFilterRequest(c FilterCriteria, page, perPage int) filterRequest {
	sortBy := c.SortBy
	if sortBy == "" {
		sortBy = SortByScore
	}
	return filterRequest{
		DateStart: c.DateStart,
		DateEnd:   c.DateEnd,
		Channel:   c.Channels,
		ScoreMin:  c.ScoreMin,
		ScoreMax:  c.ScoreMax,
		MediaType: c.MediaType,
		SortBy:    sortBy,
		Page:      page,
		PerPage:   perPage,
	}
}

// Message is a single reviewable item. Identity is MessageID; everything else
// is a read-only snapshot except Label, which is patched in place after a
// successful label write.
//
// JSON keys mirror the upstream dataset's column names.
type Message struct {
	MessageID int64   `json:"Message ID"`
	Score     float64 `json:"Score"`
	URL       string  `json:"URL"`
	Label     *Label  `json:"Label"` // nil = no judgment yet
	Embed     string  `json:"Embed"` // opaque renderable payload, not interpreted
	Channel   string  `json:"Title,omitempty"`
}

// MessagePage is one page of a filtered listing.
type MessagePage struct {
	Messages   []Message
	TotalCount int
}

// dedupeSorted returns the sorted set of non-empty channel names.
func dedupeSorted(channels []string) []string {
	seen := make(map[string]bool, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}
