package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tgreview/tgreview/internal/api"
)

// formField identifies one field of the filter form.
type formField int

const (
	fieldDateStart formField = iota
	fieldDateEnd
	fieldScoreMin
	fieldScoreMax
	fieldChannels
	fieldMediaType
	fieldSortBy
	fieldCount
)

// text input slots; fieldChannels uses inputChannels only when no channel
// list is available and the field degrades to free-form entry.
const (
	inputDateStart = iota
	inputDateEnd
	inputScoreMin
	inputScoreMax
	inputChannels
	inputCount
)

// draftValues holds the filter fields as edited, before parsing. Keeping the
// raw strings lets the pending-changes check compare exactly what the user
// sees, and lets validation report the offending text verbatim.
type draftValues struct {
	DateStart string
	DateEnd   string
	ScoreMin  string
	ScoreMax  string
	Channels  []string
	MediaType api.MediaType // "" = all types
	SortBy    api.SortField
}

func defaultDraft() draftValues {
	return draftValues{SortBy: api.SortByScore}
}

// toCriteria parses the draft into wire criteria. Unparseable numbers and
// the criteria invariants both surface as *api.ValidationError.
func (d draftValues) toCriteria() (api.FilterCriteria, error) {
	c := api.FilterCriteria{
		DateStart: strings.TrimSpace(d.DateStart),
		DateEnd:   strings.TrimSpace(d.DateEnd),
		Channels:  slices.Clone(d.Channels),
		MediaType: d.MediaType,
		SortBy:    d.SortBy,
	}

	if s := strings.TrimSpace(d.ScoreMin); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c, &api.ValidationError{Message: fmt.Sprintf("minimum score %q is not a number", s)}
		}
		c.ScoreMin = &f
	}
	if s := strings.TrimSpace(d.ScoreMax); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c, &api.ValidationError{Message: fmt.Sprintf("maximum score %q is not a number", s)}
		}
		c.ScoreMax = &f
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// formState is the filter form's state machine: a draft mutated on every
// edit, and the applied snapshot that governs the displayed list. The form
// is Dirty exactly when the two differ.
type formState struct {
	draft   draftValues
	applied draftValues

	// appliedCriteria is the parsed form of applied, set on apply/reset.
	appliedCriteria api.FilterCriteria

	inputs [inputCount]textinput.Model
	focus  formField
	active bool // form focused (vs message list)

	channelCursor int // cursor within the channel toggle list
}

func newFormState() formState {
	f := formState{
		draft:           defaultDraft(),
		applied:         defaultDraft(),
		appliedCriteria: api.DefaultCriteria(),
	}

	for i := range f.inputs {
		ti := textinput.New()
		ti.CharLimit = 64
		ti.Width = 24
		f.inputs[i] = ti
	}
	f.inputs[inputDateStart].Placeholder = "YYYY-MM-DD"
	f.inputs[inputDateEnd].Placeholder = "YYYY-MM-DD"
	f.inputs[inputScoreMin].Placeholder = "0.0"
	f.inputs[inputScoreMax].Placeholder = "10.0"
	f.inputs[inputChannels].Placeholder = "channel, channel, ..."
	f.inputs[inputChannels].CharLimit = 256
	f.inputs[inputChannels].Width = 40

	return f
}

// pending reports whether the draft differs from the applied snapshot.
func (f *formState) pending() bool {
	return !cmp.Equal(f.draft, f.applied, cmpopts.EquateEmpty())
}

// apply parses and validates the draft. On success the draft becomes the
// applied snapshot and the parsed criteria are returned. On failure nothing
// changes and the validation error is returned for display.
func (f *formState) apply() (api.FilterCriteria, error) {
	criteria, err := f.draft.toCriteria()
	if err != nil {
		return api.FilterCriteria{}, err
	}
	f.applied = f.draft
	f.applied.Channels = slices.Clone(f.draft.Channels)
	f.appliedCriteria = criteria
	return criteria, nil
}

// reset restores both draft and applied snapshot to the all-empty defaults.
func (f *formState) reset() {
	f.draft = defaultDraft()
	f.applied = defaultDraft()
	f.appliedCriteria = api.DefaultCriteria()
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.channelCursor = 0
}

// syncDraft refreshes the draft from the text inputs after an edit.
// freeFormChannels indicates the channels field is in free-form mode.
func (f *formState) syncDraft(freeFormChannels bool) {
	f.draft.DateStart = f.inputs[inputDateStart].Value()
	f.draft.DateEnd = f.inputs[inputDateEnd].Value()
	f.draft.ScoreMin = f.inputs[inputScoreMin].Value()
	f.draft.ScoreMax = f.inputs[inputScoreMax].Value()
	if freeFormChannels {
		f.draft.Channels = splitChannels(f.inputs[inputChannels].Value())
	}
}

// splitChannels parses a comma-separated channel list.
func splitChannels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// toggleChannel adds or removes a channel from the draft selection.
func (f *formState) toggleChannel(channel string) {
	if i := slices.Index(f.draft.Channels, channel); i >= 0 {
		f.draft.Channels = slices.Delete(f.draft.Channels, i, i+1)
		if len(f.draft.Channels) == 0 {
			f.draft.Channels = nil
		}
		return
	}
	f.draft.Channels = append(f.draft.Channels, channel)
}

// textInputFor maps a focused field to its text input slot, or -1 when the
// field is not text-backed. The channels field is text-backed only in
// free-form mode.
func (f *formState) textInputFor(field formField, freeFormChannels bool) int {
	switch field {
	case fieldDateStart:
		return inputDateStart
	case fieldDateEnd:
		return inputDateEnd
	case fieldScoreMin:
		return inputScoreMin
	case fieldScoreMax:
		return inputScoreMax
	case fieldChannels:
		if freeFormChannels {
			return inputChannels
		}
		return -1
	default:
		return -1
	}
}

// setFocus moves focus to the given field, updating text input focus state.
func (f *formState) setFocus(field formField, freeFormChannels bool) {
	f.focus = field
	active := f.textInputFor(field, freeFormChannels)
	for i := range f.inputs {
		if i == active {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// cycleMediaType advances the media type filter by dir (+1/-1), including
// the "all types" empty state.
func cycleMediaType(cur api.MediaType, dir int) api.MediaType {
	options := append([]api.MediaType{""}, api.MediaTypes...)
	i := slices.Index(options, cur)
	if i < 0 {
		i = 0
	}
	i = (i + dir + len(options)) % len(options)
	return options[i]
}

// cycleSortField advances the sort order by dir (+1/-1).
func cycleSortField(cur api.SortField, dir int) api.SortField {
	i := slices.Index(api.SortFields, cur)
	if i < 0 {
		i = 0
	}
	i = (i + dir + len(api.SortFields)) % len(api.SortFields)
	return api.SortFields[i]
}
