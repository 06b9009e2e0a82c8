package models

import (
	"time"

	dErrors "auditfeed/pkg/domain-errors"
)

// QueryTimeLayout is the timestamp layout the content listing endpoint accepts.
const QueryTimeLayout = "2006-01-02T15:04:05"

// TimeWindow bounds content discovery. The zero value means no window.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow builds a window from optional bounds. Both bounds or neither
// must be given; a single bound is a configuration error.
func NewTimeWindow(start, end *time.Time) (TimeWindow, error) {
	switch {
	case start == nil && end == nil:
		return TimeWindow{}, nil
	case start == nil:
		return TimeWindow{}, dErrors.New(dErrors.CodeValidation, "endTime requires startTime to be specified")
	case end == nil:
		return TimeWindow{}, dErrors.New(dErrors.CodeValidation, "startTime requires endTime to be specified")
	}
	if end.Before(*start) {
		return TimeWindow{}, dErrors.New(dErrors.CodeValidation, "endTime must not be before startTime")
	}
	return TimeWindow{Start: start.UTC(), End: end.UTC()}, nil
}

// IsSet reports whether the window carries bounds.
func (w TimeWindow) IsSet() bool {
	return !w.Start.IsZero() && !w.End.IsZero()
}

// Validate re-checks the both-or-neither invariant for windows built by hand.
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() != w.End.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "startTime and endTime must both be specified or both omitted")
	}
	if w.IsSet() && w.End.Before(w.Start) {
		return dErrors.New(dErrors.CodeValidation, "endTime must not be before startTime")
	}
	return nil
}

// Span returns the window length, zero when unset.
func (w TimeWindow) Span() time.Duration {
	if !w.IsSet() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// StartParam and EndParam format the bounds for the listing query.
func (w TimeWindow) StartParam() string { return w.Start.UTC().Format(QueryTimeLayout) }
func (w TimeWindow) EndParam() string   { return w.End.UTC().Format(QueryTimeLayout) }
