// Package progress defines the application-progress state machine shown on the tracker.
//
// Valid stage graph:
//
//	Applied ──► Interview ──► Offer ──► Hired
//	   │            │           │
//	   └────────────┴───────────┴──► Rejected
//
// Hired and Rejected are terminal stages.
package progress

import (
	"fmt"
	"time"

	"github.com/jonathan/jobboard/internal/types"
)

// Stage is one step of an application.
type Stage string

const (
	StageApplied   Stage = "Applied"
	StageInterview Stage = "Interview"
	StageOffer     Stage = "Offer"
	StageHired     Stage = "Hired"
	StageRejected  Stage = "Rejected"
)

var validTransitions = map[Stage][]Stage{
	StageApplied:   {StageInterview, StageRejected},
	StageInterview: {StageOffer, StageRejected},
	StageOffer:     {StageHired, StageRejected},
}

// TransitionError reports a stage change the state machine forbids.
type TransitionError struct {
	From Stage
	To   Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move application from %s to %s", e.From, e.To)
}

// ParseStage converts a raw string to a Stage, returning an error for unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	switch st {
	case StageApplied, StageInterview, StageOffer, StageHired, StageRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application stage %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Stage) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further stage can follow s.
func IsTerminal(s Stage) bool {
	_, ok := validTransitions[s]
	return !ok
}

// New returns the progress of a freshly submitted application.
func New(at time.Time) types.Progress {
	return types.Progress{
		Current:  string(StageApplied),
		Timeline: []types.TimelineEntry{{Date: types.NewDate(at).String(), Stage: string(StageApplied)}},
	}
}

// Advance moves p to the stage named by next and records it on the timeline.
// p is not modified; the updated copy is returned.
func Advance(p types.Progress, next string, at time.Time) (types.Progress, error) {
	to, err := ParseStage(next)
	if err != nil {
		return p, err
	}
	from := Stage(p.Current)
	if !IsTransitionAllowed(from, to) {
		return p, &TransitionError{From: from, To: to}
	}

	timeline := make([]types.TimelineEntry, len(p.Timeline), len(p.Timeline)+1)
	copy(timeline, p.Timeline)
	timeline = append(timeline, types.TimelineEntry{Date: types.NewDate(at).String(), Stage: string(to)})

	return types.Progress{Current: string(to), Timeline: timeline}, nil
}
