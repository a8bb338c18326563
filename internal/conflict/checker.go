package conflict

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dwizi/recruit-desk/internal/deskerr"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

type InterviewSource interface {
	ListInterviewsForCandidate(ctx context.Context, candidateID string) ([]store.Interview, error)
}

// Conflict carries every interview that shares a civil day with the
// proposed reminder.
type Conflict struct {
	Interviews []store.Interview
	Times      []string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("%s at %s", deskerr.ErrConflict, strings.Join(c.Times, ", "))
}

func (c *Conflict) Unwrap() error {
	return deskerr.ErrConflict
}

type Checker struct {
	source InterviewSource
	clock  textfmt.Clock
}

func NewChecker(source InterviewSource, clock textfmt.Clock) *Checker {
	return &Checker{source: source, clock: clock}
}

// Check returns nil when no interview of the candidate falls on the same
// display-zone day as at.
func (c *Checker) Check(ctx context.Context, candidateID string, at time.Time) (*Conflict, error) {
	interviews, err := c.source.ListInterviewsForCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	sameDay := make([]store.Interview, 0, len(interviews))
	for _, interview := range interviews {
		if interview.ScheduledAt.IsZero() {
			continue
		}
		if c.clock.SameDay(interview.ScheduledAt, at) {
			sameDay = append(sameDay, interview)
		}
	}
	if len(sameDay) == 0 {
		return nil, nil
	}
	sort.SliceStable(sameDay, func(i, j int) bool {
		return sameDay[i].ScheduledAt.Before(sameDay[j].ScheduledAt)
	})
	result := &Conflict{Interviews: sameDay, Times: make([]string, 0, len(sameDay))}
	for _, interview := range sameDay {
		result.Times = append(result.Times, c.clock.Time(interview.ScheduledAt))
	}
	return result, nil
}
