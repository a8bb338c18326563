package llm

import (
	"context"
	"errors"
	"time"

	"github.com/dwizi/recruit-desk/internal/store"
)

var ErrUnavailable = errors.New("llm unavailable")

// QuestionInput is an open-ended message that matched no action, together
// with everything the answerer is allowed to see.
type QuestionInput struct {
	ActingUserID string
	Text         string
	Snapshot     store.Snapshot
	Now          time.Time
	Location     *time.Location
}

type Answerer interface {
	Answer(ctx context.Context, input QuestionInput) (string, error)
}
