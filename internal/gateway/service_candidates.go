package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/dwizi/recruit-desk/internal/intent"
	"github.com/dwizi/recruit-desk/internal/store"
)

const candidatePendingStatus = "Pending"

func (s *Service) markCandidatePending(ctx context.Context, actor string, request intent.MarkCandidatePending) string {
	person, reply, ok := s.resolvePerson(ctx, request.Name, store.PersonKindCandidate)
	if !ok {
		return reply
	}
	if err := s.store.SetCandidateStatus(ctx, person.ID, candidatePendingStatus); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Sprintf("%s no longer exists.", person.Name)
		}
		return s.failure("update candidate status", err)
	}
	s.audit(ctx, actor, "candidate.status", person.Ref(), person.Status+" -> "+candidatePendingStatus)
	return fmt.Sprintf("%s is now marked as %s.\nUpdated %s.", person.Name, candidatePendingStatus, s.cfg.Clock.DateTime(s.now()))
}
