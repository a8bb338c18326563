package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Snapshot is every business table the Q&A fallback may read.
type Snapshot struct {
	Candidates      []Person
	Clients         []Client
	Interviews      []Interview
	MeetingNotes    []MeetingNote
	MeetingTasks    []MeetingTaskView
	TaskAssignments []TaskAssignment
	Staff           []Staff
}

// Snapshot reads all tables concurrently; the reads have no ordering
// dependency on each other.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snapshot Snapshot
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		records, err := s.ListCandidates(groupCtx)
		snapshot.Candidates = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListClients(groupCtx)
		snapshot.Clients = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListInterviews(groupCtx)
		snapshot.Interviews = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListMeetingNotes(groupCtx)
		snapshot.MeetingNotes = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListMeetingTasks(groupCtx, MeetingTaskFilter{Limit: 500})
		snapshot.MeetingTasks = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListTaskAssignments(groupCtx, TaskAssignmentFilter{Limit: 500})
		snapshot.TaskAssignments = records
		return err
	})
	group.Go(func() error {
		records, err := s.ListStaff(groupCtx)
		snapshot.Staff = records
		return err
	})
	if err := group.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot, nil
}
