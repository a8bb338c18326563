package intent

import (
	"github.com/dwizi/recruit-desk/internal/store"
)

type Kind string

const (
	KindSetReminder            Kind = "set_reminder"
	KindAddMeetingNote         Kind = "add_meeting_note"
	KindMarkMeetingNoteDone    Kind = "mark_meeting_note_done"
	KindConfirmPendingReminder Kind = "confirm_pending_reminder"
	KindMarkCandidatePending   Kind = "mark_candidate_pending"
	KindFinanceQuery           Kind = "finance_query"
	KindMeetingTaskQuery       Kind = "meeting_task_query"
	KindGenericTaskQuery       Kind = "generic_task_query"
	KindAssignTask             Kind = "assign_task"
)

// Intent is one of the concrete action types below.
type Intent interface {
	Kind() Kind
}

// SetReminder asks for a reminder Hours from now. PersonKind is empty when
// the message did not name a kind.
type SetReminder struct {
	Name       string
	Hours      int
	PersonKind store.PersonKind
}

type AddMeetingNote struct {
	PersonName string
	PersonKind store.PersonKind
	Content    string
}

type MarkMeetingNoteDone struct {
	PersonName string
	PersonKind store.PersonKind
}

type ConfirmPendingReminder struct{}

type MarkCandidatePending struct {
	Name string
}

type FinanceQuery struct{}

// MeetingTaskQuery filters are independent flags; the executor decides which
// combination it applies.
type MeetingTaskQuery struct {
	Mine      bool
	UserName  string
	Today     bool
	Pending   bool
	Completed bool
}

type DateFilter string

const (
	DateFilterNone      DateFilter = ""
	DateFilterToday     DateFilter = "today"
	DateFilterPending   DateFilter = "pending"
	DateFilterCompleted DateFilter = "completed"
)

type GenericTaskQuery struct {
	UserName   string
	DateFilter DateFilter
}

type AssignTask struct {
	Description string
	UserName    string
}

func (SetReminder) Kind() Kind            { return KindSetReminder }
func (AddMeetingNote) Kind() Kind         { return KindAddMeetingNote }
func (MarkMeetingNoteDone) Kind() Kind    { return KindMarkMeetingNoteDone }
func (ConfirmPendingReminder) Kind() Kind { return KindConfirmPendingReminder }
func (MarkCandidatePending) Kind() Kind   { return KindMarkCandidatePending }
func (FinanceQuery) Kind() Kind           { return KindFinanceQuery }
func (MeetingTaskQuery) Kind() Kind       { return KindMeetingTaskQuery }
func (GenericTaskQuery) Kind() Kind       { return KindGenericTaskQuery }
func (AssignTask) Kind() Kind             { return KindAssignTask }
