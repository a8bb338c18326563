package intent

import (
	"reflect"
	"testing"

	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

func TestExtractorTable(t *testing.T) {
	extractor := NewExtractor()
	cases := []struct {
		name string
		text string
		want Intent
	}{
		{
			name: "reminder for candidate",
			text: `set reminder for candidate "Jane Doe" in next 2 hours`,
			want: SetReminder{Name: "Jane Doe", Hours: 2, PersonKind: store.PersonKindCandidate},
		},
		{
			name: "reminder for client",
			text: "Please SET a reminder for client Acme Corp in the next 12 hours",
			want: SetReminder{Name: "Acme Corp", Hours: 12, PersonKind: store.PersonKindClient},
		},
		{
			name: "reminder without kind",
			text: "set reminder for Ravi Kumar in next 1 hour",
			want: SetReminder{Name: "Ravi Kumar", Hours: 1},
		},
		{
			name: "reminder html encoded",
			text: "set reminder for candidate &quot;Jane Doe&quot; in next 3 hours",
			want: SetReminder{Name: "Jane Doe", Hours: 3, PersonKind: store.PersonKindCandidate},
		},
		{
			name: "add meeting note",
			text: "add meeting note for John: call back tomorrow",
			want: AddMeetingNote{PersonName: "John", Content: "call back tomorrow"},
		},
		{
			name: "add meeting note with kind",
			text: "Add meeting note for CLIENT John: send invoice: net 30",
			want: AddMeetingNote{PersonName: "John", PersonKind: store.PersonKindClient, Content: "send invoice: net 30"},
		},
		{
			name: "mark meeting done",
			text: "mark meeting note for Priya Shah as done",
			want: MarkMeetingNoteDone{PersonName: "Priya Shah"},
		},
		{
			name: "mark meeting done with kind",
			text: "mark meeting for candidate Priya done",
			want: MarkMeetingNoteDone{PersonName: "Priya", PersonKind: store.PersonKindCandidate},
		},
		{
			name: "confirm reminder",
			text: "yes reminder",
			want: ConfirmPendingReminder{},
		},
		{
			name: "confirm reminder verbose",
			text: "Confirm the reminder please",
			want: ConfirmPendingReminder{},
		},
		{
			name: "mark candidate pending",
			text: "mark candidate: Arjun Mehta as pending",
			want: MarkCandidatePending{Name: "Arjun Mehta"},
		},
		{
			name: "finance",
			text: "finance",
			want: FinanceQuery{},
		},
		{
			name: "revenue",
			text: "how much revenue this month?",
			want: FinanceQuery{},
		},
		{
			name: "my meeting tasks today",
			text: "show my meeting tasks for today",
			want: MeetingTaskQuery{Mine: true, Today: true},
		},
		{
			name: "meeting tasks assigned to me pending",
			text: "meeting tasks assigned to me that are pending",
			want: MeetingTaskQuery{Mine: true, Pending: true},
		},
		{
			name: "meeting notes for someone",
			text: "list meeting notes for Alice completed",
			want: MeetingTaskQuery{UserName: "Alice", Completed: true},
		},
		{
			name: "generic task query",
			text: "what tasks are assigned to Priya today or pending",
			want: GenericTaskQuery{UserName: "Priya", DateFilter: DateFilterToday},
		},
		{
			name: "generic task query completed",
			text: "completed tasks by Priya",
			want: GenericTaskQuery{UserName: "Priya", DateFilter: DateFilterCompleted},
		},
		{
			name: "assign task",
			text: `assign task "Collect documents" to Priya`,
			want: AssignTask{Description: "Collect documents", UserName: "Priya"},
		},
		{
			name: "assign task with for in description",
			text: `assign task "call for feedback" to Priya.`,
			want: AssignTask{Description: "call for feedback", UserName: "Priya"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractor.Extract(tc.text)
			if !ok {
				t.Fatalf("expected intent for %q", tc.text)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("unexpected intent for %q: got %#v want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractorNoMatch(t *testing.T) {
	extractor := NewExtractor()
	for _, text := range []string{
		"",
		"   ",
		"how many candidates joined last week?",
		"set reminder for Jane",
		"set reminder for Jane in next 0 hours",
		"mark meeting done",
		"show tasks",
		"assign task to Priya",
	} {
		if got, ok := extractor.Extract(text); ok {
			t.Fatalf("expected no intent for %q, got %#v", text, got)
		}
	}
}

func TestSetReminderFallsThroughToLaterRules(t *testing.T) {
	got, ok := NewExtractor().Extract("yes, set the reminder")
	if !ok {
		t.Fatal("expected confirm intent")
	}
	if got.Kind() != KindConfirmPendingReminder {
		t.Fatalf("expected confirm intent, got %s", got.Kind())
	}
}

func TestRuleOrder(t *testing.T) {
	want := []Kind{
		KindSetReminder,
		KindAddMeetingNote,
		KindMarkMeetingNoteDone,
		KindConfirmPendingReminder,
		KindMarkCandidatePending,
		KindFinanceQuery,
		KindMeetingTaskQuery,
		KindGenericTaskQuery,
		KindAssignTask,
	}
	if got := NewExtractor().Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected rule order: %v", got)
	}
}

func TestCustomRulesShortCircuit(t *testing.T) {
	calls := 0
	extractor := NewExtractor(
		Rule{Kind: KindFinanceQuery, Extract: func(textfmt.Normalized) (Intent, bool) { calls++; return FinanceQuery{}, true }},
		Rule{Kind: KindAssignTask, Extract: func(textfmt.Normalized) (Intent, bool) { calls++; return AssignTask{}, true }},
	)
	got, ok := extractor.Extract("anything")
	if !ok || got.Kind() != KindFinanceQuery {
		t.Fatalf("expected first rule to win, got %#v", got)
	}
	if calls != 1 {
		t.Fatalf("expected later rules to be skipped, got %d calls", calls)
	}
}
