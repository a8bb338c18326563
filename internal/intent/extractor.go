package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

// Rule pairs a cheap keyword predicate with a capture step. A rule whose
// predicate holds but whose capture fails does not stop later rules.
type Rule struct {
	Kind    Kind
	Match   func(textfmt.Normalized) bool
	Extract func(textfmt.Normalized) (Intent, bool)
}

// Extractor tries rules top to bottom and returns the first success.
type Extractor struct {
	rules []Rule
}

func NewExtractor(rules ...Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

func (e *Extractor) Extract(text string) (Intent, bool) {
	normalized := textfmt.Normalize(text)
	if normalized.Lower == "" {
		return nil, false
	}
	for _, rule := range e.rules {
		if rule.Match != nil && !rule.Match(normalized) {
			continue
		}
		if parsed, ok := rule.Extract(normalized); ok {
			return parsed, true
		}
	}
	return nil, false
}

// Kinds lists the rule order, for diagnostics and tests.
func (e *Extractor) Kinds() []Kind {
	kinds := make([]Kind, 0, len(e.rules))
	for _, rule := range e.rules {
		kinds = append(kinds, rule.Kind)
	}
	return kinds
}

// DefaultRules is the priority-ordered dispatch table. Meeting task queries
// must stay ahead of the generic task query.
func DefaultRules() []Rule {
	return []Rule{
		{
			Kind:    KindSetReminder,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("set", "reminder") },
			Extract: extractSetReminder,
		},
		{
			Kind:    KindAddMeetingNote,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("add", "meeting", "note") },
			Extract: extractAddMeetingNote,
		},
		{
			Kind:    KindMarkMeetingNoteDone,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("mark", "meeting", "done") },
			Extract: extractMarkMeetingNoteDone,
		},
		{
			Kind: KindConfirmPendingReminder,
			Match: func(n textfmt.Normalized) bool {
				return n.ContainsAny("yes", "confirm") && n.Contains("reminder")
			},
			Extract: func(textfmt.Normalized) (Intent, bool) { return ConfirmPendingReminder{}, true },
		},
		{
			Kind:    KindMarkCandidatePending,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("mark", "candidate", "pending") },
			Extract: extractMarkCandidatePending,
		},
		{
			Kind:    KindFinanceQuery,
			Match:   func(n textfmt.Normalized) bool { return n.ContainsAny("finance", "money", "revenue", "income") },
			Extract: func(textfmt.Normalized) (Intent, bool) { return FinanceQuery{}, true },
		},
		{
			Kind: KindMeetingTaskQuery,
			Match: func(n textfmt.Normalized) bool {
				return n.Contains("meeting") && n.ContainsAny("task", "note")
			},
			Extract: extractMeetingTaskQuery,
		},
		{
			Kind:    KindGenericTaskQuery,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("task") },
			Extract: extractGenericTaskQuery,
		},
		{
			Kind:    KindAssignTask,
			Match:   func(n textfmt.Normalized) bool { return n.Contains("assign", "task") },
			Extract: extractAssignTask,
		},
	}
}

const hoursSuffix = `\s+in\s+(?:the\s+)?next\s+(\d+)\s*(?:hours?|hrs?|h)\b`

var (
	reminderCandidatePattern = regexp.MustCompile(`(?i)\breminder\s+for\s+(?:the\s+)?candidate\b\s*:?\s*(.+?)` + hoursSuffix)
	reminderClientPattern    = regexp.MustCompile(`(?i)\breminder\s+for\s+(?:the\s+)?client\b\s*:?\s*(.+?)` + hoursSuffix)
	reminderAnyPattern       = regexp.MustCompile(`(?i)\breminder\s+for\s+(.+?)` + hoursSuffix)

	addMeetingNotePattern   = regexp.MustCompile(`(?is)\badd\s+(?:a\s+)?(?:new\s+)?meeting\s+notes?\b\s*:?\s*(?:(?:for|to|about|with|on)\s+)?([^:]+?)\s*:\s*(.+)$`)
	markMeetingDonePattern  = regexp.MustCompile(`(?i)\bmark\s+(?:the\s+)?meeting(?:\s+notes?)?(?:\s+(?:for|with))?\b\s*:?\s*(.+?)\s+(?:as\s+)?done\b`)
	candidatePendingPattern = regexp.MustCompile(`(?i)\bcandidate\b\s*:?\s*(.+?)\s+as\s+pending\b`)
	assignTaskPattern       = regexp.MustCompile(`(?is)\bassign\s+(?:a\s+)?task\s*:?\s*["“'](.+?)["”']\s+to\s+(.+?)\s*[.!?]*$`)

	assigneePattern = regexp.MustCompile(`(?i)\b(?:for|by|assigned\s+to)\s+([\p{L}][\p{L}\p{N}.'’-]*(?:\s+[\p{L}][\p{L}\p{N}.'’-]*){0,2})`)
	quotedPattern   = regexp.MustCompile(`"[^"]*"|“[^”]*”`)
	myPattern       = regexp.MustCompile(`(?i)\bmy\b|\bassigned\s+to\s+me\b|\bfor\s+me\b`)
	kindPrefix      = regexp.MustCompile(`(?i)^(candidate|client)\b\s*:?\s*`)
)

func extractSetReminder(n textfmt.Normalized) (Intent, bool) {
	subpatterns := []struct {
		pattern *regexp.Regexp
		kind    store.PersonKind
	}{
		{pattern: reminderCandidatePattern, kind: store.PersonKindCandidate},
		{pattern: reminderClientPattern, kind: store.PersonKindClient},
		{pattern: reminderAnyPattern},
	}
	for _, sub := range subpatterns {
		match := sub.pattern.FindStringSubmatch(n.Original)
		if match == nil {
			continue
		}
		name := textfmt.TrimQuotes(match[1])
		hours, err := strconv.Atoi(match[2])
		if name == "" || err != nil || hours <= 0 {
			continue
		}
		return SetReminder{Name: name, Hours: hours, PersonKind: sub.kind}, true
	}
	return nil, false
}

func extractAddMeetingNote(n textfmt.Normalized) (Intent, bool) {
	match := addMeetingNotePattern.FindStringSubmatch(n.Original)
	if match == nil {
		return nil, false
	}
	kind, name := splitKindPrefix(match[1])
	content := strings.TrimSpace(match[2])
	if name == "" || content == "" {
		return nil, false
	}
	return AddMeetingNote{PersonName: name, PersonKind: kind, Content: content}, true
}

func extractMarkMeetingNoteDone(n textfmt.Normalized) (Intent, bool) {
	match := markMeetingDonePattern.FindStringSubmatch(n.Original)
	if match == nil {
		return nil, false
	}
	kind, name := splitKindPrefix(match[1])
	if !looksLikeName(name) {
		return nil, false
	}
	return MarkMeetingNoteDone{PersonName: name, PersonKind: kind}, true
}

func extractMarkCandidatePending(n textfmt.Normalized) (Intent, bool) {
	match := candidatePendingPattern.FindStringSubmatch(n.Original)
	if match == nil {
		return nil, false
	}
	name := textfmt.TrimQuotes(match[1])
	if !looksLikeName(name) {
		return nil, false
	}
	return MarkCandidatePending{Name: name}, true
}

func extractMeetingTaskQuery(n textfmt.Normalized) (Intent, bool) {
	query := MeetingTaskQuery{
		Mine:      myPattern.MatchString(n.Original),
		Today:     n.Contains("today"),
		Pending:   n.Contains("pending"),
		Completed: n.Contains("completed"),
	}
	if name := captureAssignee(n.Original); name != "" {
		query.UserName = name
		query.Mine = false
	}
	return query, true
}

func extractGenericTaskQuery(n textfmt.Normalized) (Intent, bool) {
	unquoted := quotedPattern.ReplaceAllString(n.Original, " ")
	name := captureAssignee(unquoted)
	if name == "" {
		return nil, false
	}
	filter := DateFilterNone
	switch {
	case n.Contains("today"):
		filter = DateFilterToday
	case n.Contains("pending"):
		filter = DateFilterPending
	case n.Contains("completed"):
		filter = DateFilterCompleted
	}
	return GenericTaskQuery{UserName: name, DateFilter: filter}, true
}

func extractAssignTask(n textfmt.Normalized) (Intent, bool) {
	match := assignTaskPattern.FindStringSubmatch(n.Original)
	if match == nil {
		return nil, false
	}
	description := strings.TrimSpace(match[1])
	name := textfmt.TrimQuotes(match[2])
	if description == "" || name == "" {
		return nil, false
	}
	return AssignTask{Description: description, UserName: name}, true
}

// assigneeStopWords end a captured name; a capture that starts with one is
// not a name at all.
var assigneeStopWords = map[string]struct{}{
	"me": {}, "my": {}, "myself": {}, "us": {}, "the": {}, "a": {}, "an": {}, "all": {},
	"everyone": {}, "today": {}, "pending": {}, "completed": {}, "tasks": {}, "task": {},
	"meeting": {}, "meetings": {}, "notes": {}, "note": {}, "this": {}, "that": {},
	"and": {}, "with": {}, "from": {}, "in": {}, "on": {}, "please": {}, "status": {},
}

func captureAssignee(text string) string {
	for _, match := range assigneePattern.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(match[1])
		kept := make([]string, 0, len(words))
		for _, word := range words {
			cleaned := strings.Trim(word, `.'’-`)
			if _, stop := assigneeStopWords[strings.ToLower(cleaned)]; stop {
				break
			}
			kept = append(kept, cleaned)
		}
		if len(kept) > 0 {
			return strings.Join(kept, " ")
		}
	}
	return ""
}

func splitKindPrefix(raw string) (store.PersonKind, string) {
	name := textfmt.TrimQuotes(raw)
	match := kindPrefix.FindStringSubmatch(name)
	if match == nil {
		return "", name
	}
	kind, _ := store.ParsePersonKind(match[1])
	return kind, textfmt.TrimQuotes(name[len(match[0]):])
}

func looksLikeName(name string) bool {
	if _, stop := assigneeStopWords[strings.ToLower(strings.TrimSpace(name))]; stop {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
