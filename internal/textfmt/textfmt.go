// Package textfmt normalizes inbound chat text and tidies outbound replies.
// Replies are plain newline-delimited text: no markdown emphasis, no HTML.
package textfmt

import (
	"html"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Normalized carries both forms of an inbound message: Lower for keyword
// predicates and Original (entity-decoded, casing kept) for captures.
type Normalized struct {
	Original string
	Lower    string
}

func Normalize(text string) Normalized {
	decoded := strings.TrimSpace(DecodeEntities(text))
	return Normalized{Original: decoded, Lower: strings.ToLower(decoded)}
}

// Contains reports whether every term appears in the lower-cased text.
func (n Normalized) Contains(terms ...string) bool {
	for _, term := range terms {
		if !strings.Contains(n.Lower, term) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one term appears.
func (n Normalized) ContainsAny(terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(n.Lower, term) {
			return true
		}
	}
	return false
}

// DecodeEntities resolves HTML entities, including double-encoded ones such
// as "&amp;quot;" that arrive from the web form.
func DecodeEntities(text string) string {
	decoded := text
	for i := 0; i < 3; i++ {
		next := html.UnescapeString(decoded)
		if next == decoded {
			break
		}
		decoded = next
	}
	return strings.ReplaceAll(decoded, "\u00a0", " ")
}

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	emphasisPattern = regexp.MustCompile(`(\*\*|__|\*|` + "`" + `)`)
	spacePattern    = regexp.MustCompile(`[ \t]+`)
)

// StripEntities decodes entities and removes tags and markdown emphasis.
func StripEntities(text string) string {
	cleaned := DecodeEntities(text)
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	cleaned = emphasisPattern.ReplaceAllString(cleaned, "")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func CapitalizeFirst(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(first)) + trimmed[size:]
}

// EnsureSentence capitalizes text and appends a period when it lacks
// terminal punctuation.
func EnsureSentence(text string) string {
	sentence := CapitalizeFirst(text)
	if sentence == "" {
		return ""
	}
	last, _ := utf8.DecodeLastRuneInString(sentence)
	switch last {
	case '.', '!', '?', ':':
		return sentence
	}
	return sentence + "."
}

// TrimQuotes removes one layer of straight or curly quotes around a capture.
func TrimQuotes(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimLeft(trimmed, `"'“‘`)
	trimmed = strings.TrimRight(trimmed, `"'”’`)
	return strings.TrimSpace(trimmed)
}

// Truncate shortens text to at most limit runes, adding an ellipsis.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// Clock renders instants in one fixed civil time zone.
type Clock struct {
	Location *time.Location
}

func NewClock(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return Clock{Location: location}
}

func (c Clock) In(t time.Time) time.Time {
	if c.Location == nil {
		return t.UTC()
	}
	return t.In(c.Location)
}

// DayBounds returns [start, end) of the civil day containing t.
func (c Clock) DayBounds(t time.Time) (time.Time, time.Time) {
	local := c.In(t)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}

func (c Clock) SameDay(a, b time.Time) bool {
	left := c.In(a)
	right := c.In(b)
	return left.Year() == right.Year() && left.YearDay() == right.YearDay()
}

// DateTime renders "Mon, Jan 2 2006 at 3:04 PM MST".
func (c Clock) DateTime(t time.Time) string {
	return c.In(t).Format("Mon, Jan 2 2006 at 3:04 PM MST")
}

func (c Clock) Date(t time.Time) string {
	return c.In(t).Format("Jan 2, 2006")
}

func (c Clock) Time(t time.Time) string {
	return c.In(t).Format("3:04 PM")
}
