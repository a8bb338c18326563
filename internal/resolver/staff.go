package resolver

import (
	"strings"

	"github.com/dwizi/recruit-desk/internal/store"
)

// MatchStaff finds the staff member a free-text name refers to. Exact
// case-insensitive equality on name or username wins; otherwise the first
// member whose first name appears in the query, or whose name or username
// contains the query, is returned.
func MatchStaff(staff []store.Staff, query string) (store.Staff, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return store.Staff{}, false
	}
	for _, member := range staff {
		if strings.ToLower(strings.TrimSpace(member.Name)) == needle || strings.ToLower(strings.TrimSpace(member.Username)) == needle {
			return member, true
		}
	}
	for _, member := range staff {
		name := strings.ToLower(strings.TrimSpace(member.Name))
		username := strings.ToLower(strings.TrimSpace(member.Username))
		if first := firstWord(name); first != "" && containsWord(needle, first) {
			return member, true
		}
		if (name != "" && strings.Contains(name, needle)) || (username != "" && strings.Contains(username, needle)) {
			return member, true
		}
	}
	return store.Staff{}, false
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func containsWord(text, word string) bool {
	for _, field := range strings.Fields(text) {
		if field == word {
			return true
		}
	}
	return false
}
