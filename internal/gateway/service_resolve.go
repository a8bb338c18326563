package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwizi/recruit-desk/internal/resolver"
	"github.com/dwizi/recruit-desk/internal/store"
	"github.com/dwizi/recruit-desk/internal/textfmt"
)

// resolvePerson returns the single record a name refers to, or the reply
// that explains why it could not pick one.
func (s *Service) resolvePerson(ctx context.Context, name string, kinds ...store.PersonKind) (store.Person, string, bool) {
	name = textfmt.TrimQuotes(strings.TrimSpace(name))
	resolution, err := s.resolver.Resolve(ctx, name, kinds...)
	if err != nil {
		return store.Person{}, s.failure(fmt.Sprintf("look up %q", name), err), false
	}
	if resolution.Outcome != resolver.Single {
		s.logger.Info("person not resolved", "name", name, "outcome", string(resolution.Outcome), "error", resolution.Err())
	}
	switch resolution.Outcome {
	case resolver.Single:
		return resolution.Person, "", true
	case resolver.NotFound:
		return store.Person{}, fmt.Sprintf("No %s found matching %q.", kindWords(kinds), name), false
	case resolver.AmbiguousAcrossKinds:
		labels := make([]string, 0, len(resolution.Kinds))
		for _, kind := range resolution.Kinds {
			labels = append(labels, kind.Label())
		}
		return store.Person{}, fmt.Sprintf(
			"%q matches more than one record type. Please specify %s in your message, for example %q.",
			name,
			strings.Join(labels, " or "),
			strings.ToLower(labels[0])+" "+name,
		), false
	default:
		lines := []string{fmt.Sprintf("Found %d %ss matching %q:", len(resolution.Matches), resolution.Kinds[0], name)}
		for i, match := range resolution.Matches {
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, match.Name, contactOf(match)))
		}
		lines = append(lines, "Please use a more specific name.")
		return store.Person{}, strings.Join(lines, "\n"), false
	}
}

func kindWords(kinds []store.PersonKind) string {
	if len(kinds) == 0 {
		kinds = store.PersonKinds
	}
	words := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		words = append(words, string(kind))
	}
	return strings.Join(words, " or ")
}

func kindsFor(kind store.PersonKind) []store.PersonKind {
	if kind == "" {
		return nil
	}
	return []store.PersonKind{kind}
}

func contactOf(person store.Person) string {
	if contact := strings.TrimSpace(person.Contact); contact != "" {
		return contact
	}
	return "no contact on file"
}
