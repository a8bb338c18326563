package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dwizi/recruit-desk/internal/deskerr"
	"github.com/dwizi/recruit-desk/internal/store"
)

type Outcome string

const (
	NotFound             Outcome = "not_found"
	Single               Outcome = "single"
	AmbiguousWithinKind  Outcome = "ambiguous_within_kind"
	AmbiguousAcrossKinds Outcome = "ambiguous_across_kinds"
)

type Store interface {
	SearchPeople(ctx context.Context, kind store.PersonKind, fragment string, limit int) ([]store.Person, error)
}

// Resolution is the classified result of a name lookup. Person is set for
// Single, Matches for AmbiguousWithinKind, Kinds for AmbiguousAcrossKinds.
type Resolution struct {
	Outcome Outcome
	Person  store.Person
	Matches []store.Person
	Kinds   []store.PersonKind
}

// Err is nil for Single and otherwise wraps ErrNotFound or ErrAmbiguous.
func (r Resolution) Err() error {
	switch r.Outcome {
	case Single:
		return nil
	case NotFound:
		return deskerr.ErrNotFound
	case AmbiguousWithinKind:
		return fmt.Errorf("%w: %d matches", deskerr.ErrAmbiguous, len(r.Matches))
	default:
		return fmt.Errorf("%w: found in %d kinds", deskerr.ErrAmbiguous, len(r.Kinds))
	}
}

type Resolver struct {
	store Store
	limit int
}

func New(store Store) *Resolver {
	return &Resolver{store: store, limit: 25}
}

// Resolve searches every requested kind concurrently and classifies the
// combined result. An empty kinds list means all person kinds.
func (r *Resolver) Resolve(ctx context.Context, fragment string, kinds ...store.PersonKind) (Resolution, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return Resolution{Outcome: NotFound}, nil
	}
	if len(kinds) == 0 {
		kinds = store.PersonKinds
	}
	kinds = dedupeKinds(kinds)

	results := make([][]store.Person, len(kinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		group.Go(func() error {
			matches, err := r.store.SearchPeople(groupCtx, kind, fragment, r.limit)
			if err != nil {
				return fmt.Errorf("search %s: %w", kind, err)
			}
			results[i] = matches
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Resolution{}, err
	}

	byKind := map[store.PersonKind][]store.Person{}
	for i, kind := range kinds {
		if len(results[i]) > 0 {
			byKind[kind] = results[i]
		}
	}
	return Classify(byKind), nil
}

// Classify applies the resolution priority: nothing anywhere, then several
// kinds, then one row, then several rows of one kind.
func Classify(byKind map[store.PersonKind][]store.Person) Resolution {
	found := make([]store.PersonKind, 0, len(byKind))
	for kind, matches := range byKind {
		if len(matches) > 0 {
			found = append(found, kind)
		}
	}
	sort.Slice(found, func(i, j int) bool { return kindOrder(found[i]) < kindOrder(found[j]) })

	switch {
	case len(found) == 0:
		return Resolution{Outcome: NotFound}
	case len(found) > 1:
		return Resolution{Outcome: AmbiguousAcrossKinds, Kinds: found}
	}
	matches := byKind[found[0]]
	if len(matches) == 1 {
		return Resolution{Outcome: Single, Person: matches[0]}
	}
	return Resolution{Outcome: AmbiguousWithinKind, Matches: matches, Kinds: found}
}

func dedupeKinds(kinds []store.PersonKind) []store.PersonKind {
	seen := map[store.PersonKind]struct{}{}
	result := make([]store.PersonKind, 0, len(kinds))
	for _, kind := range kinds {
		if _, ok := seen[kind]; ok {
			continue
		}
		seen[kind] = struct{}{}
		result = append(result, kind)
	}
	return result
}

func kindOrder(kind store.PersonKind) int {
	for i, known := range store.PersonKinds {
		if known == kind {
			return i
		}
	}
	return len(store.PersonKinds)
}
