// Package resolver maps a typed name to exactly one contact id. All commands that accept a contact
// name go through Resolve; the interaction needed when a name matches several contacts is left to a
// Chooser supplied by the caller.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/pcrm/internal/metrics"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

var (
	// ErrNotFound means that no contact matches the name.
	ErrNotFound = errors.New("contact not found")

	// ErrCancelled means that the user declined to choose between several matches. Callers treat
	// it like ErrNotFound.
	ErrCancelled = errors.New("selection cancelled")

	// ErrInvalidSelection is returned by a Chooser for input that is neither a valid number nor
	// the cancel token. Interactive choosers handle it by asking again.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrEmptyName is returned for a name without any non-blank characters.
	ErrEmptyName = errors.New("name must not be empty")
)

// AmbiguousError is returned when a name matches several contacts and no Chooser is available to
// pick one.
type AmbiguousError struct {
	Name       string
	Candidates []model.Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d contacts match %q", len(e.Candidates), e.Name)
}

// Chooser picks one of several candidates. It returns the 0-based index of the chosen candidate,
// or ErrCancelled.
type Chooser interface {
	Choose(ctx context.Context, name string, candidates []model.Candidate) (int, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(ctx context.Context, name string, candidates []model.Candidate) (int, error)

func (f ChooserFunc) Choose(ctx context.Context, name string, candidates []model.Candidate) (int, error) {
	return f(ctx, name, candidates)
}

// Resolver looks up contacts by name. It only reads from the database.
type Resolver struct {
	db sqlx.QueryerContext
}

// New returns a resolver that queries the given handle, usually Store.DB.
func New(db sqlx.QueryerContext) *Resolver {
	return &Resolver{db: db}
}

// Find returns the contacts matching the name, ordered by name and then by id.
//
// A single word matches contacts whose first name or last name equals it. Several words match
// contacts whose first name equals the first word and whose last name equals the remaining words
// joined by single spaces. All comparisons ignore case, including non-ASCII letters, so the
// matching happens here rather than in SQL.
func (r *Resolver) Find(ctx context.Context, name string) ([]model.Candidate, error) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, ErrEmptyName
	}

	var all []model.Candidate
	if err := sqlx.SelectContext(ctx, r.db, &all, "SELECT id, first_name, last_name FROM contacts"); err != nil {
		return nil, store.Wrap("find contacts by name", err)
	}

	given := tokens[0]
	family := strings.Join(tokens[1:], " ")
	candidates := []model.Candidate{}
	for _, c := range all {
		last := deref(c.LastName)
		var match bool
		if len(tokens) == 1 {
			match = strings.EqualFold(c.FirstName, given) || strings.EqualFold(last, given)
		} else {
			match = strings.EqualFold(c.FirstName, given) && strings.EqualFold(last, family)
		}
		if match {
			candidates = append(candidates, c)
		}
	}
	sortCandidates(candidates)
	return candidates, nil
}

// sortCandidates orders by first name, last name and id. Names compare case-insensitively.
func sortCandidates(candidates []model.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if fa, fb := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); fa != fb {
			return fa < fb
		}
		if la, lb := strings.ToLower(deref(a.LastName)), strings.ToLower(deref(b.LastName)); la != lb {
			return la < lb
		}
		return a.Id < b.Id
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Resolve returns the id of the one contact the name stands for. With several matches the chooser
// decides; without a chooser an *AmbiguousError is returned.
func (r *Resolver) Resolve(ctx context.Context, name string, chooser Chooser) (int64, error) {
	id, outcome, err := r.resolve(ctx, name, chooser)
	metrics.Resolutions.WithLabelValues(outcome).Inc()
	return id, err
}

func (r *Resolver) resolve(ctx context.Context, name string, chooser Chooser) (int64, string, error) {
	candidates, err := r.Find(ctx, name)
	if errors.Is(err, ErrEmptyName) {
		return 0, "invalid", err
	}
	if err != nil {
		return 0, "error", err
	}

	switch len(candidates) {
	case 0:
		return 0, "not_found", ErrNotFound
	case 1:
		return candidates[0].Id, "resolved", nil
	}

	if chooser == nil {
		return 0, "ambiguous", &AmbiguousError{Name: strings.TrimSpace(name), Candidates: candidates}
	}
	index, err := chooser.Choose(ctx, strings.TrimSpace(name), candidates)
	var ambiguous *AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		return 0, "ambiguous", err
	case errors.Is(err, ErrCancelled):
		return 0, "cancelled", ErrCancelled
	case errors.Is(err, ErrInvalidSelection):
		return 0, "invalid", err
	case err != nil:
		return 0, "error", err
	}
	if index < 0 || index >= len(candidates) {
		return 0, "invalid", ErrInvalidSelection
	}
	return candidates[index].Id, "chosen", nil
}
