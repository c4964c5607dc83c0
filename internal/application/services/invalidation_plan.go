package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// ErrUndeclaredRelationship is returned when a mutation names a parent that is
// not declared for its entity
var ErrUndeclaredRelationship = errors.New("undeclared parent/child relationship")

// ParentRef identifies the parent record a mutation touches, captured before
// the upstream call
type ParentRef struct {
	Entity entities.Entity `json:"entity"`
	ID     string          `json:"id"`
}

// Mutation describes a state change for invalidation purposes
type Mutation struct {
	Entity    entities.Entity
	Action    entities.MutationAction
	Operation string
	RecordID  string
	Parents   []ParentRef
}

// Plan returns the minimal set of key roots a successful mutation invalidates.
// On an undeclared or incomplete parent the own-entity roots are still
// returned alongside the error.
func Plan(m Mutation) ([]keys.Key, error) {
	var roots []keys.Key
	var errs []error

	roots = append(roots, keys.Lists(m.Entity))

	if m.RecordID != "" {
		detail, err := keys.Detail(m.Entity, m.RecordID)
		if err != nil {
			errs = append(errs, err)
		} else {
			roots = append(roots, detail)
		}
		if keys.HasForEdit(m.Entity) {
			if forEdit, err := keys.ForEdit(m.Entity, m.RecordID); err == nil {
				roots = append(roots, forEdit)
			}
		}
	}

	for _, parent := range m.Parents {
		if !IsRelated(parent.Entity, m.Entity) {
			errs = append(errs, fmt.Errorf("%w: %s under %s", ErrUndeclaredRelationship, m.Entity, parent.Entity))
			continue
		}
		aggregate, err := parentAggregate(parent)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		byParent, err := keys.ByParent(m.Entity, parent.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		roots = append(roots, aggregate, byParent)
	}

	return Minimize(roots), errors.Join(errs...)
}

// PlanAll merges the plans of several mutations applied together
func PlanAll(ms ...Mutation) ([]keys.Key, error) {
	var roots []keys.Key
	var errs []error
	for _, m := range ms {
		r, err := Plan(m)
		roots = append(roots, r...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return Minimize(roots), errors.Join(errs...)
}

// parentAggregate is the parent's editing aggregate when it has one and its
// detail otherwise
func parentAggregate(parent ParentRef) (keys.Key, error) {
	if keys.HasForEdit(parent.Entity) {
		return keys.ForEdit(parent.Entity, parent.ID)
	}
	return keys.Detail(parent.Entity, parent.ID)
}

// Minimize drops duplicate roots and roots already covered by a shorter
// root. Remaining roots keep their first-seen order.
func Minimize(roots []keys.Key) []keys.Key {
	order := make([]int, len(roots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return len(roots[order[a]]) < len(roots[order[b]]) })

	keep := make([]bool, len(roots))
	var kept []keys.Key
	for _, i := range order {
		covered := false
		for _, k := range kept {
			if roots[i].HasPrefix(k) {
				covered = true
				break
			}
		}
		if !covered {
			keep[i] = true
			kept = append(kept, roots[i])
		}
	}

	out := make([]keys.Key, 0, len(kept))
	for i, ok := range keep {
		if ok {
			out = append(out, roots[i])
		}
	}
	return out
}
