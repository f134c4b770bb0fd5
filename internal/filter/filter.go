// Package filter implements the list pipelines behind the jobs and contacts
// views: text search, categorical and range filters, then a stable sort.
//
// Every function here is pure. Inputs are never mutated and the output is a
// fresh slice, so the same filter state applied to the same collection
// always yields the same result.
package filter

import (
	"slices"
	"strings"
)

// All is the categorical sentinel meaning "no filter".
const All = "all"

type Predicate[T any] func(T) bool

type Compare[T any] func(a, b T) int

// Apply keeps the items matching every predicate and orders them with cmp.
// Ties keep their input order.
func Apply[T any](items []T, preds []Predicate[T], cmp Compare[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchAll(it, preds) {
			out = append(out, it)
		}
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matchAll[T any](it T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(it) {
			return false
		}
	}
	return true
}

// ContainsFold reports whether term occurs, ignoring case, in any field.
// An empty term matches everything.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Active reports whether a categorical value actually filters.
func Active(want string) bool {
	return want != "" && want != All
}

func categorical[T any](want string, field func(T) string) Predicate[T] {
	return func(it T) bool {
		return field(it) == want
	}
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
