// Package runs implements piecewise-constant attribute runs over a half-open
// byte range [0, N) and a multi-run intersection iterator over several such
// runs at once.
//
// A ValueRuns[T] is the Go expression of the source's ValueRuns<T>: two
// parallel sequences, values and limits, where limits is strictly
// increasing and limits[len-1] is the total covered length.
package runs

import (
	"sort"

	"golang.org/x/exp/slices"
)

// ValueRuns is a piecewise-constant function [0, Limit()) -> T, stored as
// parallel value/limit slices. The zero value is an empty ValueRuns.
type ValueRuns[T any] struct {
	values []T
	limits []int
}

// New builds a ValueRuns with the given initial capacity hint.
func New[T any](capHint int) *ValueRuns[T] {
	return &ValueRuns[T]{
		values: make([]T, 0, capHint),
		limits: make([]int, 0, capHint),
	}
}

// Add appends a run ending at limit with the given value. limit must be
// strictly greater than the previous limit; violating this is a programmer
// error and is not checked in release builds, matching the source's
// documented precondition.
func (r *ValueRuns[T]) Add(limit int, value T) {
	r.values = slices.Grow(r.values, 1)
	r.limits = slices.Grow(r.limits, 1)
	r.values = append(r.values, value)
	r.limits = append(r.limits, limit)
}

// Len returns the number of runs.
func (r *ValueRuns[T]) Len() int { return len(r.limits) }

// Limit returns the total length covered, i.e. the last limit, or 0 if empty.
func (r *ValueRuns[T]) Limit() int {
	if len(r.limits) == 0 {
		return 0
	}
	return r.limits[len(r.limits)-1]
}

// RunLimit returns the limit of run i.
func (r *ValueRuns[T]) RunLimit(i int) int { return r.limits[i] }

// RunValue returns the value of run i.
func (r *ValueRuns[T]) RunValue(i int) T { return r.values[i] }

// Reset clears all runs, retaining the underlying storage.
func (r *ValueRuns[T]) Reset() {
	r.values = r.values[:0]
	r.limits = r.limits[:0]
}

// indexAfter returns the index of the first run whose limit is strictly
// greater than index, via binary search.
func (r *ValueRuns[T]) indexAfter(index int) int {
	return sort.Search(len(r.limits), func(i int) bool { return r.limits[i] > index })
}

// Get returns the value of the run covering index. Behavior is undefined
// (it panics) if index >= Limit().
func (r *ValueRuns[T]) Get(index int) T {
	return r.values[r.indexAfter(index)]
}

// GetSubset writes into out the runs covering [offset, offset+length),
// translating limits to be relative to offset. The final run's limit is
// clamped to length.
func (r *ValueRuns[T]) GetSubset(offset, length int, out *ValueRuns[T]) {
	out.Reset()
	if length <= 0 {
		return
	}
	end := offset + length
	i := r.indexAfter(offset)
	for ; i < len(r.limits); i++ {
		lim := r.limits[i]
		if lim >= end {
			out.Add(length, r.values[i])
			break
		}
		out.Add(lim-offset, r.values[i])
	}
}

// Iterate calls fn for every (limit, value) pair in order. fn returning
// false stops iteration early.
func (r *ValueRuns[T]) Iterate(fn func(limit int, value T) bool) {
	for i := range r.limits {
		if !fn(r.limits[i], r.values[i]) {
			return
		}
	}
}
