package editor

import "slices"

// Move returns a new sequence with the element identified by fromID removed
// from its old place and reinserted immediately before the element identified
// by toID. The input slice is never modified.
//
// The second result is false, and items is returned as-is, when fromID equals
// toID, when either id is absent, or when the move leaves the order unchanged
// (for example dropping an element onto its own successor).
//
// Dropping onto the last element inserts before it; appending needs MoveToEnd.
func Move[T any](items []T, id func(T) string, fromID, toID string) ([]T, bool) {
	if fromID == toID {
		return items, false
	}
	from := indexOf(items, id, fromID)
	if from < 0 || indexOf(items, id, toID) < 0 {
		return items, false
	}

	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	to := indexOf(out, id, toID)
	out = slices.Insert(out, to, items[from])

	if sameOrder(items, out, id) {
		return items, false
	}
	return out, true
}

// MoveToEnd returns a new sequence with the element identified by fromID moved
// after the current last element. This is the end-of-list drop target.
func MoveToEnd[T any](items []T, id func(T) string, fromID string) ([]T, bool) {
	from := indexOf(items, id, fromID)
	if from < 0 || from == len(items)-1 {
		return items, false
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out, items[from])
	return out, true
}

// Restamp sets every element's position to its index.
func Restamp[T any](items []T, set func(T, int)) {
	for i, item := range items {
		set(item, i)
	}
}

func indexOf[T any](items []T, id func(T) string, want string) int {
	for i, item := range items {
		if id(item) == want {
			return i
		}
	}
	return -1
}

func sameOrder[T any](a, b []T, id func(T) string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if id(a[i]) != id(b[i]) {
			return false
		}
	}
	return true
}
