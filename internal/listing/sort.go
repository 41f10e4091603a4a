package listing

import (
	"cmp"
	"fmt"
	"slices"
)

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection accepts the long names and asc/desc.
func ParseDirection(raw string) (Direction, error) {
	switch raw {
	case "", "asc", string(Ascending):
		return Ascending, nil
	case "desc", string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", raw)
	}
}

// Key names a sortable field of T.
type Key[T any] struct {
	Name    string
	Compare func(a, b T) int
}

// By builds a Key from a field accessor.
func By[T any, V cmp.Ordered](name string, get func(T) V) Key[T] {
	return Key[T]{
		Name:    name,
		Compare: func(a, b T) int { return cmp.Compare(get(a), get(b)) },
	}
}

// SortBy returns a stably sorted copy. Ties keep their input order in both directions.
func SortBy[T any](items []T, key Key[T], dir Direction) []T {
	out := slices.Clone(items)
	if key.Compare == nil {
		return out
	}
	compare := key.Compare
	if dir == Descending {
		compare = func(a, b T) int { return key.Compare(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// SortState is the table's current sort selection. The zero value means unsorted.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Request applies a click on a column header: the same key flips the
// direction, a new key starts ascending.
func (s SortState) Request(key string) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// Apply sorts items by the selected key when it is registered in keys.
func Apply[T any](items []T, state SortState, keys map[string]Key[T]) ([]T, error) {
	if state.Key == "" {
		return slices.Clone(items), nil
	}
	key, ok := keys[state.Key]
	if !ok {
		return nil, fmt.Errorf("unknown sort key %q", state.Key)
	}
	dir := state.Direction
	if dir == "" {
		dir = Ascending
	}
	return SortBy(items, key, dir), nil
}
