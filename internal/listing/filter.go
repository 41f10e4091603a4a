package listing

import (
	"fmt"
	"slices"
	"time"
)

// Scope selects whose records a view covers.
type Scope string

const (
	ScopeSelf   Scope = "self"
	ScopeSchool Scope = "school"
)

// AllCourses is the course filter sentinel that keeps every record.
const AllCourses = "all"

// ParseScope accepts "self", "school" and the empty string (self).
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "", ScopeSelf:
		return ScopeSelf, nil
	case ScopeSchool, "all":
		return ScopeSchool, nil
	default:
		return "", fmt.Errorf("unknown scope %q", raw)
	}
}

// Owned is implemented by records that belong to a user.
type Owned interface {
	Owner() string
}

// Coursed is implemented by records tied to a subject.
type Coursed interface {
	Course() string
}

// Topical is implemented by records tagged with topics.
type Topical interface {
	TopicList() []string
}

// Timed is implemented by time-stamped records.
type Timed interface {
	Timestamp() time.Time
}

// Filter returns the items for which keep is true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByScope keeps the owner's records for ScopeSelf and everything otherwise.
func FilterByScope[T Owned](items []T, scope Scope, ownerID string) []T {
	if scope != ScopeSelf {
		return slices.Clone(items)
	}
	return Filter(items, func(item T) bool { return item.Owner() == ownerID })
}

// FilterByCourse keeps records of one subject, or everything for AllCourses.
func FilterByCourse[T Coursed](items []T, course string) []T {
	if course == AllCourses || course == "" {
		return slices.Clone(items)
	}
	return Filter(items, func(item T) bool { return item.Course() == course })
}

// FilterByTopic keeps records tagged with topic, or everything for "all".
func FilterByTopic[T Topical](items []T, topic string) []T {
	if topic == AllCourses || topic == "" {
		return slices.Clone(items)
	}
	return Filter(items, func(item T) bool { return slices.Contains(item.TopicList(), topic) })
}

// Since keeps records stamped at or after cutoff. Records without a timestamp are dropped.
func Since[T Timed](items []T, cutoff time.Time) []T {
	return Filter(items, func(item T) bool {
		ts := item.Timestamp()
		return !ts.IsZero() && !ts.Before(cutoff)
	})
}
