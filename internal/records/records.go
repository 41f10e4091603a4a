package records

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

// TestResult is a single-subject practice test logged by a user.
type TestResult struct {
	ID        string               `json:"id"`
	OwnerID   string               `json:"user_id"`
	Subject   string               `json:"course_name"`
	Score     scoring.SubjectScore `json:"score"`
	Topics    []string             `json:"topics"`
	CreatedAt time.Time            `json:"created_at"`
}

// Owner implements listing.Owned.
func (r TestResult) Owner() string { return r.OwnerID }

// Course implements listing.Coursed.
func (r TestResult) Course() string { return r.Subject }

// TopicList implements listing.Topical.
func (r TestResult) TopicList() []string { return r.Topics }

// Timestamp implements listing.Timed.
func (r TestResult) Timestamp() time.Time { return r.CreatedAt }

// Validate checks the invariants every stored result must satisfy.
func (r TestResult) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fieldError("user_id", "required")
	}
	if strings.TrimSpace(r.Subject) == "" {
		return fieldError("course_name", "required")
	}
	if err := r.Score.Validate(); err != nil {
		return fmt.Errorf("score: %w", err)
	}
	return nil
}

// WithScore returns a copy carrying the edited score and topics.
func (r TestResult) WithScore(score scoring.SubjectScore, topics []string) (TestResult, error) {
	if err := score.Validate(); err != nil {
		return TestResult{}, fmt.Errorf("score: %w", err)
	}
	out := r
	out.Score = score
	out.Topics = normalizeTopics(topics)
	return out, nil
}

// ExamResult is an atomic mock exam attempt across all catalog subjects.
type ExamResult struct {
	ID        string                          `json:"id"`
	OwnerID   string                          `json:"user_id"`
	Name      string                          `json:"exam_name,omitempty"`
	Publisher string                          `json:"publisher,omitempty"`
	CreatedAt time.Time                       `json:"created_at"`
	Subjects  map[string]scoring.SubjectScore `json:"subjects"`
}

// Owner implements listing.Owned.
func (e ExamResult) Owner() string { return e.OwnerID }

// Timestamp implements listing.Timed.
func (e ExamResult) Timestamp() time.Time { return e.CreatedAt }

// Validate checks ownership and that every catalog subject is present with valid counts.
func (e ExamResult) Validate(catalog *curriculum.Catalog) error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return fieldError("user_id", "required")
	}
	for _, name := range catalog.Names() {
		score, ok := e.Subjects[name]
		if !ok {
			return fieldError("subjects", fmt.Sprintf("missing subject %q", name))
		}
		if err := score.Validate(); err != nil {
			return fmt.Errorf("subject %q: %w", name, err)
		}
	}
	return nil
}

// MistakeStatus tracks the review state of a mistake notebook entry.
type MistakeStatus string

const (
	MistakeOpen     MistakeStatus = "open"
	MistakeReviewed MistakeStatus = "reviewed"
	MistakeArchived MistakeStatus = "archived"
)

// ParseMistakeStatus validates a status string.
func ParseMistakeStatus(raw string) (MistakeStatus, error) {
	switch s := MistakeStatus(raw); s {
	case MistakeOpen, MistakeReviewed, MistakeArchived:
		return s, nil
	default:
		return "", fieldError("status", fmt.Sprintf("unknown status %q", raw))
	}
}

// MistakeEntry is a note about a question the user got wrong.
type MistakeEntry struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"user_id"`
	TestResultID string        `json:"test_result_id,omitempty"`
	Subject      string        `json:"course_name"`
	Topics       []string      `json:"topics"`
	Note         string        `json:"note,omitempty"`
	ImageURL     string        `json:"image_url,omitempty"`
	Status       MistakeStatus `json:"status"`
	NextReviewAt *time.Time    `json:"next_review_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Owner implements listing.Owned.
func (m MistakeEntry) Owner() string { return m.OwnerID }

// Course implements listing.Coursed.
func (m MistakeEntry) Course() string { return m.Subject }

// TopicList implements listing.Topical.
func (m MistakeEntry) TopicList() []string { return m.Topics }

// Goals are a user's daily and weekly test targets.
type Goals struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

// DefaultGoals matches the targets new users start with.
func DefaultGoals() Goals {
	return Goals{Daily: 1, Weekly: 3}
}

// Validate requires positive targets.
func (g Goals) Validate() error {
	if g.Daily <= 0 {
		return fieldError("daily", "must be positive")
	}
	if g.Weekly <= 0 {
		return fieldError("weekly", "must be positive")
	}
	return nil
}

func normalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
