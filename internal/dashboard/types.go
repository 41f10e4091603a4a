package dashboard

import (
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/exam"
	"github.com/gokatarajesh/lgs-tracker/internal/listing"
	"github.com/gokatarajesh/lgs-tracker/internal/progress"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
	"github.com/gokatarajesh/lgs-tracker/internal/trend"
)

// ResultRow is a practice test with its derived scores.
type ResultRow struct {
	records.TestResult
	Net         float64      `json:"net"`
	SuccessRate int          `json:"success_rate"`
	Band        scoring.Band `json:"band"`
}

// Totals aggregates a set of practice tests.
type Totals struct {
	Tests       int          `json:"tests"`
	Correct     int          `json:"correct"`
	Wrong       int          `json:"wrong"`
	Empty       int          `json:"empty"`
	Net         float64      `json:"net"`
	SuccessRate int          `json:"success_rate"`
	Band        scoring.Band `json:"band"`
}

// GoalStatus is progress toward the caller's daily and weekly goals.
type GoalStatus struct {
	Daily  progress.Goal `json:"daily"`
	Weekly progress.Goal `json:"weekly"`
}

// Overview is the dashboard's landing view. Totals and trends follow the
// requested scope and course; counts, level, badges and goals always describe the caller.
type Overview struct {
	Scope       listing.Scope `json:"scope"`
	Course      string        `json:"course"`
	GeneratedAt time.Time     `json:"generated_at"`

	Totals          Totals                  `json:"totals"`
	LastNAverage    float64                 `json:"last_n_average"`
	Trend           trend.Comparison        `json:"trend"`
	Weekly          []trend.DayPoint        `json:"weekly"`
	SubjectAverages []trend.SubjectAverage  `json:"subject_averages"`
	Weakest         []trend.SubjectAverage  `json:"weakest"`
	Accuracy        []trend.SubjectAccuracy `json:"accuracy"`

	Counts    trend.Counts        `json:"counts"`
	Progress  progress.Snapshot   `json:"progress"`
	NewBadges []progress.BadgeKey `json:"new_badges"`
	Goals     GoalStatus          `json:"goals"`
}

// ListQuery selects and arranges practice tests.
type ListQuery struct {
	Scope  listing.Scope
	Course string
	Topic  string
	View   listing.View
	// Toggle applies a header click on top of View.Sort.
	Toggle string
}

// ExamView is a stored exam with its scores.
type ExamView struct {
	records.ExamResult
	TotalNet  float64              `json:"total_net"`
	Composite exam.Composite       `json:"composite"`
	Breakdown []exam.SubjectResult `json:"breakdown"`
}

// Exam periods.
const (
	PeriodWeek  = "7"
	PeriodMonth = "30"
	PeriodAll   = "all"
)

// ExamQuery selects and orders exams.
type ExamQuery struct {
	Period    string
	Sort      string
	Direction listing.Direction
}

// ExamOverview is the exams page: a summary of the period and its exams.
type ExamOverview struct {
	Period  string            `json:"period"`
	Summary trend.ExamSummary `json:"summary"`
	Exams   []ExamView        `json:"exams"`
}

// MistakeQuery filters the mistake notebook. Empty fields match everything.
type MistakeQuery struct {
	Course string
	Topic  string
	Status records.MistakeStatus
}

// StatusChange moves a mistake to a new review state.
type StatusChange struct {
	Status       records.MistakeStatus
	NextReviewAt *time.Time
}
