package trend

import (
	"fmt"
	"slices"

	"github.com/gokatarajesh/lgs-tracker/internal/exam"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

// ExamSummary aggregates a user's mock exams.
type ExamSummary struct {
	TotalExams  int        `json:"total_exams"`
	AvgNet      float64    `json:"avg_net"`
	BestNet     float64    `json:"best_net"`
	Improvement Comparison `json:"improvement"`
}

// SummarizeExams computes count, mean and best total net, and the change of
// the newest `window` exams against the `window` before them. The change is
// left at zero until a full baseline window exists.
func SummarizeExams(exams []records.ExamResult, scorer *exam.Scorer, window int) (ExamSummary, error) {
	if len(exams) == 0 {
		return ExamSummary{}, nil
	}

	samples, err := ExamSeries(exams, scorer)
	if err != nil {
		return ExamSummary{}, err
	}

	var (
		sum  float64
		best = samples[0].Net
	)
	for _, s := range samples {
		sum += s.Net
		best = max(best, s.Net)
	}

	summary := ExamSummary{
		TotalExams: len(samples),
		AvgNet:     sum / float64(len(samples)),
		BestNet:    best,
	}
	summary.Improvement = FullWindowComparison(samples, NewestFirst, window)
	return summary, nil
}

// ExamSeries returns total-net samples ordered newest first. Exams without a
// timestamp sort last.
func ExamSeries(exams []records.ExamResult, scorer *exam.Scorer) ([]Sample, error) {
	sorted := slices.Clone(exams)
	slices.SortStableFunc(sorted, func(a, b records.ExamResult) int {
		switch {
		case a.CreatedAt.IsZero() && b.CreatedAt.IsZero():
			return 0
		case a.CreatedAt.IsZero():
			return 1
		case b.CreatedAt.IsZero():
			return -1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	out := make([]Sample, 0, len(sorted))
	for _, e := range sorted {
		net, err := scorer.TotalNet(e.Subjects)
		if err != nil {
			return nil, fmt.Errorf("exam %s: %w", e.ID, err)
		}
		out = append(out, Sample{At: e.CreatedAt, Net: net})
	}
	return out, nil
}
