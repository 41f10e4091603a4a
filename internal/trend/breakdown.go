package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/curriculum"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

// DayPoint is one day of the weekly progress chart.
type DayPoint struct {
	Date     string  `json:"date"`
	Weekday  string  `json:"weekday"`
	Tests    int     `json:"tests"`
	Accuracy int     `json:"accuracy"`
	Net      float64 `json:"net"`
}

// SubjectAverage is the mean net of one subject's tests.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	AvgNet  float64 `json:"avg_net"`
	Tests   int     `json:"tests"`
}

// SubjectAccuracy is the mean success rate of one subject, scaled to FullMark.
type SubjectAccuracy struct {
	Subject  string `json:"subject"`
	Score    int    `json:"score"`
	FullMark int    `json:"full_mark"`
	Tests    int    `json:"tests"`
}

// WeeklyProgress buckets results into the seven calendar days ending on now's
// day, oldest first. Accuracy is the mean per-test success rate of the day.
func WeeklyProgress(results []records.TestResult, now time.Time, divisor float64) ([]DayPoint, error) {
	today := StartOfDay(now)
	loc := now.Location()

	points := make([]DayPoint, 7)
	rateSums := make([]int, 7)
	for i := range points {
		day := today.AddDate(0, 0, i-6)
		points[i] = DayPoint{Date: day.Format("2006-01-02"), Weekday: day.Weekday().String()}
	}

	for _, r := range results {
		if r.CreatedAt.IsZero() {
			continue
		}
		idx := dayIndex(today, r.CreatedAt.In(loc))
		if idx < 0 {
			continue
		}
		net, err := r.Score.Net(divisor)
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		rate, err := r.Score.SuccessRate()
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		points[idx].Tests++
		points[idx].Net += net
		rateSums[idx] += rate
	}

	for i := range points {
		if points[i].Tests > 0 {
			points[i].Accuracy = int(math.Round(float64(rateSums[i]) / float64(points[i].Tests)))
		}
	}
	return points, nil
}

// dayIndex maps t onto the 7-day window ending at today; -1 when outside.
func dayIndex(today, t time.Time) int {
	day := StartOfDay(t)
	for i := 0; i < 7; i++ {
		if day.Equal(today.AddDate(0, 0, i-6)) {
			return i
		}
	}
	return -1
}

// SubjectAverages returns the mean net per subject, weakest first. Ties are
// broken by subject name so the output is deterministic.
func SubjectAverages(results []records.TestResult, divisor float64) ([]SubjectAverage, error) {
	sums := map[string]*SubjectAverage{}
	for _, r := range results {
		net, err := r.Score.Net(divisor)
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		agg, ok := sums[r.Subject]
		if !ok {
			agg = &SubjectAverage{Subject: r.Subject}
			sums[r.Subject] = agg
		}
		agg.AvgNet += net
		agg.Tests++
	}

	out := make([]SubjectAverage, 0, len(sums))
	for _, agg := range sums {
		agg.AvgNet /= float64(agg.Tests)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgNet != out[j].AvgNet {
			return out[i].AvgNet < out[j].AvgNet
		}
		return out[i].Subject < out[j].Subject
	})
	return out, nil
}

// Weakest returns up to n subjects with the lowest average net.
func Weakest(averages []SubjectAverage, n int) []SubjectAverage {
	if n < 0 {
		n = 0
	}
	return averages[:min(n, len(averages))]
}

// SubjectAccuracies returns the mean success rate of every catalog subject in
// curriculum order; subjects without tests score 0.
func SubjectAccuracies(results []records.TestResult, catalog *curriculum.Catalog) ([]SubjectAccuracy, error) {
	type acc struct{ sum, n int }
	bySubject := map[string]*acc{}
	for _, r := range results {
		rate, err := r.Score.SuccessRate()
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		a, ok := bySubject[r.Subject]
		if !ok {
			a = &acc{}
			bySubject[r.Subject] = a
		}
		a.sum += rate
		a.n++
	}

	subjects := catalog.Names()
	out := make([]SubjectAccuracy, 0, len(subjects))
	for _, name := range subjects {
		point := SubjectAccuracy{Subject: name, FullMark: 100}
		if a, ok := bySubject[name]; ok {
			point.Score = int(math.Round(float64(a.sum) / float64(a.n)))
			point.Tests = a.n
		}
		out = append(out, point)
	}
	return out, nil
}
