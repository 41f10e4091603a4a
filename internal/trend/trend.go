package trend

import (
	"fmt"
	"time"

	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

// Order tells the aggregator how an input sequence is sorted by time.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// Week is the rolling window used for weekly counts and the streak badge.
const Week = 7 * 24 * time.Hour

// Sample is one time-stamped net score.
type Sample struct {
	At  time.Time `json:"at"`
	Net float64   `json:"net"`
}

// Counts holds activity in the current calendar day and the rolling week.
type Counts struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

// Comparison contrasts the most recent window with the window right before it.
type Comparison struct {
	RecentAvg     float64 `json:"recent_avg"`
	PreviousAvg   float64 `json:"previous_avg"`
	DeltaPercent  float64 `json:"delta_percent"`
	RecentCount   int     `json:"recent_count"`
	PreviousCount int     `json:"previous_count"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DailyWeeklyCounts counts the owner's results since the start of now's day
// and since now minus seven days. Results without a timestamp are ignored.
func DailyWeeklyCounts(results []records.TestResult, ownerID string, now time.Time) Counts {
	dayStart := StartOfDay(now)
	weekStart := now.Add(-Week)

	var c Counts
	for _, r := range results {
		if r.OwnerID != ownerID || r.CreatedAt.IsZero() {
			continue
		}
		if !r.CreatedAt.Before(dayStart) {
			c.Daily++
		}
		if !r.CreatedAt.Before(weekStart) {
			c.Weekly++
		}
	}
	return c
}

// StreakWeeklyCount is the weekly activity count that drives the streak badge.
func StreakWeeklyCount(results []records.TestResult, ownerID string, now time.Time) int {
	return DailyWeeklyCounts(results, ownerID, now).Weekly
}

// NetSeries converts results into samples using the given penalty divisor,
// keeping the input order.
func NetSeries(results []records.TestResult, divisor float64) ([]Sample, error) {
	out := make([]Sample, 0, len(results))
	for _, r := range results {
		net, err := r.Score.Net(divisor)
		if err != nil {
			return nil, fmt.Errorf("result %s: %w", r.ID, err)
		}
		out = append(out, Sample{At: r.CreatedAt, Net: net})
	}
	return out, nil
}

// AverageOfLastN averages the nets of the n most recent samples. Empty input yields 0.
func AverageOfLastN(samples []Sample, order Order, n int) float64 {
	return mean(newest(samples, order, 0, n))
}

// RecentVsPrevious compares the newest window of samples with the window
// immediately before it. DeltaPercent is 0 when the previous average is 0.
func RecentVsPrevious(samples []Sample, order Order, window int) Comparison {
	recent := newest(samples, order, 0, window)
	previous := newest(samples, order, window, window)

	c := Comparison{
		RecentAvg:     mean(recent),
		PreviousAvg:   mean(previous),
		RecentCount:   len(recent),
		PreviousCount: len(previous),
	}
	if c.PreviousAvg != 0 {
		c.DeltaPercent = (c.RecentAvg - c.PreviousAvg) / c.PreviousAvg * 100
	}
	return c
}

// FullWindowComparison is RecentVsPrevious reported only when both windows
// are full; otherwise just the sample counts are set.
func FullWindowComparison(samples []Sample, order Order, window int) Comparison {
	c := RecentVsPrevious(samples, order, window)
	if c.PreviousCount < window {
		return Comparison{RecentCount: c.RecentCount, PreviousCount: c.PreviousCount}
	}
	return c
}

// Latest returns the newest sample, if any.
func Latest(samples []Sample, order Order) (Sample, bool) {
	got := newest(samples, order, 0, 1)
	if len(got) == 0 {
		return Sample{}, false
	}
	return got[0], true
}

// newest skips the `skip` most recent samples and returns up to n of the next ones.
func newest(samples []Sample, order Order, skip, n int) []Sample {
	if n <= 0 || skip < 0 || skip >= len(samples) {
		return nil
	}
	if order == NewestFirst {
		end := min(skip+n, len(samples))
		return samples[skip:end]
	}
	end := len(samples) - skip
	start := max(end-n, 0)
	return samples[start:end]
}

func mean(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Net
	}
	return sum / float64(len(samples))
}
