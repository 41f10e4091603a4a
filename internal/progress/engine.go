package progress

import (
	"fmt"
	"math"
	"slices"
)

// Level is a gamification tier.
type Level string

const (
	LevelEntry        Level = "entry"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Threshold is the minimum points needed to reach a level.
type Threshold struct {
	Level     Level `json:"level"`
	MinPoints int   `json:"min_points"`
}

// BadgeKey identifies a badge.
type BadgeKey string

const (
	BadgeFirstTest      BadgeKey = "first_test"
	BadgeFiveTests      BadgeKey = "five_tests"
	BadgeSevenDayStreak BadgeKey = "seven_day_streak"
)

// Config holds configurable gamification constants (defaults match the dashboard).
type Config struct {
	PointsPerTest int         // default: 10
	Levels        []Threshold // default: entry 0, intermediate 100, advanced 200
	FirstTest     int         // default: 1 test
	FiveTests     int         // default: 5 tests
	WeeklyStreak  int         // default: 7 tests in the rolling week
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		PointsPerTest: 10,
		Levels: []Threshold{
			{Level: LevelEntry, MinPoints: 0},
			{Level: LevelIntermediate, MinPoints: 100},
			{Level: LevelAdvanced, MinPoints: 200},
		},
		FirstTest:    1,
		FiveTests:    5,
		WeeklyStreak: 7,
	}
}

// Validate requires ascending level thresholds starting at zero and positive badge thresholds.
func (c Config) Validate() error {
	if c.PointsPerTest <= 0 {
		return fmt.Errorf("points per test must be positive")
	}
	if len(c.Levels) == 0 || c.Levels[0].MinPoints != 0 {
		return fmt.Errorf("first level must start at 0 points")
	}
	for i := 1; i < len(c.Levels); i++ {
		if c.Levels[i].MinPoints <= c.Levels[i-1].MinPoints {
			return fmt.Errorf("level %q threshold must exceed %q", c.Levels[i].Level, c.Levels[i-1].Level)
		}
	}
	if c.FirstTest <= 0 || c.FiveTests <= 0 || c.WeeklyStreak <= 0 {
		return fmt.Errorf("badge thresholds must be positive")
	}
	return nil
}

// State is the cumulative user activity badges and levels are derived from.
type State struct {
	TestCount   int
	WeeklyCount int
}

// LevelStatus describes where a point total sits within its level band.
type LevelStatus struct {
	Level           Level `json:"level"`
	Points          int   `json:"points"`
	MinPoints       int   `json:"min_points"`
	MaxPoints       *int  `json:"max_points,omitempty"` // nil for the top level
	ProgressPercent int   `json:"progress_percent"`
}

// Snapshot is the full derived gamification state.
type Snapshot struct {
	Points int         `json:"points"`
	Level  LevelStatus `json:"level"`
	Badges []BadgeKey  `json:"badges"`
}

// Engine derives levels and badges. It keeps no memory between calls.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Points converts a test count into points.
func (e *Engine) Points(testCount int) int {
	return max(testCount, 0) * e.config.PointsPerTest
}

// LevelFor places points within the configured bands.
func (e *Engine) LevelFor(points int) LevelStatus {
	levels := e.config.Levels
	idx := 0
	for i, t := range levels {
		if points >= t.MinPoints {
			idx = i
		}
	}

	status := LevelStatus{
		Level:     levels[idx].Level,
		Points:    points,
		MinPoints: levels[idx].MinPoints,
	}
	if idx == len(levels)-1 {
		status.ProgressPercent = 100
		return status
	}

	upper := levels[idx+1].MinPoints
	status.MaxPoints = &upper
	span := upper - status.MinPoints
	within := min(max(points-status.MinPoints, 0), span)
	status.ProgressPercent = int(math.Round(float64(within) / float64(span) * 100))
	return status
}

// Badges evaluates every badge predicate against state, in a fixed order.
func (e *Engine) Badges(state State) []BadgeKey {
	out := []BadgeKey{}
	if state.TestCount >= e.config.FirstTest {
		out = append(out, BadgeFirstTest)
	}
	if state.TestCount >= e.config.FiveTests {
		out = append(out, BadgeFiveTests)
	}
	if state.WeeklyCount >= e.config.WeeklyStreak {
		out = append(out, BadgeSevenDayStreak)
	}
	return out
}

// Evaluate derives points, level and badges in one call.
func (e *Engine) Evaluate(state State) Snapshot {
	points := e.Points(state.TestCount)
	return Snapshot{
		Points: points,
		Level:  e.LevelFor(points),
		Badges: e.Badges(state),
	}
}

// NewlyEarned returns badges in current that are missing from previous, in current's order.
func NewlyEarned(previous, current []BadgeKey) []BadgeKey {
	out := []BadgeKey{}
	for _, b := range current {
		if !slices.Contains(previous, b) && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return out
}

// Union merges badge lists without duplicates, keeping first-seen order.
func Union(lists ...[]BadgeKey) []BadgeKey {
	out := []BadgeKey{}
	for _, list := range lists {
		for _, b := range list {
			if !slices.Contains(out, b) {
				out = append(out, b)
			}
		}
	}
	return out
}
