package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Supported ranking windows.
const (
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowWeekly, WindowMonthly, WindowAllTime}

// Entry is one row of a school ranking: a user's best composite exam score in the window.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
	Exams  int     `json:"exams"`
}

// Scored is a composite exam score with the time it was taken.
type Scored struct {
	Score float64
	At    time.Time
}

// ServiceOptions configures ranking behavior.
type ServiceOptions struct {
	TopN             int
	Windows          []string
	RedisKeyPrefix   string
	SnapshotTopLimit int
	Now              func() time.Time
}

// Service keeps per-window sorted sets of each user's best composite exam score.
// Weekly and monthly windows are bucketed by calendar period and expire on their own.
type Service struct {
	redis          *redis.Client
	logger         zerolog.Logger
	topN           int
	windows        []string
	prefix         string
	snapshotTopLim int
	now            func() time.Time
}

// NewService constructs a ranking service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	windows := opts.Windows
	if len(windows) == 0 {
		windows = defaultWindows
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "rank"
	}
	snapTop := opts.SnapshotTopLimit
	if snapTop <= 0 {
		snapTop = 100
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		redis:          redis,
		logger:         logger.With().Str("component", "ranking").Logger(),
		topN:           topN,
		windows:        windows,
		prefix:         prefix,
		snapshotTopLim: snapTop,
		now:            now,
	}
}

// Windows returns the windows this service maintains.
func (s *Service) Windows() []string {
	return s.windows
}

// RecordExam keeps the higher of the stored and the new score in each window bucket the exam falls in.
func (s *Service) RecordExam(ctx context.Context, userID string, exam Scored) error {
	at := exam.At
	if at.IsZero() {
		at = s.now()
	}

	pipe := s.redis.TxPipeline()
	for _, window := range s.windows {
		zKey := s.rankingKey(window, at)
		metaKey := s.metaKey(window, at, userID)

		pipe.ZAddArgs(ctx, zKey, redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: exam.Score, Member: userID}},
		})
		pipe.HIncrBy(ctx, metaKey, "exams", 1)
		if ttl := windowTTL(window); ttl > 0 {
			pipe.Expire(ctx, zKey, ttl)
			pipe.Expire(ctx, metaKey, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record exam ranking for %s: %w", userID, err)
	}
	return nil
}

// Rebuild recomputes a user's current-period entries from their remaining exams.
// Used after an exam is deleted, since a sorted set cannot forget a maximum.
func (s *Service) Rebuild(ctx context.Context, userID string, exams []Scored) error {
	now := s.now()

	pipe := s.redis.TxPipeline()
	for _, window := range s.windows {
		current := periodKey(window, now)
		var (
			best  float64
			count int
		)
		for _, e := range exams {
			at := e.At
			if at.IsZero() {
				at = now
			}
			if periodKey(window, at) != current {
				continue
			}
			if count == 0 || e.Score > best {
				best = e.Score
			}
			count++
		}

		zKey := s.rankingKey(window, now)
		metaKey := s.metaKey(window, now, userID)
		if count == 0 {
			pipe.ZRem(ctx, zKey, userID)
			pipe.Del(ctx, metaKey)
			continue
		}
		pipe.ZAdd(ctx, zKey, redis.Z{Score: best, Member: userID})
		pipe.HSet(ctx, metaKey, "exams", count)
		if ttl := windowTTL(window); ttl > 0 {
			pipe.Expire(ctx, zKey, ttl)
			pipe.Expire(ctx, metaKey, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild ranking for %s: %w", userID, err)
	}
	return nil
}

// Top retrieves the top entries of the current period of a window.
func (s *Service) Top(ctx context.Context, window string, limit int) ([]Entry, error) {
	if !IsValidWindow(window) {
		return nil, fmt.Errorf("unknown ranking window %q", window)
	}
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	now := s.now()
	results, err := s.redis.ZRevRangeWithScores(ctx, s.rankingKey(window, now), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		userID, _ := z.Member.(string)
		entries = append(entries, Entry{
			Rank:   i + 1,
			UserID: userID,
			Score:  z.Score,
			Exams:  s.readExamCount(ctx, window, now, userID),
		})
	}
	return entries, nil
}

// SnapshotTop returns the configured snapshot size for persistence jobs.
func (s *Service) SnapshotTop(ctx context.Context, window string) ([]Entry, error) {
	return s.Top(ctx, window, s.snapshotTopLim)
}

// Rank returns a user's position in the current period of a window. ok is false when unranked.
func (s *Service) Rank(ctx context.Context, window, userID string) (Entry, bool, error) {
	if !IsValidWindow(window) {
		return Entry{}, false, fmt.Errorf("unknown ranking window %q", window)
	}

	now := s.now()
	zKey := s.rankingKey(window, now)
	pos, err := s.redis.ZRevRank(ctx, zKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("fetch rank: %w", err)
	}
	score, err := s.redis.ZScore(ctx, zKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("fetch rank score: %w", err)
	}

	return Entry{
		Rank:   int(pos) + 1,
		UserID: userID,
		Score:  score,
		Exams:  s.readExamCount(ctx, window, now, userID),
	}, true, nil
}

func (s *Service) readExamCount(ctx context.Context, window string, at time.Time, userID string) int {
	raw, err := s.redis.HGet(ctx, s.metaKey(window, at, userID), "exams").Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read ranking metadata")
		}
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (s *Service) rankingKey(window string, at time.Time) string {
	if p := periodKey(window, at); p != "" {
		return fmt.Sprintf("%s:%s:%s", s.prefix, window, p)
	}
	return fmt.Sprintf("%s:%s", s.prefix, window)
}

func (s *Service) metaKey(window string, at time.Time, userID string) string {
	return fmt.Sprintf("%s:meta:%s", s.rankingKey(window, at), userID)
}

// IsValidWindow reports whether window names a supported ranking window.
func IsValidWindow(window string) bool {
	switch window {
	case WindowWeekly, WindowMonthly, WindowAllTime:
		return true
	default:
		return false
	}
}

// periodKey names the calendar bucket of at: ISO week, month, or "" for all time.
func periodKey(window string, at time.Time) string {
	switch window {
	case WindowWeekly:
		year, week := at.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case WindowMonthly:
		return at.Format("2006-01")
	default:
		return ""
	}
}

// windowTTL keeps a bucket for two of its periods.
func windowTTL(window string) time.Duration {
	switch window {
	case WindowWeekly:
		return 14 * 24 * time.Hour
	case WindowMonthly:
		return 62 * 24 * time.Hour
	default:
		return 0
	}
}
