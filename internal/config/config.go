package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/gokatarajesh/lgs-tracker/internal/listing"
	"github.com/gokatarajesh/lgs-tracker/internal/progress"
	"github.com/gokatarajesh/lgs-tracker/internal/records"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"lgs-tracker"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	Timezone                string        `env:"APP_TIMEZONE" envDefault:"Europe/Istanbul"`
	CurriculumFile          string        `env:"CURRICULUM_FILE" envDefault:""`

	Postgres  Postgres
	Redis     Redis
	Scoring   Scoring
	Progress  Progress
	Dashboard Dashboard
	Ranking   Ranking
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// DSN renders the connection string used by pgxpool and the migrator.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// Redis holds cache + ranking configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Scoring sets the wrong-answer penalty divisors.
type Scoring struct {
	PracticeDivisor float64 `env:"SCORING_PRACTICE_DIVISOR" envDefault:"4"`
	ExamDivisor     float64 `env:"SCORING_EXAM_DIVISOR" envDefault:"3"`
}

// Progress groups the gamification thresholds.
type Progress struct {
	PointsPerTest      int `env:"PROGRESS_POINTS_PER_TEST" envDefault:"10"`
	IntermediatePoints int `env:"PROGRESS_INTERMEDIATE_POINTS" envDefault:"100"`
	AdvancedPoints     int `env:"PROGRESS_ADVANCED_POINTS" envDefault:"200"`
	FirstTestBadge     int `env:"BADGE_FIRST_TEST" envDefault:"1"`
	FiveTestsBadge     int `env:"BADGE_FIVE_TESTS" envDefault:"5"`
	WeeklyStreakBadge  int `env:"BADGE_WEEKLY_STREAK" envDefault:"7"`
	DailyGoal          int `env:"GOAL_DAILY_DEFAULT" envDefault:"1"`
	WeeklyGoal         int `env:"GOAL_WEEKLY_DEFAULT" envDefault:"3"`
}

// Dashboard tunes the statistics views.
type Dashboard struct {
	TrendWindow    int           `env:"DASHBOARD_TREND_WINDOW" envDefault:"5"`
	LastN          int           `env:"DASHBOARD_LAST_N" envDefault:"5"`
	ExamWindow     int           `env:"DASHBOARD_EXAM_WINDOW" envDefault:"3"`
	WeakestN       int           `env:"DASHBOARD_WEAKEST_N" envDefault:"3"`
	PageSize       int           `env:"DASHBOARD_PAGE_SIZE" envDefault:"25"`
	CacheTTL       time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"30s"`
	ReviewInterval time.Duration `env:"MISTAKE_REVIEW_INTERVAL" envDefault:"72h"`
}

// Ranking governs the school ranking and its snapshots.
type Ranking struct {
	TopN             int           `env:"RANKING_TOP_N" envDefault:"50"`
	SnapshotInterval time.Duration `env:"RANKING_SNAPSHOT_INTERVAL" envDefault:"5m"`
	SnapshotTopN     int           `env:"RANKING_SNAPSHOT_TOP" envDefault:"100"`
	KeyPrefix        string        `env:"RANKING_KEY_PREFIX" envDefault:"rank"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,X-User-ID"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the engine parameters before they reach the services.
func (c *App) Validate() error {
	if err := c.Scoring.Policy().Validate(); err != nil {
		return fmt.Errorf("scoring config: %w", err)
	}
	if err := c.Progress.Engine().Validate(); err != nil {
		return fmt.Errorf("progress config: %w", err)
	}
	if err := c.Progress.Goals().Validate(); err != nil {
		return fmt.Errorf("goal defaults: %w", err)
	}
	if c.Dashboard.PageSize < 0 {
		return fmt.Errorf("dashboard page size %d must not be negative", c.Dashboard.PageSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *App) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Policy converts the divisors into the scoring engine's policy.
func (s Scoring) Policy() scoring.PenaltyPolicy {
	return scoring.PenaltyPolicy{Practice: s.PracticeDivisor, Exam: s.ExamDivisor}
}

// Engine converts the thresholds into the progress engine's config.
func (p Progress) Engine() progress.Config {
	return progress.Config{
		PointsPerTest: p.PointsPerTest,
		Levels: []progress.Threshold{
			{Level: progress.LevelEntry, MinPoints: 0},
			{Level: progress.LevelIntermediate, MinPoints: p.IntermediatePoints},
			{Level: progress.LevelAdvanced, MinPoints: p.AdvancedPoints},
		},
		FirstTest:    p.FirstTestBadge,
		FiveTests:    p.FiveTestsBadge,
		WeeklyStreak: p.WeeklyStreakBadge,
	}
}

// Goals returns the targets new users start with.
func (p Progress) Goals() records.Goals {
	return records.Goals{Daily: p.DailyGoal, Weekly: p.WeeklyGoal}
}

// ListPageSize converts PageSize; zero means every row on one page.
func (d Dashboard) ListPageSize() listing.PageSize {
	return listing.PageSize(d.PageSize)
}
