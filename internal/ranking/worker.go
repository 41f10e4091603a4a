package ranking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
)

type topSource interface {
	Windows() []string
	SnapshotTop(ctx context.Context, window string) ([]Entry, error)
}

type snapshotWriter interface {
	Insert(ctx context.Context, snap repository.RankingSnapshot) (int64, error)
}

// SnapshotWorker periodically persists Redis rankings into Postgres.
type SnapshotWorker struct {
	svc      topSource
	store    snapshotWriter
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewSnapshotWorker(svc topSource, store snapshotWriter, interval time.Duration, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SnapshotWorker{
		svc:      svc,
		store:    store,
		logger:   logger.With().Str("component", "ranking_snapshot_worker").Logger(),
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	for _, window := range w.svc.Windows() {
		if err := w.snapshotWindow(ctx, window); err != nil {
			w.logger.Warn().Err(err).Str("window", window).Msg("snapshot failed")
		}
	}
}

func (w *SnapshotWorker) snapshotWindow(ctx context.Context, window string) error {
	entries, err := w.svc.SnapshotTop(ctx, window)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	sourceHash := sha256.Sum256(data)
	now := w.now().UTC()

	if _, err := w.store.Insert(ctx, repository.RankingSnapshot{
		Window:      window,
		GeneratedAt: now,
		Entries:     data,
		SourceHash:  hex.EncodeToString(sourceHash[:]),
	}); err != nil {
		return err
	}

	w.logger.Info().
		Str("window", window).
		Int("entries", len(entries)).
		Time("generated_at", now).
		Msg("ranking snapshot persisted")

	return nil
}
