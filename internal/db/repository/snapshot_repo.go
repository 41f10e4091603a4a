package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// RankingSnapshot is a persisted copy of a ranking window.
type RankingSnapshot struct {
	ID          int64
	Window      string
	GeneratedAt time.Time
	Entries     []byte
	SourceHash  string
}

// SnapshotRepository stores ranking snapshots so reads survive a Redis flush.
type SnapshotRepository struct {
	db DBTX
}

func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert persists a snapshot. Identical payloads for the same window are stored once.
func (r *SnapshotRepository) Insert(ctx context.Context, snap RankingSnapshot) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO ranking_snapshots (time_window, generated_at, entries, source_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (time_window, source_hash) DO UPDATE SET generated_at = EXCLUDED.generated_at
		 RETURNING id`,
		snap.Window, timestamptz(snap.GeneratedAt), snap.Entries, snap.SourceHash,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert ranking snapshot: %w", err)
	}
	return id, nil
}

// Latest returns the newest snapshot for window.
func (r *SnapshotRepository) Latest(ctx context.Context, window string) (RankingSnapshot, error) {
	var (
		snap      RankingSnapshot
		generated pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, time_window, generated_at, entries, source_hash
		 FROM ranking_snapshots WHERE time_window = $1
		 ORDER BY generated_at DESC LIMIT 1`, window,
	).Scan(&snap.ID, &snap.Window, &generated, &snap.Entries, &snap.SourceHash)
	if err != nil {
		return RankingSnapshot{}, notFound(err)
	}
	snap.GeneratedAt = fromTimestamptz(generated)
	return snap, nil
}
