package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

const mistakeColumns = `id, user_id, test_result_id, subject, topics, note, image_url, status, next_review_at, created_at`

// MistakeRepository persists the mistake notebook.
type MistakeRepository struct {
	db DBTX
}

// NewMistakeRepository wraps a pool or transaction.
func NewMistakeRepository(db DBTX) *MistakeRepository {
	return &MistakeRepository{db: db}
}

// Insert stores a new mistake entry.
func (r *MistakeRepository) Insert(ctx context.Context, m records.MistakeEntry) error {
	id, err := parseID(m.ID)
	if err != nil {
		return err
	}
	var resultID pgtype.UUID
	if m.TestResultID != "" {
		parsed, err := uuid.Parse(m.TestResultID)
		if err != nil {
			return fmt.Errorf("test_result_id: %w", err)
		}
		resultID = pgtype.UUID{Bytes: parsed, Valid: true}
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO mistakes (`+mistakeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, m.OwnerID, resultID, m.Subject, nonNil(m.Topics),
		m.Note, m.ImageURL, string(m.Status), optionalTime(m.NextReviewAt), timestamptz(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert mistake: %w", err)
	}
	return nil
}

// UpdateStatus moves an entry to status and reschedules its next review.
func (r *MistakeRepository) UpdateStatus(ctx context.Context, ownerID, mistakeID string, status records.MistakeStatus, nextReview *time.Time) error {
	id, err := parseID(mistakeID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE mistakes SET status = $3, next_review_at = $4 WHERE id = $1 AND user_id = $2`,
		id, ownerID, string(status), optionalTime(nextReview),
	)
	return expectOne(tag, err)
}

// Get loads a single entry owned by ownerID.
func (r *MistakeRepository) Get(ctx context.Context, ownerID, mistakeID string) (records.MistakeEntry, error) {
	id, err := parseID(mistakeID)
	if err != nil {
		return records.MistakeEntry{}, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+mistakeColumns+` FROM mistakes WHERE id = $1 AND user_id = $2`, id, ownerID)
	m, err := scanMistake(row)
	if err != nil {
		return records.MistakeEntry{}, notFound(err)
	}
	return m, nil
}

// ListByOwner returns a user's notebook, newest first.
func (r *MistakeRepository) ListByOwner(ctx context.Context, ownerID string) ([]records.MistakeEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+mistakeColumns+` FROM mistakes WHERE user_id = $1
		 ORDER BY created_at DESC NULLS LAST`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list mistakes: %w", err)
	}
	return collect(rows, scanMistake)
}

func scanMistake(row pgx.Row) (records.MistakeEntry, error) {
	var (
		m        records.MistakeEntry
		id       uuid.UUID
		resultID pgtype.UUID
		status   string
		next     pgtype.Timestamptz
		created  pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &m.OwnerID, &resultID, &m.Subject, &m.Topics,
		&m.Note, &m.ImageURL, &status, &next, &created,
	); err != nil {
		return records.MistakeEntry{}, err
	}
	m.ID = id.String()
	if resultID.Valid {
		m.TestResultID = uuid.UUID(resultID.Bytes).String()
	}
	m.Status = records.MistakeStatus(status)
	if next.Valid {
		t := next.Time
		m.NextReviewAt = &t
	}
	m.CreatedAt = fromTimestamptz(created)
	if m.Topics == nil {
		m.Topics = []string{}
	}
	return m, nil
}

func optionalTime(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return timestamptz(*t)
}
