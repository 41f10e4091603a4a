package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/lgs-tracker/internal/records"
)

const resultColumns = `id, user_id, subject, correct, wrong, empty, topics, created_at`

// ResultRepository persists single-subject practice test results.
type ResultRepository struct {
	db DBTX
}

// NewResultRepository wraps a pool or transaction.
func NewResultRepository(db DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Insert stores a new result. The ID must already be assigned.
func (r *ResultRepository) Insert(ctx context.Context, res records.TestResult) error {
	id, err := parseID(res.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO test_results (`+resultColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, res.OwnerID, res.Subject,
		res.Score.Correct, res.Score.Wrong, res.Score.Empty,
		nonNil(res.Topics), timestamptz(res.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert test result: %w", err)
	}
	return nil
}

// Update overwrites the score and topics of a result owned by res.OwnerID.
func (r *ResultRepository) Update(ctx context.Context, res records.TestResult) error {
	id, err := parseID(res.ID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE test_results SET correct = $3, wrong = $4, empty = $5, topics = $6
		 WHERE id = $1 AND user_id = $2`,
		id, res.OwnerID, res.Score.Correct, res.Score.Wrong, res.Score.Empty, nonNil(res.Topics),
	)
	return expectOne(tag, err)
}

// Delete removes a result owned by ownerID.
func (r *ResultRepository) Delete(ctx context.Context, ownerID, resultID string) error {
	id, err := parseID(resultID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM test_results WHERE id = $1 AND user_id = $2`, id, ownerID)
	return expectOne(tag, err)
}

// Get loads a single result owned by ownerID.
func (r *ResultRepository) Get(ctx context.Context, ownerID, resultID string) (records.TestResult, error) {
	id, err := parseID(resultID)
	if err != nil {
		return records.TestResult{}, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE id = $1 AND user_id = $2`, id, ownerID)
	res, err := scanResult(row)
	if err != nil {
		return records.TestResult{}, notFound(err)
	}
	return res, nil
}

// ListByOwner returns a user's results, newest first.
func (r *ResultRepository) ListByOwner(ctx context.Context, ownerID string) ([]records.TestResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE user_id = $1
		 ORDER BY created_at DESC NULLS LAST`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	return collect(rows, scanResult)
}

// ListAll returns every user's results, newest first. Used for the school scope.
func (r *ResultRepository) ListAll(ctx context.Context) ([]records.TestResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+resultColumns+` FROM test_results ORDER BY created_at DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("list all test results: %w", err)
	}
	return collect(rows, scanResult)
}

func scanResult(row pgx.Row) (records.TestResult, error) {
	var (
		res     records.TestResult
		id      uuid.UUID
		created pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &res.OwnerID, &res.Subject,
		&res.Score.Correct, &res.Score.Wrong, &res.Score.Empty,
		&res.Topics, &created,
	); err != nil {
		return records.TestResult{}, err
	}
	res.ID = id.String()
	res.CreatedAt = fromTimestamptz(created)
	if res.Topics == nil {
		res.Topics = []string{}
	}
	return res, nil
}

func nonNil(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}
