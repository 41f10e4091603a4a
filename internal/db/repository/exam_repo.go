package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/lgs-tracker/internal/records"
	"github.com/gokatarajesh/lgs-tracker/internal/scoring"
)

const examColumns = `id, user_id, name, publisher, subjects, created_at`

// ExamRepository persists mock exam results. Subject scores live in a jsonb column.
type ExamRepository struct {
	db DBTX
}

// NewExamRepository wraps a pool or transaction.
func NewExamRepository(db DBTX) *ExamRepository {
	return &ExamRepository{db: db}
}

// Insert stores a new exam result.
func (r *ExamRepository) Insert(ctx context.Context, exam records.ExamResult) error {
	id, err := parseID(exam.ID)
	if err != nil {
		return err
	}
	subjects, err := json.Marshal(exam.Subjects)
	if err != nil {
		return fmt.Errorf("encode exam subjects: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO exam_results (`+examColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, exam.OwnerID, exam.Name, exam.Publisher, subjects, timestamptz(exam.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert exam result: %w", err)
	}
	return nil
}

// Get loads a single exam owned by ownerID.
func (r *ExamRepository) Get(ctx context.Context, ownerID, examID string) (records.ExamResult, error) {
	id, err := parseID(examID)
	if err != nil {
		return records.ExamResult{}, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exam_results WHERE id = $1 AND user_id = $2`, id, ownerID)
	exam, err := scanExam(row)
	if err != nil {
		return records.ExamResult{}, notFound(err)
	}
	return exam, nil
}

// Delete removes an exam owned by ownerID.
func (r *ExamRepository) Delete(ctx context.Context, ownerID, examID string) error {
	id, err := parseID(examID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM exam_results WHERE id = $1 AND user_id = $2`, id, ownerID)
	return expectOne(tag, err)
}

// ListByOwner returns a user's exams, newest first.
func (r *ExamRepository) ListByOwner(ctx context.Context, ownerID string) ([]records.ExamResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+examColumns+` FROM exam_results WHERE user_id = $1
		 ORDER BY created_at DESC NULLS LAST`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return collect(rows, scanExam)
}

func scanExam(row pgx.Row) (records.ExamResult, error) {
	var (
		exam     records.ExamResult
		id       uuid.UUID
		subjects []byte
		created  pgtype.Timestamptz
	)
	if err := row.Scan(&id, &exam.OwnerID, &exam.Name, &exam.Publisher, &subjects, &created); err != nil {
		return records.ExamResult{}, err
	}
	exam.Subjects = map[string]scoring.SubjectScore{}
	if len(subjects) > 0 {
		if err := json.Unmarshal(subjects, &exam.Subjects); err != nil {
			return records.ExamResult{}, fmt.Errorf("decode exam subjects: %w", err)
		}
	}
	exam.ID = id.String()
	exam.CreatedAt = fromTimestamptz(created)
	return exam, nil
}
