package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/tamilprep-backend/internal/model"
)

// AttemptRepository handles archived practice attempts.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// BulkInsert writes a batch of attempts in one statement. Rows already present
// (requeued duplicates) are skipped.
func (r *AttemptRepository) BulkInsert(ctx context.Context, attempts []model.PracticeAttempt) error {
	n := len(attempts)
	ids := make([]uuid.UUID, n)
	sessions := make([]uuid.UUID, n)
	names := make([]string, n)
	scores := make([]int32, n)
	totals := make([]int32, n)
	timed := make([]bool, n)
	submitted := make([]time.Time, n)

	for i, a := range attempts {
		ids[i] = a.ID
		sessions[i] = a.SessionID
		names[i] = a.DocumentName
		scores[i] = int32(a.Score)
		totals[i] = int32(a.Total)
		timed[i] = a.Timed
		submitted[i] = a.SubmittedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO practice_attempts (id, session_id, document_name, score, total, timed, submitted_at)
		 SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::int[],
			$5::int[],
			$6::bool[],
			$7::timestamptz[]
		 )
		 ON CONFLICT (id) DO NOTHING`,
		ids, sessions, names, scores, totals, timed, submitted,
	)
	return err
}

// Insert writes a single attempt.
func (r *AttemptRepository) Insert(ctx context.Context, a model.PracticeAttempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO practice_attempts (id, session_id, document_name, score, total, timed, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.SessionID, a.DocumentName, a.Score, a.Total, a.Timed, a.SubmittedAt,
	)
	return err
}

// ListBySession returns a session's attempts, newest first.
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.PracticeAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, document_name, score, total, timed, submitted_at
		 FROM practice_attempts
		 WHERE session_id = $1
		 ORDER BY submitted_at DESC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.PracticeAttempt{}
	for rows.Next() {
		var a model.PracticeAttempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.DocumentName, &a.Score, &a.Total, &a.Timed, &a.SubmittedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
