package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// AnswerRepository handles the per-answer audit log.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Append inserts a single answer record.
func (r *AnswerRepository) Append(ctx context.Context, a *model.AnswerRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO session_answers
		   (user_id, session_id, question_id, answer_index, is_correct, points_earned, time_elapsed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		a.UserID, a.SessionID, a.QuestionID, a.AnswerIndex, a.IsCorrect, a.PointsEarned, a.TimeElapsed,
	).Scan(&a.ID, &a.CreatedAt)
}

// AppendBatch inserts many answer records in one round trip.
func (r *AnswerRepository) AppendBatch(ctx context.Context, answers []model.AnswerRecord) error {
	if len(answers) == 0 {
		return nil
	}

	userIDs := make([]uuid.UUID, len(answers))
	sessionIDs := make([]uuid.UUID, len(answers))
	questionIDs := make([]uuid.UUID, len(answers))
	answerIndexes := make([]int, len(answers))
	corrects := make([]bool, len(answers))
	points := make([]int, len(answers))
	elapsed := make([]float64, len(answers))
	createdAts := make([]any, len(answers))

	for i, a := range answers {
		userIDs[i] = a.UserID
		sessionIDs[i] = a.SessionID
		questionIDs[i] = a.QuestionID
		answerIndexes[i] = a.AnswerIndex
		corrects[i] = a.IsCorrect
		points[i] = a.PointsEarned
		elapsed[i] = a.TimeElapsed
		createdAts[i] = a.CreatedAt
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_answers
		   (user_id, session_id, question_id, answer_index, is_correct, points_earned, time_elapsed, created_at)
		 SELECT * FROM UNNEST(
		   $1::uuid[], $2::uuid[], $3::uuid[], $4::int[], $5::bool[], $6::int[], $7::float8[], $8::timestamptz[]
		 )`,
		userIDs, sessionIDs, questionIDs, answerIndexes, corrects, points, elapsed, createdAts)
	return err
}

// ListBySession returns the answers recorded for a session in play order.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, session_id, question_id, answer_index, is_correct, points_earned, time_elapsed, created_at
		 FROM session_answers
		 WHERE session_id = $1
		 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.AnswerRecord{}
	for rows.Next() {
		var a model.AnswerRecord
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.QuestionID, &a.AnswerIndex,
			&a.IsCorrect, &a.PointsEarned, &a.TimeElapsed, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
