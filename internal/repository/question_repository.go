package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row interface{ Scan(...any) error }) (*model.Question, error) {
	q := &model.Question{}
	var answers, metadata []byte
	err := row.Scan(&q.ID, &q.PoolID, &q.QuestionText, &answers, &q.CorrectAnswerIndex, &q.Category, &metadata, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &q.Answers); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &q.Metadata); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, pool_id, question_text, answers, correct_answer_index, category, metadata, created_at
		 FROM questions
		 WHERE id = $1`, id)
	return scanQuestion(row)
}

// ListByPool returns every question in a pool, oldest first. Draw order is
// decided by the seed, so storage order only needs to be stable.
func (r *QuestionRepository) ListByPool(ctx context.Context, poolID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, pool_id, question_text, answers, correct_answer_index, category, metadata, created_at
		 FROM questions
		 WHERE pool_id = $1
		 ORDER BY created_at, id`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// Create inserts a question and fills in its generated id.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	answers, err := json.Marshal(q.Answers)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(q.Metadata)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (pool_id, question_text, answers, correct_answer_index, category, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.PoolID, q.QuestionText, answers, q.CorrectAnswerIndex, q.Category, metadata,
	).Scan(&q.ID, &q.CreatedAt)
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
