package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// DrawRepository persists the per-session question draws. The draw is written
// once at session start and never mutated afterwards.
type DrawRepository struct {
	pool *pgxpool.Pool
}

// NewDrawRepository creates a new DrawRepository.
func NewDrawRepository(pool *pgxpool.Pool) *DrawRepository {
	return &DrawRepository{pool: pool}
}

// Create stores the draw for a session.
func (r *DrawRepository) Create(ctx context.Context, d *model.QuestionDraw) error {
	questions, err := json.Marshal(d.Questions)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO question_draws (session_id, user_id, seed, questions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		d.SessionID, d.UserID, d.Seed, questions,
	).Scan(&d.CreatedAt)
}

// Get retrieves the draw for a session.
func (r *DrawRepository) Get(ctx context.Context, sessionID uuid.UUID) (*model.QuestionDraw, error) {
	d := &model.QuestionDraw{}
	var questions []byte
	err := r.pool.QueryRow(ctx,
		`SELECT session_id, user_id, seed, questions, created_at
		 FROM question_draws
		 WHERE session_id = $1`, sessionID,
	).Scan(&d.SessionID, &d.UserID, &d.Seed, &questions, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &d.Questions); err != nil {
		return nil, err
	}
	return d, nil
}
