package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// ErrVersionConflict is returned when a version-checked update matched no row
// because another writer committed first.
var ErrVersionConflict = errors.New("session version conflict")

// SessionRepository handles game session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, pool_id, seed, status, start_time, end_time,
	total_score, questions_answered, correct_answers, streaks_completed, streak_progress,
	hearts_remaining, bonus_seconds, time_remaining, game_over_reason, version, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*model.GameSession, error) {
	s := &model.GameSession{}
	err := row.Scan(
		&s.ID, &s.UserID, &s.PoolID, &s.Seed, &s.Status, &s.StartTime, &s.EndTime,
		&s.TotalScore, &s.QuestionsAnswered, &s.CorrectAnswers, &s.StreaksCompleted, &s.StreakProgress,
		&s.HeartsRemaining, &s.BonusSeconds, &s.TimeRemaining, &s.GameOverReason, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a freshly started session and fills in generated fields.
func (r *SessionRepository) Create(ctx context.Context, s *model.GameSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO game_sessions
		   (user_id, pool_id, seed, status, start_time, hearts_remaining, time_remaining)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, version, created_at, updated_at`,
		s.UserID, s.PoolID, s.Seed, s.Status, s.StartTime, s.HeartsRemaining, s.TimeRemaining,
	).Scan(&s.ID, &s.Version, &s.CreatedAt, &s.UpdatedAt)
}

// Get retrieves a session scoped to its owner.
func (r *SessionRepository) Get(ctx context.Context, id, userID uuid.UUID) (*model.GameSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM game_sessions
		 WHERE id = $1 AND user_id = $2`, id, userID)
	return scanSession(row)
}

// GetByID retrieves a session regardless of owner.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GameSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM game_sessions
		 WHERE id = $1`, id)
	return scanSession(row)
}

// UpdateVersioned writes the session back only if nobody else has written it
// since it was read. On success the session's version and updated_at are
// refreshed in place; otherwise ErrVersionConflict is returned and the caller
// should re-read and retry.
func (r *SessionRepository) UpdateVersioned(ctx context.Context, s *model.GameSession) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE game_sessions SET
		   status = $1, end_time = $2, total_score = $3, questions_answered = $4,
		   correct_answers = $5, streaks_completed = $6, streak_progress = $7,
		   hearts_remaining = $8, bonus_seconds = $9, time_remaining = $10,
		   game_over_reason = $11, version = version + 1, updated_at = now()
		 WHERE id = $12 AND version = $13
		 RETURNING version, updated_at`,
		s.Status, s.EndTime, s.TotalScore, s.QuestionsAnswered,
		s.CorrectAnswers, s.StreaksCompleted, s.StreakProgress,
		s.HeartsRemaining, s.BonusSeconds, s.TimeRemaining,
		s.GameOverReason, s.ID, s.Version,
	).Scan(&s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return err
	}
	return nil
}

// TopScores returns the best completed sessions since the given time, highest
// score first. A zero since means all time.
func (r *SessionRepository) TopScores(ctx context.Context, count int, since time.Time) ([]model.GameSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM game_sessions
		 WHERE status = $1 AND start_time >= $2
		 ORDER BY total_score DESC, end_time ASC
		 LIMIT $3`,
		model.SessionStatusCompleted, since, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.GameSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
