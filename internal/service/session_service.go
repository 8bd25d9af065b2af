package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/draw"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
	"github.com/stationgames/trivia-backend/internal/scoring"
)

// Store interfaces are satisfied by the repository layer. Declared here so the
// session flow can be tested against in-memory fakes.

type SessionStore interface {
	Create(ctx context.Context, s *model.GameSession) error
	Get(ctx context.Context, id, userID uuid.UUID) (*model.GameSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.GameSession, error)
	UpdateVersioned(ctx context.Context, s *model.GameSession) error
	TopScores(ctx context.Context, count int, since time.Time) ([]model.GameSession, error)
}

type QuestionStore interface {
	ListByPool(ctx context.Context, poolID string) ([]model.Question, error)
}

type DrawStore interface {
	Create(ctx context.Context, d *model.QuestionDraw) error
	Get(ctx context.Context, sessionID uuid.UUID) (*model.QuestionDraw, error)
}

type AnswerStore interface {
	Append(ctx context.Context, a *model.AnswerRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error)
}

const (
	// How many times a version-checked write is retried before giving up.
	// Conflicts only happen when the same session is written concurrently,
	// which for a single-player game means a double-tap or a reconnect race.
	maxWriteRetries = 3

	drawCacheTTL = 6 * time.Hour
)

// SessionService owns the game session lifecycle: starting sessions, judging
// answers, and closing sessions out.
type SessionService struct {
	sessions  SessionStore
	questions QuestionStore
	draws     DrawStore
	answers   AnswerStore
	rdb       *redis.Client
	game      config.GameConfig
	rules     scoring.Rules
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	questions QuestionStore,
	draws DrawStore,
	answers AnswerStore,
	rdb *redis.Client,
	game config.GameConfig,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		questions: questions,
		draws:     draws,
		answers:   answers,
		rdb:       rdb,
		game:      game,
		rules:     scoring.FromConfig(game),
	}
}

// SubmitAnswerResult is what the client gets back after an answer is judged.
type SubmitAnswerResult struct {
	IsCorrect         bool                `json:"isCorrect"`
	PointsEarned      int                 `json:"pointsEarned"`
	TotalScore        int                 `json:"totalScore"`
	QuestionsAnswered int                 `json:"questionsAnswered"`
	StreakProgress    int                 `json:"streakProgress"`
	StreaksCompleted  int                 `json:"streaksCompleted"`
	TierCompleted     bool                `json:"tierCompleted"`
	BonusAwarded      float64             `json:"bonusAwarded"`
	HeartsRemaining   float64             `json:"heartsRemaining"`
	TimeRemaining     float64             `json:"timeRemaining"`
	SessionStatus     model.SessionStatus `json:"sessionStatus"`
	GameOverReason    *string             `json:"gameOverReason,omitempty"`
}

// SessionSummary is the closing report for a finished session.
type SessionSummary struct {
	SessionID         uuid.UUID           `json:"sessionId"`
	Status            model.SessionStatus `json:"status"`
	FinalScore        int                 `json:"finalScore"`
	QuestionsAnswered int                 `json:"questionsAnswered"`
	CorrectAnswers    int                 `json:"correctAnswers"`
	Accuracy          float64             `json:"accuracy"`
	StreaksCompleted  int                 `json:"streaksCompleted"`
	HeartsRemaining   float64             `json:"heartsRemaining"`
	GameOverReason    *string             `json:"gameOverReason,omitempty"`
	StartTime         time.Time           `json:"startTime"`
	EndTime           *time.Time          `json:"endTime,omitempty"`
	DurationSeconds   float64             `json:"durationSeconds"`
	AlreadyEnded      bool                `json:"alreadyEnded,omitempty"`
}

// LeaderboardUpdate is published on the leaderboard channel whenever a
// session completes.
type LeaderboardUpdate struct {
	SessionID uuid.UUID  `json:"sessionId"`
	UserID    uuid.UUID  `json:"userId"`
	PoolID    string     `json:"poolId"`
	Score     int        `json:"score"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Start creates a new session for the user on the given pool (the default
// pool when empty), draws its questions and caches the draw.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, poolID string) (*model.GameSession, error) {
	if poolID == "" {
		poolID = s.game.DefaultPoolID
	}

	questions, err := s.questions.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	session := &model.GameSession{
		UserID:          userID,
		PoolID:          poolID,
		Seed:            draw.NewSeed(),
		Status:          model.SessionStatusActive,
		StartTime:       time.Now().UTC(),
		HeartsRemaining: s.game.MaxHearts,
		TimeRemaining:   s.game.InitialSeconds,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	d, err := draw.New(session.Seed, session.ID, userID, questions)
	if err != nil {
		return nil, fmt.Errorf("draw questions: %w", err)
	}
	if err := s.draws.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("persist draw: %w", err)
	}

	s.cacheDraw(ctx, d)

	return session, nil
}

// Questions returns the session's drawn questions, cache-aside through Redis.
func (s *SessionService) Questions(ctx context.Context, sessionID, userID uuid.UUID) ([]model.DrawQuestion, error) {
	d, err := s.getDraw(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return d.Questions, nil
}

// SubmitAnswer judges one answer against the session's draw and advances the
// session state. The write is version-checked; on conflict the whole
// read-judge-write cycle is retried so that concurrent submissions for the
// same session serialize instead of clobbering each other.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, userID uuid.UUID, req *model.SubmitAnswerRequest) (*SubmitAnswerResult, error) {
	d, err := s.getDraw(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrSessionNotFound
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return nil, ErrQuestionNotInDraw
	}

	var dq *model.DrawQuestion
	for i := range d.Questions {
		if d.Questions[i].QuestionID == questionID {
			dq = &d.Questions[i]
			break
		}
	}
	if dq == nil {
		return nil, ErrQuestionNotInDraw
	}
	if req.AnswerIndex < 0 || req.AnswerIndex >= len(dq.Choices) {
		return nil, ErrInvalidAnswerIndex
	}

	// Correctness is judged here against the draw. The isCorrect the client
	// sends along is kept as telemetry only.
	correct := req.AnswerIndex == dq.CorrectAnswerIndex
	if req.IsCorrect != nil && *req.IsCorrect != correct {
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("question_id", req.QuestionID).
			Bool("client_is_correct", *req.IsCorrect).
			Bool("server_is_correct", correct).
			Msg("client correctness disagrees with draw")
	}

	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		session, err := s.sessions.Get(ctx, sessionID, userID)
		if err != nil {
			return nil, mapNoRows(err, ErrSessionNotFound)
		}
		if session.Status.IsTerminal() {
			return nil, ErrSessionNotActive
		}

		timeLeft := s.game.InitialSeconds + session.BonusSeconds - req.TimeElapsed
		if timeLeft < 0 {
			timeLeft = 0
		}

		out := s.rules.Apply(scoring.State{
			StreakProgress:   session.StreakProgress,
			StreaksCompleted: session.StreaksCompleted,
			HeartsRemaining:  session.HeartsRemaining,
			TimeLeft:         timeLeft,
		}, correct)

		session.TotalScore += out.PointsEarned
		session.QuestionsAnswered++
		if correct {
			session.CorrectAnswers++
		}
		session.StreakProgress = out.StreakProgress
		session.StreaksCompleted = out.StreaksCompleted
		session.HeartsRemaining = out.HeartsRemaining
		session.BonusSeconds += out.BonusAwarded
		session.TimeRemaining = out.TimeLeft

		switch {
		case out.ShouldEnd:
			s.closeSession(session, out.GameOverReason)
		case out.TimeLeft <= 0:
			s.closeSession(session, model.GameOverTimeExpired)
		case session.QuestionsAnswered >= len(d.Questions):
			s.closeSession(session, "")
		}

		err = s.sessions.UpdateVersioned(ctx, session)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}

		s.logAnswer(ctx, &model.AnswerRecord{
			UserID:       userID,
			SessionID:    sessionID,
			QuestionID:   questionID,
			AnswerIndex:  req.AnswerIndex,
			IsCorrect:    correct,
			PointsEarned: out.PointsEarned,
			TimeElapsed:  req.TimeElapsed,
			CreatedAt:    time.Now().UTC(),
		})

		if session.Status == model.SessionStatusCompleted {
			s.publishLeaderboard(ctx, session)
		}

		return &SubmitAnswerResult{
			IsCorrect:         correct,
			PointsEarned:      out.PointsEarned,
			TotalScore:        session.TotalScore,
			QuestionsAnswered: session.QuestionsAnswered,
			StreakProgress:    session.StreakProgress,
			StreaksCompleted:  session.StreaksCompleted,
			TierCompleted:     out.TierCompleted,
			BonusAwarded:      out.BonusAwarded,
			HeartsRemaining:   session.HeartsRemaining,
			TimeRemaining:     session.TimeRemaining,
			SessionStatus:     session.Status,
			GameOverReason:    session.GameOverReason,
		}, nil
	}

	return nil, ErrConcurrentUpdate
}

// End completes an active session. The server's running totals stay
// authoritative; the client's closing report only contributes the final time
// reading and a game-over reason when the server has none. Ending an already
// terminal session returns its summary unchanged, flagged as a repeat.
func (s *SessionService) End(ctx context.Context, sessionID, userID uuid.UUID, req *model.EndSessionRequest) (*SessionSummary, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		session, err := s.sessions.Get(ctx, sessionID, userID)
		if err != nil {
			return nil, mapNoRows(err, ErrSessionNotFound)
		}
		if session.Status.IsTerminal() {
			summary := summarize(session)
			summary.AlreadyEnded = true
			return summary, nil
		}

		if req != nil {
			// The client's clock keeps running after the last submit, so its
			// final reading can only lower the remaining time.
			if req.FinalTimeRemaining >= 0 && req.FinalTimeRemaining < session.TimeRemaining {
				session.TimeRemaining = req.FinalTimeRemaining
			}
			if session.GameOverReason == nil && req.GameOverReason != "" {
				r := req.GameOverReason
				session.GameOverReason = &r
			}
		}
		s.closeSession(session, "")

		err = s.sessions.UpdateVersioned(ctx, session)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}

		s.publishLeaderboard(ctx, session)
		return summarize(session), nil
	}
	return nil, ErrConcurrentUpdate
}

// Abandon marks an active session abandoned. Abandoned sessions never enter
// the leaderboard. Abandoning a terminal session is a no-op.
func (s *SessionService) Abandon(ctx context.Context, sessionID, userID uuid.UUID) (*SessionSummary, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		session, err := s.sessions.Get(ctx, sessionID, userID)
		if err != nil {
			return nil, mapNoRows(err, ErrSessionNotFound)
		}
		if session.Status.IsTerminal() {
			summary := summarize(session)
			summary.AlreadyEnded = true
			return summary, nil
		}

		now := time.Now().UTC()
		session.Status = model.SessionStatusAbandoned
		session.EndTime = &now

		err = s.sessions.UpdateVersioned(ctx, session)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
		return summarize(session), nil
	}
	return nil, ErrConcurrentUpdate
}

// Get returns a session scoped to its owner.
func (s *SessionService) Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.GameSession, error) {
	session, err := s.sessions.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, mapNoRows(err, ErrSessionNotFound)
	}
	return session, nil
}

// Answers returns the recorded answers for a session in play order.
func (s *SessionService) Answers(ctx context.Context, sessionID, userID uuid.UUID) ([]model.AnswerRecord, error) {
	if _, err := s.sessions.Get(ctx, sessionID, userID); err != nil {
		return nil, mapNoRows(err, ErrSessionNotFound)
	}
	return s.answers.ListBySession(ctx, sessionID)
}

// TopScores returns the leaderboard: best completed sessions since the given
// time, highest score first.
func (s *SessionService) TopScores(ctx context.Context, count int, since time.Time) ([]model.GameSession, error) {
	return s.sessions.TopScores(ctx, count, since)
}

// closeSession moves a session to completed. When the session carries no
// game-over reason yet and one is given, it is recorded; an empty reason
// means the game ran to natural completion.
func (s *SessionService) closeSession(session *model.GameSession, reason string) {
	now := time.Now().UTC()
	session.Status = model.SessionStatusCompleted
	session.EndTime = &now
	if session.GameOverReason == nil && reason != "" {
		r := reason
		session.GameOverReason = &r
	}
}

func (s *SessionService) cacheDraw(ctx context.Context, d *model.QuestionDraw) {
	payload, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.SessionDrawKey(d.SessionID.String()), payload, drawCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", d.SessionID.String()).Msg("failed to cache draw")
	}
}

// getDraw reads the draw cache-aside: Redis first, Postgres on miss with a
// cache refill.
func (s *SessionService) getDraw(ctx context.Context, sessionID uuid.UUID) (*model.QuestionDraw, error) {
	key := config.CacheKey.SessionDrawKey(sessionID.String())

	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		d := &model.QuestionDraw{}
		if jsonErr := json.Unmarshal(val, d); jsonErr == nil {
			return d, nil
		}
		// Corrupt cache entry, fall through to the database.
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("draw cache read failed")
	}

	d, err := s.draws.Get(ctx, sessionID)
	if err != nil {
		return nil, mapNoRows(err, ErrSessionNotFound)
	}
	s.cacheDraw(ctx, d)
	return d, nil
}

// logAnswer hands the answer record to the persistence worker through the
// Redis queue. Queue failures fall back to a direct insert; persistence
// problems are logged and never fail the player's request.
func (s *SessionService) logAnswer(ctx context.Context, a *model.AnswerRecord) {
	payload, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", a.SessionID.String()).Msg("answer queue push failed, inserting directly")
		if dbErr := s.answers.Append(ctx, a); dbErr != nil {
			log.Error().Err(dbErr).Str("session_id", a.SessionID.String()).Msg("failed to persist answer record")
		}
	}
}

func (s *SessionService) publishLeaderboard(ctx context.Context, session *model.GameSession) {
	payload, err := json.Marshal(LeaderboardUpdate{
		SessionID: session.ID,
		UserID:    session.UserID,
		PoolID:    session.PoolID,
		Score:     session.TotalScore,
		EndTime:   session.EndTime,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.LeaderboardChannel(), payload).Err(); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("leaderboard publish failed")
	}
}

func summarize(session *model.GameSession) *SessionSummary {
	accuracy := 0.0
	if session.QuestionsAnswered > 0 {
		accuracy = math.Round(float64(session.CorrectAnswers)/float64(session.QuestionsAnswered)*1000) / 1000
	}
	duration := 0.0
	if session.EndTime != nil {
		duration = session.EndTime.Sub(session.StartTime).Seconds()
	}
	return &SessionSummary{
		SessionID:         session.ID,
		Status:            session.Status,
		FinalScore:        session.TotalScore,
		QuestionsAnswered: session.QuestionsAnswered,
		CorrectAnswers:    session.CorrectAnswers,
		Accuracy:          accuracy,
		StreaksCompleted:  session.StreaksCompleted,
		HeartsRemaining:   session.HeartsRemaining,
		GameOverReason:    session.GameOverReason,
		StartTime:         session.StartTime,
		EndTime:           session.EndTime,
		DurationSeconds:   duration,
	}
}

func mapNoRows(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}
