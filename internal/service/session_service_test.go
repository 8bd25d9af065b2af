package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── In-memory fakes ────────────────────────────────────────────────

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.GameSession
	// conflictOnce simulates a concurrent writer: the next UpdateVersioned
	// bumps the stored version out from under the caller and fails.
	conflictOnce bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.GameSession)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.Version = 1
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, id, userID uuid.UUID) (*model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) UpdateVersioned(_ context.Context, s *model.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.sessions[s.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if f.conflictOnce {
		f.conflictOnce = false
		stored.Version++
		return repository.ErrVersionConflict
	}
	if stored.Version != s.Version {
		return repository.ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = time.Now()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) TopScores(_ context.Context, count int, since time.Time) ([]model.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GameSession
	for _, s := range f.sessions {
		if s.Status != model.SessionStatusCompleted || s.StartTime.Before(since) {
			continue
		}
		out = append(out, *s)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

type fakeQuestionStore struct {
	questions []model.Question
}

func (f *fakeQuestionStore) ListByPool(_ context.Context, poolID string) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.PoolID == poolID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeDrawStore struct {
	mu    sync.Mutex
	draws map[uuid.UUID]*model.QuestionDraw
}

func newFakeDrawStore() *fakeDrawStore {
	return &fakeDrawStore{draws: make(map[uuid.UUID]*model.QuestionDraw)}
}

func (f *fakeDrawStore) Create(_ context.Context, d *model.QuestionDraw) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.CreatedAt = time.Now()
	f.draws[d.SessionID] = d
	return nil
}

func (f *fakeDrawStore) Get(_ context.Context, sessionID uuid.UUID) (*model.QuestionDraw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.draws[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

type fakeAnswerStore struct {
	mu      sync.Mutex
	records []model.AnswerRecord
}

func (f *fakeAnswerStore) Append(_ context.Context, a *model.AnswerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *a)
	return nil
}

func (f *fakeAnswerStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AnswerRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ─── Harness ────────────────────────────────────────────────────────

type harness struct {
	svc      *SessionService
	sessions *fakeSessionStore
	draws    *fakeDrawStore
	answers  *fakeAnswerStore
	rdb      *redis.Client
	mr       *miniredis.Miniredis
	game     config.GameConfig
}

func defaultGame() config.GameConfig {
	return config.GameConfig{
		DefaultPoolID:          "default",
		PointsPerCorrectAnswer: 10,
		StreakThreshold:        5,
		StreakDecrementOnWrong: 1,
		MaxAwardableStreaks:    4,
		BonusSeconds:           10,
		InitialSeconds:         60,
		MaxTotalSeconds:        120,
		MaxHearts:              5,
		MinHearts:              0,
		HeartDecrementOnWrong:  0.5,
	}
}

func questionsOf(n int) []model.Question {
	out := make([]model.Question, n)
	for i := range out {
		out[i] = model.Question{
			ID:                 uuid.New(),
			PoolID:             "default",
			QuestionText:       fmt.Sprintf("question %d", i),
			Answers:            []string{"a", "b", "c", "d"},
			CorrectAnswerIndex: i % 4,
		}
	}
	return out
}

func newHarness(t *testing.T, game config.GameConfig, questions []model.Question) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sessions := newFakeSessionStore()
	draws := newFakeDrawStore()
	answers := &fakeAnswerStore{}

	svc := NewSessionService(sessions, &fakeQuestionStore{questions: questions}, draws, answers, rdb, game)
	return &harness{svc: svc, sessions: sessions, draws: draws, answers: answers, rdb: rdb, mr: mr, game: game}
}

// submit answers the given draw question, correctly or not.
func (h *harness) submit(t *testing.T, sessionID, userID uuid.UUID, dq model.DrawQuestion, correct bool, elapsed float64) (*SubmitAnswerResult, error) {
	t.Helper()
	idx := dq.CorrectAnswerIndex
	if !correct {
		idx = (dq.CorrectAnswerIndex + 1) % len(dq.Choices)
	}
	return h.svc.SubmitAnswer(context.Background(), sessionID, userID, &model.SubmitAnswerRequest{
		QuestionID:  dq.QuestionID.String(),
		AnswerIndex: idx,
		TimeElapsed: elapsed,
	})
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStart_CreatesSessionAndDraw(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusActive, session.Status)
	assert.Equal(t, "default", session.PoolID)
	assert.Equal(t, 5.0, session.HeartsRemaining)
	assert.Equal(t, 60.0, session.TimeRemaining)
	assert.NotZero(t, session.Seed)

	d, err := h.draws.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, d.Questions, 10)
	assert.Equal(t, session.Seed, d.Seed)

	// Draw is cached for the questions endpoint.
	assert.True(t, h.mr.Exists(config.CacheKey.SessionDrawKey(session.ID.String())))
}

func TestStart_EmptyPool(t *testing.T) {
	h := newHarness(t, defaultGame(), nil)

	_, err := h.svc.Start(context.Background(), uuid.New(), "default")
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
}

func TestQuestions_SurvivesCacheLoss(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(5))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	h.mr.FlushAll()

	questions, err := h.svc.Questions(context.Background(), session.ID, userID)
	require.NoError(t, err)
	assert.Len(t, questions, 5)

	// Cache is refilled after the miss.
	assert.True(t, h.mr.Exists(config.CacheKey.SessionDrawKey(session.ID.String())))
}

func TestQuestions_WrongOwner(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(5))

	session, err := h.svc.Start(context.Background(), uuid.New(), "")
	require.NoError(t, err)

	_, err = h.svc.Questions(context.Background(), session.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitAnswer_CorrectScores(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	result, err := h.submit(t, session.ID, userID, d.Questions[0], true, 3)
	require.NoError(t, err)

	assert.True(t, result.IsCorrect)
	assert.Equal(t, 10, result.PointsEarned)
	assert.Equal(t, 10, result.TotalScore)
	assert.Equal(t, 1, result.QuestionsAnswered)
	assert.Equal(t, 1, result.StreakProgress)
	assert.Equal(t, 5.0, result.HeartsRemaining)
	assert.Equal(t, model.SessionStatusActive, result.SessionStatus)
}

func TestSubmitAnswer_WrongCostsHalfHeart(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	result, err := h.submit(t, session.ID, userID, d.Questions[0], false, 3)
	require.NoError(t, err)

	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.PointsEarned)
	assert.Equal(t, 4.5, result.HeartsRemaining)
	assert.Equal(t, model.SessionStatusActive, result.SessionStatus)
}

func TestSubmitAnswer_HeartsDepletedEndsSession(t *testing.T) {
	game := defaultGame()
	game.MaxHearts = 0.5
	h := newHarness(t, game, questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	result, err := h.submit(t, session.ID, userID, d.Questions[0], false, 3)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.HeartsRemaining)
	assert.Equal(t, model.SessionStatusCompleted, result.SessionStatus)
	require.NotNil(t, result.GameOverReason)
	assert.Equal(t, model.GameOverHeartsDepleted, *result.GameOverReason)

	// Terminal session rejects further answers.
	_, err = h.submit(t, session.ID, userID, d.Questions[1], true, 4)
	assert.ErrorIs(t, err, ErrSessionNotActive)
}

func TestSubmitAnswer_StreakTierAwardsBonusTime(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	var last *SubmitAnswerResult
	for i := 0; i < 5; i++ {
		last, err = h.submit(t, session.ID, userID, d.Questions[i], true, float64(i+1))
		require.NoError(t, err)
	}

	assert.True(t, last.TierCompleted)
	assert.Equal(t, 1, last.StreaksCompleted)
	assert.Equal(t, 0, last.StreakProgress)
	assert.Equal(t, 10.0, last.BonusAwarded)
	// 60 initial - 5 elapsed + 10 bonus.
	assert.Equal(t, 65.0, last.TimeRemaining)
	assert.Equal(t, 50, last.TotalScore)
}

func TestSubmitAnswer_TimeExpiredEndsSession(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	result, err := h.submit(t, session.ID, userID, d.Questions[0], true, 75)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.TimeRemaining)
	assert.Equal(t, model.SessionStatusCompleted, result.SessionStatus)
	require.NotNil(t, result.GameOverReason)
	assert.Equal(t, model.GameOverTimeExpired, *result.GameOverReason)
}

func TestSubmitAnswer_LastQuestionCompletesNaturally(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(1))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	result, err := h.submit(t, session.ID, userID, d.Questions[0], true, 5)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusCompleted, result.SessionStatus)
	assert.Nil(t, result.GameOverReason)
}

func TestSubmitAnswer_QuestionNotInDraw(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(5))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	_, err = h.svc.SubmitAnswer(context.Background(), session.ID, userID, &model.SubmitAnswerRequest{
		QuestionID:  uuid.NewString(),
		AnswerIndex: 0,
		TimeElapsed: 1,
	})
	assert.ErrorIs(t, err, ErrQuestionNotInDraw)
}

func TestSubmitAnswer_RetriesOnVersionConflict(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	// Next write loses the version race once; the retry must succeed and
	// the answer must be applied exactly once.
	h.sessions.conflictOnce = true

	result, err := h.submit(t, session.ID, userID, d.Questions[0], true, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, result.TotalScore)

	stored, err := h.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.TotalScore)
	assert.Equal(t, 1, stored.QuestionsAnswered)
}

func TestEnd_IsIdempotent(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	_, err = h.submit(t, session.ID, userID, d.Questions[0], true, 2)
	require.NoError(t, err)

	first, err := h.svc.End(context.Background(), session.ID, userID, &model.EndSessionRequest{FinalTimeRemaining: 40})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, first.Status)
	assert.Equal(t, 10, first.FinalScore)
	assert.Equal(t, 1.0, first.Accuracy)

	stored, _ := h.sessions.GetByID(context.Background(), session.ID)
	versionAfterEnd := stored.Version

	second, err := h.svc.End(context.Background(), session.ID, userID, &model.EndSessionRequest{FinalTimeRemaining: 0})
	require.NoError(t, err)
	assert.Equal(t, first.FinalScore, second.FinalScore)
	assert.Equal(t, first.EndTime, second.EndTime)
	assert.False(t, first.AlreadyEnded)
	assert.True(t, second.AlreadyEnded, "repeat end must be reported as such")

	stored, _ = h.sessions.GetByID(context.Background(), session.ID)
	assert.Equal(t, versionAfterEnd, stored.Version, "repeat end must not write")
}

func TestEnd_ClientReasonOnlyFillsGap(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	summary, err := h.svc.End(context.Background(), session.ID, userID, &model.EndSessionRequest{
		GameOverReason: model.GameOverTimeExpired,
	})
	require.NoError(t, err)
	require.NotNil(t, summary.GameOverReason)
	assert.Equal(t, model.GameOverTimeExpired, *summary.GameOverReason)
}

func TestEnd_PublishesLeaderboardUpdate(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	sub := h.rdb.Subscribe(context.Background(), config.CacheKey.LeaderboardChannel())
	defer sub.Close()
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	_, err = h.svc.End(context.Background(), session.ID, userID, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, session.ID.String())
}

func TestAbandon_StaysOffLeaderboard(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)

	summary, err := h.svc.Abandon(context.Background(), session.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusAbandoned, summary.Status)

	scores, err := h.svc.TopScores(context.Background(), 10, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestSubmitAnswer_QueuesAnswerRecord(t *testing.T) {
	h := newHarness(t, defaultGame(), questionsOf(10))
	userID := uuid.New()

	session, err := h.svc.Start(context.Background(), userID, "")
	require.NoError(t, err)
	d, _ := h.draws.Get(context.Background(), session.ID)

	_, err = h.submit(t, session.ID, userID, d.Questions[0], true, 2)
	require.NoError(t, err)

	items, err := h.rdb.LRange(context.Background(), config.WorkerKey.PersistAnswersQueue, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], d.Questions[0].QuestionID.String())
}
