package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── In-memory stores ───────────────────────────────────────────────

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.GameSession
}

func (m *memSessionStore) Create(_ context.Context, s *model.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.Version = 1
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id, userID uuid.UUID) (*model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) UpdateVersioned(_ context.Context, s *model.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[s.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != s.Version {
		return repository.ErrVersionConflict
	}
	s.Version++
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionStore) TopScores(_ context.Context, count int, since time.Time) ([]model.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.GameSession
	for _, s := range m.sessions {
		if s.Status == model.SessionStatusCompleted && !s.StartTime.Before(since) {
			out = append(out, *s)
		}
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

type memQuestionStore struct{ questions []model.Question }

func (m *memQuestionStore) ListByPool(_ context.Context, poolID string) ([]model.Question, error) {
	var out []model.Question
	for _, q := range m.questions {
		if q.PoolID == poolID {
			out = append(out, q)
		}
	}
	return out, nil
}

type memDrawStore struct {
	mu    sync.Mutex
	draws map[uuid.UUID]*model.QuestionDraw
}

func (m *memDrawStore) Create(_ context.Context, d *model.QuestionDraw) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws[d.SessionID] = d
	return nil
}

func (m *memDrawStore) Get(_ context.Context, sessionID uuid.UUID) (*model.QuestionDraw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.draws[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

type memAnswerStore struct {
	mu      sync.Mutex
	records []model.AnswerRecord
}

func (m *memAnswerStore) Append(_ context.Context, a *model.AnswerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *a)
	return nil
}

func (m *memAnswerStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AnswerRecord
	for _, r := range m.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ─── Harness ────────────────────────────────────────────────────────

type httpHarness struct {
	router *gin.Engine
	draws  *memDrawStore
}

func newHTTPHarness(t *testing.T, questions []model.Question) *httpHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	game := config.GameConfig{
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

	draws := &memDrawStore{draws: make(map[uuid.UUID]*model.QuestionDraw)}
	svc := service.NewSessionService(
		&memSessionStore{sessions: make(map[uuid.UUID]*model.GameSession)},
		&memQuestionStore{questions: questions},
		draws,
		&memAnswerStore{},
		rdb,
		game,
	)

	h := NewSessionHandler(svc)
	r := gin.New()
	r.POST("/api/v1/sessions/start", h.Start)
	r.GET("/api/v1/sessions/:session_id", h.Get)
	r.GET("/api/v1/sessions/:session_id/questions", h.Questions)
	r.POST("/api/v1/sessions/:session_id/answers", h.SubmitAnswer)
	r.POST("/api/v1/sessions/:session_id/end", h.End)
	r.GET("/api/v1/leaderboard/top", h.TopScores)

	return &httpHarness{router: r, draws: draws}
}

func (h *httpHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func trivia(n int) []model.Question {
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

// startSession starts a session over HTTP and returns its ID with the draw.
func (h *httpHarness) startSession(t *testing.T, userID uuid.UUID) (uuid.UUID, *model.QuestionDraw) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/sessions/start", gin.H{"userId": userID.String()})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data struct {
			SessionID uuid.UUID `json:"sessionId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	d, err := h.draws.Get(context.Background(), env.Data.SessionID)
	require.NoError(t, err)
	return env.Data.SessionID, d
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestSessionHandler_StartValidation(t *testing.T) {
	h := newHTTPHarness(t, trivia(4))

	t.Run("missing userId", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/api/v1/sessions/start", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("valid start", func(t *testing.T) {
		w := h.do(t, http.MethodPost, "/api/v1/sessions/start", gin.H{"userId": uuid.NewString()})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"active"`)
		assert.Contains(t, w.Body.String(), "questionsUrl")
	})
}

func TestSessionHandler_StartEmptyPool(t *testing.T) {
	h := newHTTPHarness(t, nil)

	w := h.do(t, http.MethodPost, "/api/v1/sessions/start", gin.H{"userId": uuid.NewString()})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_QUESTIONS_AVAILABLE")
}

func TestSessionHandler_ScopeErrors(t *testing.T) {
	h := newHTTPHarness(t, trivia(4))

	t.Run("malformed session id", func(t *testing.T) {
		w := h.do(t, http.MethodGet, "/api/v1/sessions/not-a-uuid?userId="+uuid.NewString(), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_ID")
	})

	t.Run("missing userId query", func(t *testing.T) {
		w := h.do(t, http.MethodGet, "/api/v1/sessions/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_ID")
	})

	t.Run("unknown session", func(t *testing.T) {
		w := h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s?userId=%s", uuid.NewString(), uuid.NewString()), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
	})
}

func TestSessionHandler_SubmitAnswerMapping(t *testing.T) {
	h := newHTTPHarness(t, trivia(4))
	userID := uuid.New()
	sessionID, d := h.startSession(t, userID)
	answersPath := fmt.Sprintf("/api/v1/sessions/%s/answers?userId=%s", sessionID, userID)

	t.Run("answer index out of range", func(t *testing.T) {
		w := h.do(t, http.MethodPost, answersPath, gin.H{
			"questionId": d.Questions[0].QuestionID, "answerIndex": 9, "timeElapsed": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("question not in draw", func(t *testing.T) {
		w := h.do(t, http.MethodPost, answersPath, gin.H{
			"questionId": uuid.NewString(), "answerIndex": 0, "timeElapsed": 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "QUESTION_NOT_IN_DRAW")
	})

	t.Run("correct answer scores", func(t *testing.T) {
		w := h.do(t, http.MethodPost, answersPath, gin.H{
			"questionId":  d.Questions[0].QuestionID,
			"answerIndex": d.Questions[0].CorrectAnswerIndex,
			"timeElapsed": 2,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"pointsEarned":10`)
	})
}

func TestSessionHandler_SubmitAfterEndConflicts(t *testing.T) {
	h := newHTTPHarness(t, trivia(4))
	userID := uuid.New()
	sessionID, d := h.startSession(t, userID)

	w := h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/end?userId=%s", sessionID, userID), gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/answers?userId=%s", sessionID, userID), gin.H{
		"questionId": d.Questions[0].QuestionID, "answerIndex": 0, "timeElapsed": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_ACTIVE")
}

func TestSessionHandler_Leaderboard(t *testing.T) {
	h := newHTTPHarness(t, trivia(4))
	userID := uuid.New()
	sessionID, d := h.startSession(t, userID)

	w := h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/answers?userId=%s", sessionID, userID), gin.H{
		"questionId":  d.Questions[0].QuestionID,
		"answerIndex": d.Questions[0].CorrectAnswerIndex,
		"timeElapsed": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/end?userId=%s", sessionID, userID), gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/leaderboard/top?count=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sessionID.String())
}
