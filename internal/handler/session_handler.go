package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start godoc
// POST /api/v1/sessions/start
func (h *SessionHandler) Start(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), userID, req.PoolID)
	if err != nil {
		failSessionErr(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"sessionId":       session.ID,
		"userId":          session.UserID,
		"poolId":          session.PoolID,
		"seed":            session.Seed,
		"status":          session.Status,
		"startTime":       session.StartTime,
		"heartsRemaining": session.HeartsRemaining,
		"timeRemaining":   session.TimeRemaining,
		"questionsUrl":    fmt.Sprintf("/api/v1/sessions/%s/questions", session.ID),
	})
}

// Get godoc
// GET /api/v1/sessions/:session_id?userId=...
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Questions godoc
// GET /api/v1/sessions/:session_id/questions?userId=...
func (h *SessionHandler) Questions(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	questions, err := h.sessionService.Questions(c.Request.Context(), sessionID, userID)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:session_id/answers?userId=...
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, userID, &req)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// End godoc
// POST /api/v1/sessions/:session_id/end?userId=...
func (h *SessionHandler) End(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	var req model.EndSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.sessionService.End(c.Request.Context(), sessionID, userID, &req)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Abandon godoc
// POST /api/v1/sessions/:session_id/abandon?userId=...
func (h *SessionHandler) Abandon(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	summary, err := h.sessionService.Abandon(c.Request.Context(), sessionID, userID)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Answers godoc
// GET /api/v1/sessions/:session_id/answers?userId=...
func (h *SessionHandler) Answers(c *gin.Context) {
	sessionID, userID, ok := sessionScope(c)
	if !ok {
		return
	}

	answers, err := h.sessionService.Answers(c.Request.Context(), sessionID, userID)
	if err != nil {
		failSessionErr(c, err)
		return
	}
	if answers == nil {
		answers = []model.AnswerRecord{}
	}
	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}

// TopScores godoc
// GET /api/v1/leaderboard/top?count=10&days=7
func (h *SessionHandler) TopScores(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 1 || count > 100 {
		count = 10
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		days = 0
	}

	var since time.Time
	if days > 0 {
		since = time.Now().UTC().AddDate(0, 0, -days)
	}

	sessions, err := h.sessionService.TopScores(c.Request.Context(), count, since)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if sessions == nil {
		sessions = []model.GameSession{}
	}
	response.Success(c, http.StatusOK, gin.H{"scores": sessions})
}

// sessionScope parses the session ID path param and the owning user ID from
// the query string. On failure it writes the error response itself.
func sessionScope(c *gin.Context) (sessionID, userID uuid.UUID, ok bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(c.Query("userId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, userID, true
}

// failSessionErr maps service sentinels onto HTTP statuses and error codes.
func failSessionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrQuestionNotInDraw):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrQuestionNotInDraw)
	case errors.Is(err, service.ErrInvalidAnswerIndex):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidAnswerIndex)
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrConcurrentUpdate):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrPoolNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPoolNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
