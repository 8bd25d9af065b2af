package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
)

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/admin/questions?poolId=...
func (h *QuestionHandler) List(c *gin.Context) {
	questions, err := h.questionService.ListByPool(c.Request.Context(), c.Query("poolId"))
	if err != nil {
		failQuestionErr(c, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Create godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failQuestionErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failQuestionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "question deleted successfully"})
}

func failQuestionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPoolNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPoolNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case service.IsInvalidQuestion(err):
		response.FailMessage(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestion, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
