package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
)

type PoolHandler struct {
	poolService *service.PoolService
}

func NewPoolHandler(poolService *service.PoolService) *PoolHandler {
	return &PoolHandler{poolService: poolService}
}

// List godoc
// GET /api/v1/pools
func (h *PoolHandler) List(c *gin.Context) {
	pools, err := h.poolService.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if pools == nil {
		pools = []model.QuestionPool{}
	}
	response.Success(c, http.StatusOK, gin.H{"pools": pools})
}

// Save godoc
// POST /api/v1/admin/pools
func (h *PoolHandler) Save(c *gin.Context) {
	var req model.CreatePoolRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pool, err := h.poolService.Save(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"pool": pool})
}

// Delete godoc
// DELETE /api/v1/admin/pools/:pool_id
func (h *PoolHandler) Delete(c *gin.Context) {
	id := c.Param("pool_id")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.poolService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPoolNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrPoolNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "pool deleted successfully"})
}
