package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
)

type TelemetryHandler struct {
	telemetryService *service.TelemetryService
}

func NewTelemetryHandler(telemetryService *service.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetryService: telemetryService}
}

// Track godoc
// POST /api/v1/telemetry/track
func (h *TelemetryHandler) Track(c *gin.Context) {
	var req model.TrackTelemetryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	accepted := h.telemetryService.Track(c.Request.Context(), &req)
	response.Success(c, http.StatusAccepted, gin.H{"accepted": accepted})
}
