package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TelemetryEvent is an arbitrary client-reported event (answer timings,
// navigation, debug flags). Events are accepted fire-and-forget and persisted
// by the telemetry worker; nothing in the scoring path reads them.
type TelemetryEvent struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"userId,omitempty"`
	SessionID  *uuid.UUID      `json:"sessionId,omitempty"`
	EventType  string          `json:"eventType"`
	Properties json.RawMessage `json:"properties,omitempty"`
	ClientTime *time.Time      `json:"clientTimestamp,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TrackTelemetryRequest is a batch of client events.
type TrackTelemetryRequest struct {
	Events []TelemetryEventInput `json:"events" binding:"required,min=1,max=100,dive"`
}

// TelemetryEventInput is one event as submitted by the client.
type TelemetryEventInput struct {
	UserID     string          `json:"userId" binding:"omitempty,uuid"`
	SessionID  string          `json:"sessionId" binding:"omitempty,uuid"`
	EventType  string          `json:"eventType" binding:"required,min=1,max=100"`
	Properties json.RawMessage `json:"properties" binding:"omitempty"`
	ClientTime *time.Time      `json:"clientTimestamp" binding:"omitempty"`
}
