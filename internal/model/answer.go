package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is an immutable log entry for one submitted answer.
// Records are appended (batched through the answer-log worker) and never
// mutated or deleted.
type AnswerRecord struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	SessionID    uuid.UUID `json:"sessionId"`
	QuestionID   uuid.UUID `json:"questionId"`
	AnswerIndex  int       `json:"answerIndex"`
	IsCorrect    bool      `json:"isCorrect"`
	PointsEarned int       `json:"pointsEarned"`
	TimeElapsed  float64   `json:"timeElapsed"`
	CreatedAt    time.Time `json:"timestamp"`
}
