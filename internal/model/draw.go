package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionDraw is the seeded, reproducible materialization of a question set
// for exactly one session. It is created once at session start and never
// mutated afterwards; the session ID doubles as the draw ID.
type QuestionDraw struct {
	SessionID uuid.UUID      `json:"sessionId"`
	UserID    uuid.UUID      `json:"userId"`
	Seed      int64          `json:"seed"`
	Questions []DrawQuestion `json:"questions"`
	CreatedAt time.Time      `json:"createdAt"`
}

// DrawQuestion is a question as it appears inside a draw: text and category
// denormalized from the source question, choices re-shuffled and the correct
// index remapped to the shuffled order.
type DrawQuestion struct {
	QuestionID         uuid.UUID         `json:"questionId"`
	QuestionText       string            `json:"questionText"`
	Category           string            `json:"category,omitempty"`
	Choices            []string          `json:"choices"`
	CorrectAnswerIndex int               `json:"correctAnswerIndex"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}
