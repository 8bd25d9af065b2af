package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswersPerQuestion is the fixed number of answer choices every trivia
// question carries. The pool write path enforces it; draws assume it.
const AnswersPerQuestion = 4

// Question represents a single trivia question in a pool.
type Question struct {
	ID                 uuid.UUID         `json:"id"`
	PoolID             string            `json:"poolId"`
	QuestionText       string            `json:"question"`
	Answers            []string          `json:"answers"`
	CorrectAnswerIndex int               `json:"correctAnswerIndex"`
	Category           string            `json:"category,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// CreateQuestionRequest is the payload for adding a question to a pool.
type CreateQuestionRequest struct {
	PoolID             string            `json:"poolId" binding:"omitempty,max=64"`
	QuestionText       string            `json:"question" binding:"required,min=1,max=2000"`
	Answers            []string          `json:"answers" binding:"required,len=4,dive,required,max=500"`
	CorrectAnswerIndex int               `json:"correctAnswerIndex" binding:"min=0,max=3"`
	Category           string            `json:"category" binding:"omitempty,max=100"`
	Metadata           map[string]string `json:"metadata" binding:"omitempty"`
}
