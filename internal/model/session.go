package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates game session states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// IsTerminal reports whether no further mutation of the session is permitted.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

// Game-over reason codes stored on the session when it ends early.
const (
	GameOverHeartsDepleted = "hearts.depleted"
	GameOverTimeExpired    = "time.expired"
)

// GameSession is the mutable core entity of a play-through. All mutation goes
// through the session service; Version backs the optimistic-concurrency check
// on every write.
type GameSession struct {
	ID                uuid.UUID     `json:"sessionId"`
	UserID            uuid.UUID     `json:"userId"`
	PoolID            string        `json:"poolId"`
	Seed              int64         `json:"seed"`
	Status            SessionStatus `json:"status"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           *time.Time    `json:"endTime,omitempty"`
	TotalScore        int           `json:"totalScore"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	CorrectAnswers    int           `json:"correctAnswers"`
	StreaksCompleted  int           `json:"streaksCompleted"`
	StreakProgress    int           `json:"streakProgress"`
	HeartsRemaining   float64       `json:"heartsRemaining"`
	BonusSeconds      float64       `json:"bonusSeconds"`
	TimeRemaining     float64       `json:"timeRemaining"`
	GameOverReason    *string       `json:"gameOverReason,omitempty"`
	Version           int           `json:"-"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// StartSessionRequest is the payload for starting a new game session.
type StartSessionRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
	PoolID string `json:"poolId" binding:"omitempty,max=64"`
}

// SubmitAnswerRequest is the payload for answering one draw question.
// IsCorrect is the client's own verdict; it is recorded for telemetry but the
// server recomputes correctness from the draw and scores from that.
type SubmitAnswerRequest struct {
	QuestionID  string  `json:"questionId" binding:"required,uuid"`
	AnswerIndex int     `json:"answerIndex" binding:"min=0,max=3"`
	TimeElapsed float64 `json:"timeElapsed" binding:"min=0"`
	IsCorrect   *bool   `json:"isCorrect" binding:"omitempty"`
}

// EndSessionRequest carries the client's view of the final state. The server
// freezes its own tracked stats; the client values are logged, and the
// gameOverReason is taken over only when the server has none of its own.
type EndSessionRequest struct {
	QuestionsAnswered  int     `json:"questionsAnswered" binding:"min=0"`
	CorrectAnswers     int     `json:"correctAnswers" binding:"min=0"`
	StreaksCompleted   int     `json:"streaksCompleted" binding:"min=0"`
	FinalTimeRemaining float64 `json:"finalTimeRemaining" binding:"min=0"`
	HeartsRemaining    float64 `json:"heartsRemaining" binding:"min=0"`
	GameOverReason     string  `json:"gameOverReason" binding:"omitempty,max=64"`
}
