package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrUserNotFound ErrCode = "USER_NOT_FOUND"
	ErrPoolNotFound ErrCode = "POOL_NOT_FOUND"
	ErrConflict     ErrCode = "CONFLICT"

	// ─── Game-specific ─────────────────────────────────────────────────
	ErrSessionNotFound    ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotActive   ErrCode = "SESSION_NOT_ACTIVE"
	ErrQuestionNotFound   ErrCode = "QUESTION_NOT_FOUND"
	ErrQuestionNotInDraw  ErrCode = "QUESTION_NOT_IN_DRAW"
	ErrInvalidAnswerIndex ErrCode = "INVALID_ANSWER_INDEX"
	ErrNoQuestions        ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrInvalidQuestion    ErrCode = "INVALID_QUESTION"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

var errMessages = map[ErrCode]string{
	ErrInvalidCredentials: "Invalid credentials",
	ErrTokenRequired:      "Authorization token is required",
	ErrTokenInvalid:       "Authorization token is invalid",
	ErrTokenExpired:       "Authorization token has expired",

	ErrValidation:     "Request validation failed",
	ErrInvalidID:      "Invalid identifier",
	ErrInvalidPayload: "Invalid request payload",

	ErrNotFound:     "Resource not found",
	ErrUserNotFound: "User not found",
	ErrPoolNotFound: "Question pool not found",
	ErrConflict:     "The session was updated concurrently, please retry",

	ErrSessionNotFound:    "Game session not found",
	ErrSessionNotActive:   "Game session is no longer active",
	ErrQuestionNotFound:   "Question not found",
	ErrQuestionNotInDraw:  "Question is not part of this session",
	ErrInvalidAnswerIndex: "Answer index is out of range",
	ErrNoQuestions:        "No questions available in this pool",
	ErrInvalidQuestion:    "Question payload is invalid",

	ErrRateLimitExceeded: "Too many requests, slow down",

	ErrInternal: "Something went wrong on our side",
}

// GetMessage returns the human-readable message for an error code.
func GetMessage(code ErrCode) string {
	if msg, ok := errMessages[code]; ok {
		return msg
	}
	return errMessages[ErrInternal]
}
