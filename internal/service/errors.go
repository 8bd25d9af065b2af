package service

import "errors"

// Sentinel errors returned by services. Handlers map these onto response
// error codes with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPoolNotFound         = errors.New("question pool not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionNotInDraw    = errors.New("question is not part of this session's draw")
	ErrInvalidAnswerIndex   = errors.New("answer index out of range")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrConcurrentUpdate     = errors.New("session updated concurrently")
)
