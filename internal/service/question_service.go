package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
)

// QuestionService handles question administration. The write path is strict
// so that every stored question is drawable: exactly four distinct non-empty
// answers and an in-range correct index.
type QuestionService struct {
	questions *repository.QuestionRepository
	pools     *repository.PoolRepository
	defaults  string
}

// NewQuestionService creates a new QuestionService. defaultPoolID is where
// questions land when the request names no pool.
func NewQuestionService(questions *repository.QuestionRepository, pools *repository.PoolRepository, defaultPoolID string) *QuestionService {
	return &QuestionService{questions: questions, pools: pools, defaults: defaultPoolID}
}

// ListByPool returns every question in a pool.
func (s *QuestionService) ListByPool(ctx context.Context, poolID string) ([]model.Question, error) {
	if poolID == "" {
		poolID = s.defaults
	}
	if _, err := s.pools.Get(ctx, poolID); err != nil {
		return nil, mapNoRows(err, ErrPoolNotFound)
	}
	return s.questions.ListByPool(ctx, poolID)
}

// Create validates and stores a new question.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	poolID := req.PoolID
	if poolID == "" {
		poolID = s.defaults
	}
	if _, err := s.pools.Get(ctx, poolID); err != nil {
		return nil, mapNoRows(err, ErrPoolNotFound)
	}

	if err := validateAnswers(req.Answers, req.CorrectAnswerIndex); err != nil {
		return nil, err
	}

	q := &model.Question{
		PoolID:             poolID,
		QuestionText:       strings.TrimSpace(req.QuestionText),
		Answers:            req.Answers,
		CorrectAnswerIndex: req.CorrectAnswerIndex,
		Category:           req.Category,
		Metadata:           req.Metadata,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		return mapNoRows(err, ErrQuestionNotFound)
	}
	return s.questions.Delete(ctx, id)
}

func validateAnswers(answers []string, correctIndex int) error {
	if len(answers) != model.AnswersPerQuestion {
		return fmt.Errorf("%w: expected %d answers", errInvalidQuestion, model.AnswersPerQuestion)
	}
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			return fmt.Errorf("%w: empty answer", errInvalidQuestion)
		}
		key := strings.ToLower(a)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate answer %q", errInvalidQuestion, a)
		}
		seen[key] = struct{}{}
	}
	if correctIndex < 0 || correctIndex >= len(answers) {
		return fmt.Errorf("%w: correct index %d out of range", errInvalidQuestion, correctIndex)
	}
	return nil
}

// errInvalidQuestion marks write-path validation failures that the binding
// layer cannot express (duplicates, whitespace-only answers).
var errInvalidQuestion = errors.New("invalid question")

// IsInvalidQuestion reports whether err is a question validation failure.
func IsInvalidQuestion(err error) bool {
	return errors.Is(err, errInvalidQuestion)
}
