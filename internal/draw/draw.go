// Package draw builds the seeded, reproducible question draw for a session.
//
// Reproducibility contract: the same seed applied to the same question list
// always yields the same draw, bit for bit. Everything is driven by a single
// generator stream (the question shuffle first, then each question's choice
// shuffle in draw order), so the order of generator calls is part of the
// contract and must not change.
package draw

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/stationgames/trivia-backend/internal/model"
)

// ErrNoQuestions is returned when a draw is requested from an empty pool.
var ErrNoQuestions = errors.New("no questions available")

// NewSeed allocates a random draw seed. The package-level source is only used
// here; shuffling always goes through the per-draw generator in New.
func NewSeed() int64 {
	return rand.Int63n(1 << 31)
}

// New creates the draw for a session: a seeded shuffle of the question list,
// with each question's answer choices re-shuffled from the same generator
// stream and the correct index remapped.
func New(seed int64, sessionID, userID uuid.UUID, questions []model.Question) (*model.QuestionDraw, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i := range questions {
		if len(questions[i].Answers) != model.AnswersPerQuestion {
			return nil, fmt.Errorf("question %s has %d answers, want %d",
				questions[i].ID, len(questions[i].Answers), model.AnswersPerQuestion)
		}
	}

	rng := rand.New(rand.NewSource(seed))

	order := make([]int, len(questions))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	drawQuestions := make([]model.DrawQuestion, 0, len(questions))
	for _, qi := range order {
		q := questions[qi]

		// Shuffle choice positions, not texts, so the correct index can be
		// remapped even if two choices carry identical text.
		perm := make([]int, model.AnswersPerQuestion)
		for i := range perm {
			perm[i] = i
		}
		rng.Shuffle(len(perm), func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})

		choices := make([]string, model.AnswersPerQuestion)
		correctIndex := 0
		for pos, src := range perm {
			choices[pos] = q.Answers[src]
			if src == q.CorrectAnswerIndex {
				correctIndex = pos
			}
		}

		drawQuestions = append(drawQuestions, model.DrawQuestion{
			QuestionID:         q.ID,
			QuestionText:       q.QuestionText,
			Category:           q.Category,
			Choices:            choices,
			CorrectAnswerIndex: correctIndex,
			Metadata:           q.Metadata,
		})
	}

	return &model.QuestionDraw{
		SessionID: sessionID,
		UserID:    userID,
		Seed:      seed,
		Questions: drawQuestions,
		CreatedAt: time.Now().UTC(),
	}, nil
}
