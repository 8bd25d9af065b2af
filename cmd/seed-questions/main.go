package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/database"
	"github.com/stationgames/trivia-backend/internal/logger"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
	"github.com/stationgames/trivia-backend/internal/service"
)

// seedQuestion mirrors the JSON shape of a question bank export.
type seedQuestion struct {
	Question           string            `json:"question"`
	Answers            []string          `json:"answers"`
	CorrectAnswerIndex int               `json:"correctAnswerIndex"`
	Category           string            `json:"category"`
	Metadata           map[string]string `json:"metadata"`
}

func main() {
	var (
		filePath string
		poolID   string
		poolName string
	)
	flag.StringVar(&filePath, "file", "questions.json", "Path to the questions JSON file")
	flag.StringVar(&poolID, "pool", "default", "Pool slug to seed into")
	flag.StringVar(&poolName, "pool-name", "", "Pool display name (defaults to the slug)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	poolRepo := repository.NewPoolRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	questionService := service.NewQuestionService(questionRepo, poolRepo, cfg.Game.DefaultPoolID)

	// ─── Read Question File ────────────────────────────────────────────
	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read questions file")
	}

	var seeds []seedQuestion
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatal().Err(err).Msg("Invalid questions JSON")
	}
	if len(seeds) == 0 {
		log.Fatal().Msg("Questions file is empty")
	}

	// ─── Ensure Pool Exists ────────────────────────────────────────────
	if poolName == "" {
		poolName = poolID
	}
	if err := poolRepo.Upsert(ctx, &model.QuestionPool{
		ID:       poolID,
		Name:     poolName,
		IsActive: true,
	}); err != nil {
		log.Fatal().Err(err).Str("pool", poolID).Msg("Failed to upsert pool")
	}

	// ─── Insert Questions ──────────────────────────────────────────────
	inserted := 0
	for i, sq := range seeds {
		_, err := questionService.Create(ctx, &model.CreateQuestionRequest{
			PoolID:             poolID,
			QuestionText:       sq.Question,
			Answers:            sq.Answers,
			CorrectAnswerIndex: sq.CorrectAnswerIndex,
			Category:           sq.Category,
			Metadata:           sq.Metadata,
		})
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping invalid question")
			continue
		}
		inserted++
	}

	fmt.Printf("Seeded %d/%d questions into pool %q\n", inserted, len(seeds), poolID)
}
