package service

import (
	"context"
	"fmt"

	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
)

// PoolService handles question pool listing and administration.
type PoolService struct {
	pools *repository.PoolRepository
}

// NewPoolService creates a new PoolService.
func NewPoolService(pools *repository.PoolRepository) *PoolService {
	return &PoolService{pools: pools}
}

// ListActive returns the pools shown to players.
func (s *PoolService) ListActive(ctx context.Context) ([]model.QuestionPool, error) {
	return s.pools.ListActive(ctx)
}

// Get retrieves one pool by slug.
func (s *PoolService) Get(ctx context.Context, id string) (*model.QuestionPool, error) {
	p, err := s.pools.Get(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, ErrPoolNotFound)
	}
	return p, nil
}

// Save creates or updates a pool.
func (s *PoolService) Save(ctx context.Context, req *model.CreatePoolRequest) (*model.QuestionPool, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p := &model.QuestionPool{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		IconPath:     req.IconPath,
		IsActive:     active,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.pools.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert pool: %w", err)
	}
	return p, nil
}

// Delete removes a pool and, by cascade, its questions.
func (s *PoolService) Delete(ctx context.Context, id string) error {
	if _, err := s.pools.Get(ctx, id); err != nil {
		return mapNoRows(err, ErrPoolNotFound)
	}
	return s.pools.Delete(ctx, id)
}
