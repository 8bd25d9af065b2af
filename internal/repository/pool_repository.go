package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stationgames/trivia-backend/internal/model"
)

// PoolRepository handles question pool data access.
type PoolRepository struct {
	pool *pgxpool.Pool
}

// NewPoolRepository creates a new PoolRepository.
func NewPoolRepository(pool *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{pool: pool}
}

// Get retrieves a single pool by its slug.
func (r *PoolRepository) Get(ctx context.Context, id string) (*model.QuestionPool, error) {
	p := &model.QuestionPool{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, icon_path, is_active, display_order
		 FROM question_pools
		 WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.IconPath, &p.IsActive, &p.DisplayOrder)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListActive returns all active pools ordered for display.
func (r *PoolRepository) ListActive(ctx context.Context) ([]model.QuestionPool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, icon_path, is_active, display_order
		 FROM question_pools
		 WHERE is_active
		 ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := []model.QuestionPool{}
	for rows.Next() {
		var p model.QuestionPool
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IconPath, &p.IsActive, &p.DisplayOrder); err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// Upsert creates a pool or updates its presentation fields.
func (r *PoolRepository) Upsert(ctx context.Context, p *model.QuestionPool) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO question_pools (id, name, description, icon_path, is_active, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   description = EXCLUDED.description,
		   icon_path = EXCLUDED.icon_path,
		   is_active = EXCLUDED.is_active,
		   display_order = EXCLUDED.display_order`,
		p.ID, p.Name, p.Description, p.IconPath, p.IsActive, p.DisplayOrder)
	return err
}

// Delete removes a pool. Questions in the pool are removed by cascade.
func (r *PoolRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM question_pools WHERE id = $1`, id)
	return err
}
