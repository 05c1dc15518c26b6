package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/repository"
)

// Ensure pgSetRepo implements repository.SetRepository.
var _ repository.SetRepository = (*pgSetRepo)(nil)

type pgSetRepo struct {
	pool *pgxpool.Pool
}

// NewSetRepository creates a PostgreSQL-backed set repository.
func NewSetRepository(pool *pgxpool.Pool) repository.SetRepository {
	return &pgSetRepo{pool: pool}
}

func (r *pgSetRepo) GetByID(ctx context.Context, id int) (*domain.MtgSet, error) {
	query := `SELECT id, code, created_at FROM sets WHERE id = $1`

	set := &domain.MtgSet{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&set.ID, &set.Code, &set.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSetNotFound
		}
		return nil, fmt.Errorf("postgres: get set by id: %w", err)
	}
	return set, nil
}

func (r *pgSetRepo) List(ctx context.Context) ([]*domain.MtgSet, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, created_at FROM sets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sets: %w", err)
	}
	defer rows.Close()

	var sets []*domain.MtgSet
	for rows.Next() {
		set := &domain.MtgSet{}
		if err := rows.Scan(&set.ID, &set.Code, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (r *pgSetRepo) Save(ctx context.Context, set *domain.MtgSet) (*domain.MtgSet, error) {
	query := `INSERT INTO sets (code, created_at) VALUES ($1, $2) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, set.Code, time.Now().UTC()).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: insert set: %w", err)
	}
	return set, nil
}

func (r *pgSetRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSetNotFound
	}
	return nil
}
