package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/swarmspawn/internal/world"
)

// UnreachableRepository stores cells where spawned units could not reach
// a navigable surface.
type UnreachableRepository struct {
	pool *pgxpool.Pool
}

// NewUnreachableRepository creates a new unreachable cell repository.
func NewUnreachableRepository(pool *pgxpool.Pool) *UnreachableRepository {
	return &UnreachableRepository{pool: pool}
}

// LoadAll loads every known unreachable cell.
func (r *UnreachableRepository) LoadAll(ctx context.Context) ([]world.Cell, error) {
	rows, err := r.pool.Query(ctx, `SELECT x, z FROM unreachable_cells ORDER BY x, z`)
	if err != nil {
		return nil, fmt.Errorf("loading unreachable cells: %w", err)
	}
	defer rows.Close()

	cells := make([]world.Cell, 0, 64)
	for rows.Next() {
		var c world.Cell
		if err := rows.Scan(&c.X, &c.Z); err != nil {
			return nil, fmt.Errorf("scanning unreachable cell row: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unreachable cell rows: %w", err)
	}

	return cells, nil
}

// UnreachableCell is a cell marked unreachable at a given time.
type UnreachableCell struct {
	Cell         world.Cell
	DiscoveredAt time.Time
}

// InsertBatch stores cells. Already known cells keep their original
// discovery time.
func (r *UnreachableRepository) InsertBatch(ctx context.Context, cells []UnreachableCell) error {
	if len(cells) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range cells {
		batch.Queue(`
			INSERT INTO unreachable_cells (x, z, discovered_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (x, z) DO NOTHING`,
			c.Cell.X, c.Cell.Z, c.DiscoveredAt)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting %d unreachable cells: %w", len(cells), err)
	}
	return nil
}

// Count returns the number of stored cells.
func (r *UnreachableRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM unreachable_cells`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting unreachable cells: %w", err)
	}
	return n, nil
}
