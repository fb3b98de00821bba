package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/swarmspawn/internal/spawn"
)

// CycleRecord is a stored spawn cycle summary.
type CycleRecord struct {
	ID         int64
	StartedAt  time.Time
	Stage      string
	Budget     int
	Placed     int
	Swarms     int
	Attempts   int
	Penalty    int
	StopReason string
}

// CycleRepository stores spawn cycle summaries.
type CycleRepository struct {
	pool *pgxpool.Pool
}

// NewCycleRepository creates a new cycle repository.
func NewCycleRepository(pool *pgxpool.Pool) *CycleRepository {
	return &CycleRepository{pool: pool}
}

// Insert stores a cycle report and returns its ID.
func (r *CycleRepository) Insert(ctx context.Context, rep spawn.CycleReport) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO spawn_cycles (started_at, stage, budget, placed, swarms, attempts, penalty, stop_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		rep.StartedAt, string(rep.Stage), rep.Budget, rep.Placed, len(rep.Swarms),
		rep.Attempts, rep.Penalty, string(rep.StopReason),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting spawn cycle: %w", err)
	}
	return id, nil
}

// Recent returns up to limit most recent cycles, newest first.
func (r *CycleRepository) Recent(ctx context.Context, limit int) ([]CycleRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, stage, budget, placed, swarms, attempts, penalty, stop_reason
		FROM spawn_cycles
		ORDER BY started_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent spawn cycles: %w", err)
	}
	defer rows.Close()

	records := make([]CycleRecord, 0, limit)
	for rows.Next() {
		var c CycleRecord
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.Stage, &c.Budget, &c.Placed,
			&c.Swarms, &c.Attempts, &c.Penalty, &c.StopReason); err != nil {
			return nil, fmt.Errorf("scanning spawn cycle row: %w", err)
		}
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn cycle rows: %w", err)
	}

	return records, nil
}

// LastPenalty returns the penalty recorded by the most recent cycle.
// Returns 0 if no cycle was stored yet.
func (r *CycleRepository) LastPenalty(ctx context.Context) (int, error) {
	var penalty int
	err := r.pool.QueryRow(ctx, `
		SELECT penalty FROM spawn_cycles
		ORDER BY started_at DESC, id DESC
		LIMIT 1`).Scan(&penalty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("loading last penalty: %w", err)
	}
	return penalty, nil
}
