package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCellNotFound is returned when no probability has been cached for a cell.
var ErrCellNotFound = errors.New("probability cell not found")

// Cell is one cached success probability.
type Cell struct {
	RulesetID   string
	Fingerprint string
	Pool        int
	Target      int
	Probability float64
	RunID       uuid.UUID
	ComputedAt  time.Time
}

// CellRepository persists probability cells keyed by ruleset, face-rule
// fingerprint, pool size and target.
type CellRepository struct {
	db *pgxpool.Pool
}

// NewCellRepository creates a CellRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCellRepository(db *pgxpool.Pool) *CellRepository {
	return &CellRepository{db: db}
}

// Get retrieves a cached cell.
//
// Postcondition: Returns the Cell or ErrCellNotFound.
func (r *CellRepository) Get(ctx context.Context, rulesetID, fingerprint string, pool, target int) (Cell, error) {
	var c Cell
	err := r.db.QueryRow(ctx,
		`SELECT ruleset_id, fingerprint, pool_size, target, probability, run_id, computed_at
		 FROM probability_cells
		 WHERE ruleset_id = $1 AND fingerprint = $2 AND pool_size = $3 AND target = $4`,
		rulesetID, fingerprint, pool, target,
	).Scan(&c.RulesetID, &c.Fingerprint, &c.Pool, &c.Target, &c.Probability, &c.RunID, &c.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cell{}, ErrCellNotFound
		}
		return Cell{}, fmt.Errorf("querying probability cell: %w", err)
	}
	return c, nil
}

// Put inserts or replaces a cell. A zero RunID is replaced with a fresh one.
//
// Precondition: c.Pool >= 1, c.Target >= 1, 0 <= c.Probability <= 1.
// Postcondition: Returns the stored Cell with RunID and ComputedAt set.
func (r *CellRepository) Put(ctx context.Context, c Cell) (Cell, error) {
	if c.RunID == uuid.Nil {
		c.RunID = uuid.New()
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO probability_cells (ruleset_id, fingerprint, pool_size, target, probability, run_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (ruleset_id, fingerprint, pool_size, target)
		 DO UPDATE SET probability = EXCLUDED.probability,
		               run_id = EXCLUDED.run_id,
		               computed_at = NOW()
		 RETURNING computed_at`,
		c.RulesetID, c.Fingerprint, c.Pool, c.Target, c.Probability, c.RunID,
	).Scan(&c.ComputedAt)
	if err != nil {
		return Cell{}, fmt.Errorf("upserting probability cell: %w", err)
	}
	return c, nil
}

// DeleteRuleset removes every cell cached for rulesetID.
//
// Postcondition: Returns the number of rows removed.
func (r *CellRepository) DeleteRuleset(ctx context.Context, rulesetID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM probability_cells WHERE ruleset_id = $1`, rulesetID)
	if err != nil {
		return 0, fmt.Errorf("deleting probability cells: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Lookup reports the cached probability of a cell, if any.
func (r *CellRepository) Lookup(ctx context.Context, rulesetID, fingerprint string, pool, target int) (float64, bool, error) {
	c, err := r.Get(ctx, rulesetID, fingerprint, pool, target)
	if errors.Is(err, ErrCellNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c.Probability, true, nil
}

// Save caches probability for a cell under a fresh run ID.
func (r *CellRepository) Save(ctx context.Context, rulesetID, fingerprint string, pool, target int, probability float64) error {
	_, err := r.Put(ctx, Cell{
		RulesetID:   rulesetID,
		Fingerprint: fingerprint,
		Pool:        pool,
		Target:      target,
		Probability: probability,
	})
	return err
}
