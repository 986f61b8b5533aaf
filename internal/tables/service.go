// Package tables computes probability cells and whole tables for registered
// rulesets, optionally through a persistent cache.
package tables

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/report"
)

// ErrInvalidCell is returned for a negative pool size or a target below 1.
var ErrInvalidCell = errors.New("invalid probability cell")

// Store caches computed probabilities. Entries are keyed by the policy
// fingerprint as well as its ID so an edited ruleset never reads stale odds.
type Store interface {
	Lookup(ctx context.Context, rulesetID, fingerprint string, pool, target int) (float64, bool, error)
	Save(ctx context.Context, rulesetID, fingerprint string, pool, target int, probability float64) error
}

// Metrics receives enumeration and cache observations.
type Metrics interface {
	probability.Observer
	ObserveCacheLookup(hit bool)
}

// Option configures a Service.
type Option func(*Service)

// WithStore puts a read-through cache in front of the calculator.
func WithStore(st Store) Option {
	return func(s *Service) { s.store = st }
}

// WithMetrics attaches metrics collectors.
func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithWorkers bounds how many cells Grid computes concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Service answers cell and table queries against a ruleset registry.
//
// Service is safe for concurrent use.
type Service struct {
	registry *ruleset.Registry
	logger   *zap.Logger
	store    Store
	metrics  Metrics
	workers  int
}

// NewService creates a Service.
//
// Precondition: registry and logger must be non-nil.
func NewService(registry *ruleset.Registry, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{registry: registry, logger: logger, workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculator returns a calculator for the named ruleset.
//
// Postcondition: Returns a Calculator or an error wrapping ruleset.ErrUnknownRuleset.
func (s *Service) Calculator(rulesetID string) (*probability.Calculator, error) {
	p, err := s.registry.Get(rulesetID)
	if err != nil {
		return nil, err
	}
	var opts []probability.Option
	if s.metrics != nil {
		opts = append(opts, probability.WithObserver(s.metrics))
	}
	return probability.NewCalculator(p, s.logger, opts...), nil
}

// Cell returns the success probability of (pool, target) under rulesetID.
//
// Precondition: pool >= 1 and target >= 1.
// Postcondition: Returns a probability in [0, 1] or an error. Cache failures
// are logged and fall back to computing the value.
func (s *Service) Cell(ctx context.Context, rulesetID string, pool, target int) (float64, error) {
	if pool < 1 || target < 1 {
		return 0, fmt.Errorf("%w: pool=%d target=%d", ErrInvalidCell, pool, target)
	}
	calc, err := s.Calculator(rulesetID)
	if err != nil {
		return 0, err
	}
	return s.cell(ctx, calc, pool, target), nil
}

func (s *Service) cell(ctx context.Context, calc *probability.Calculator, pool, target int) float64 {
	if s.store == nil {
		return calc.SuccessProbability(pool, target)
	}
	p := calc.Policy()
	fp := p.Fingerprint()

	cached, ok, err := s.store.Lookup(ctx, p.ID, fp, pool, target)
	if err != nil {
		s.logger.Warn("cell cache lookup failed",
			zap.String("ruleset", p.ID), zap.Int("pool", pool), zap.Int("target", target), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(ok)
	}
	if ok {
		return cached
	}

	v := calc.SuccessProbability(pool, target)
	if err := s.store.Save(ctx, p.ID, fp, pool, target, v); err != nil {
		s.logger.Warn("cell cache save failed",
			zap.String("ruleset", p.ID), zap.Int("pool", pool), zap.Int("target", target), zap.Error(err))
	}
	return v
}

// Grid fills a maxPool by maxTarget table for rulesetID using a bounded
// worker pool. When progress is non-nil a "Computed cells: n/N" line is
// written after every cell.
//
// Postcondition: Returns the filled grid, a bounds error from report, an
// unknown ruleset error, or the context error on cancellation.
func (s *Service) Grid(ctx context.Context, rulesetID string, maxPool, maxTarget int, progress io.Writer) (*report.Grid, error) {
	grid, err := report.NewGrid(maxPool, maxTarget)
	if err != nil {
		return nil, err
	}
	calc, err := s.Calculator(rulesetID)
	if err != nil {
		return nil, err
	}

	total := maxPool * maxTarget
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for target := 1; target <= maxTarget; target++ {
		for pool := 1; pool <= maxPool; pool++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				grid.Set(pool, target, s.cell(gctx, calc, pool, target))
				if progress == nil {
					return nil
				}
				mu.Lock()
				defer mu.Unlock()
				done++
				_, err := fmt.Fprintf(progress, "Computed cells: %d/%d\n", done, total)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("table computed",
		zap.String("ruleset", rulesetID),
		zap.Int("max_pool", maxPool),
		zap.Int("max_target", maxTarget),
		zap.Int("workers", s.workers),
	)
	return grid, nil
}
