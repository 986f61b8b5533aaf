package tables_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/observability"
	"github.com/cory-johannsen/risus/internal/report"
	"github.com/cory-johannsen/risus/internal/tables"
)

type memStore struct {
	mu      sync.Mutex
	cells   map[string]float64
	failGet error
	failPut error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{cells: make(map[string]float64)}
}

func key(id, fp string, pool, target int) string {
	return fmt.Sprintf("%s|%s|%d|%d", id, fp, pool, target)
}

func (m *memStore) Lookup(_ context.Context, id, fp string, pool, target int) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return 0, false, m.failGet
	}
	v, ok := m.cells[key(id, fp, pool, target)]
	return v, ok, nil
}

func (m *memStore) Save(_ context.Context, id, fp string, pool, target int, p float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	m.saves++
	m.cells[key(id, fp, pool, target)] = p
	return nil
}

func TestCell_ComputesWithoutStore(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zaptest.NewLogger(t))
	p, err := svc.Cell(context.Background(), ruleset.EvensID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)
}

func TestCell_UnknownRuleset(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop())
	_, err := svc.Cell(context.Background(), "nope", 1, 1)
	assert.ErrorIs(t, err, ruleset.ErrUnknownRuleset)
}

func TestCell_RejectsInvalidInput(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop())
	_, err := svc.Cell(context.Background(), ruleset.EvensID, 1, 0)
	assert.ErrorIs(t, err, tables.ErrInvalidCell)
	_, err = svc.Cell(context.Background(), ruleset.EvensID, -1, 1)
	assert.ErrorIs(t, err, tables.ErrInvalidCell)
}

func TestCell_RejectsEmptyPoolBeforeStore(t *testing.T) {
	store := newMemStore()
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithStore(store))
	_, err := svc.Cell(context.Background(), ruleset.EvensID, 0, 1)
	assert.ErrorIs(t, err, tables.ErrInvalidCell)
	assert.Equal(t, 0, store.saves)
	assert.Empty(t, store.cells)
}

func TestCell_ReadThroughCache(t *testing.T) {
	store := newMemStore()
	metrics := observability.NewMetrics()
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(),
		tables.WithStore(store), tables.WithMetrics(metrics))
	ctx := context.Background()

	p, err := svc.Cell(ctx, ruleset.EvensUpID, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.0/36.0, p, 1e-12)
	assert.Equal(t, 1, store.saves)

	again, err := svc.Cell(ctx, ruleset.EvensUpID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, 1, store.saves)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		metrics.Enumerations.WithLabelValues(ruleset.EvensUpID, string(probability.QuerySuccess))))
}

func TestCell_ServesCachedValue(t *testing.T) {
	store := newMemStore()
	evens := ruleset.Evens()
	store.cells[key(evens.ID, evens.Fingerprint(), 1, 1)] = 0.42

	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithStore(store))
	p, err := svc.Cell(context.Background(), evens.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.42, p)
}

func TestCell_StoreFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.failGet = errors.New("connection refused")
	store.failPut = errors.New("connection refused")

	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithStore(store))
	p, err := svc.Cell(context.Background(), ruleset.EvensID, 2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-12)
}

func TestGrid_MatchesCalculator(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithWorkers(4))
	grid, err := svc.Grid(context.Background(), ruleset.EvensUpID, 4, 5, nil)
	require.NoError(t, err)

	calc := probability.NewCalculator(ruleset.EvensUp(), zap.NewNop())
	for pool := 1; pool <= 4; pool++ {
		for target := 1; target <= 5; target++ {
			assert.Equal(t, calc.SuccessProbability(pool, target), grid.At(pool, target),
				"pool=%d target=%d", pool, target)
		}
	}
}

func TestGrid_EvensCellsNeverNegative(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithWorkers(4))
	grid, err := svc.Grid(context.Background(), ruleset.EvensID, 6, 8, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.RenderTable(&buf, grid, "Cliche Level", 2))
	assert.NotContains(t, buf.String(), "-0.00%")
	for pool := 1; pool <= 6; pool++ {
		for target := pool + 1; target <= 8; target++ {
			assert.Equal(t, 0.0, grid.At(pool, target), "pool=%d target=%d", pool, target)
		}
	}
}

func TestGrid_Progress(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop(), tables.WithWorkers(3))
	var buf bytes.Buffer
	_, err := svc.Grid(context.Background(), ruleset.EvensID, 3, 2, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("Computed cells: %d/6", i+1), line)
	}
}

func TestGrid_InvalidBounds(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop())
	_, err := svc.Grid(context.Background(), ruleset.EvensID, 7, 1, nil)
	assert.ErrorIs(t, err, report.ErrInvalidPoolSize)
	_, err = svc.Grid(context.Background(), ruleset.EvensID, 1, 0, nil)
	assert.ErrorIs(t, err, report.ErrInvalidTarget)
}

func TestGrid_Cancelled(t *testing.T) {
	svc := tables.NewService(ruleset.DefaultRegistry(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Grid(ctx, ruleset.EvensID, 6, 6, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
