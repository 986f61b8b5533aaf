package probability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

func TestChildren_AscendingFaces(t *testing.T) {
	assert.Equal(t, [ruleset.Sides]int{1, 2, 3, 4, 5, 6}, children())
}

func TestEnumerate_UnprunedTreeVisitsEveryNode(t *testing.T) {
	// Four successes can never come from three dice, so nothing is pruned.
	stats := Enumerate(3, 4, ruleset.Evens(), func([]int) {})
	assert.Equal(t, 1+6+36+216, stats.Visited)
	assert.Equal(t, 0, stats.Pruned)
	assert.Equal(t, 216, stats.Failures)
}

func TestEnumerate_PrunesOnceTargetReached(t *testing.T) {
	stats := Enumerate(3, 1, ruleset.Evens(), func([]int) {})
	assert.Equal(t, 1+6+18+54, stats.Visited)
	assert.Equal(t, 3+9+27, stats.Pruned)
	assert.Equal(t, 27, stats.Failures)
}

func TestEnumerate_PrunedTreeGrowsSlowerThanFullTree(t *testing.T) {
	calc := NewCalculator(ruleset.EvensUp(), zap.NewNop())
	prev := 0
	for pool := 1; pool <= 6; pool++ {
		stats := Enumerate(pool, 2, ruleset.EvensUp(), func([]int) {})
		// Nodes of the full tree as deep as the longest failing sequence.
		full, width := 0, 1
		for depth := 0; depth <= calc.MaxFailureLength(pool, 2); depth++ {
			full += width
			width *= ruleset.Sides
		}
		assert.Greater(t, stats.Visited, prev, "pool=%d", pool)
		assert.Less(t, stats.Visited, full, "pool=%d", pool)
		assert.Less(t, stats.Failures, width/ruleset.Sides, "pool=%d", pool)
		prev = stats.Visited
	}
}

func TestEnumerate_EvensFailuresBoundedByLeaves(t *testing.T) {
	// One die can never show two successes, so pool 1 fails everywhere.
	full := ruleset.Sides
	for pool := 2; pool <= 6; pool++ {
		full *= ruleset.Sides
		stats := Enumerate(pool, 2, ruleset.Evens(), func([]int) {})
		assert.Less(t, stats.Failures, full, "pool=%d", pool)
	}
}

func TestEnumerate_SinkCannotCorruptPath(t *testing.T) {
	var clean [][]int
	Enumerate(2, 2, ruleset.EvensUp(), func(seq []int) {
		clean = append(clean, append([]int(nil), seq...))
	})

	var dirty [][]int
	Enumerate(2, 2, ruleset.EvensUp(), func(seq []int) {
		dirty = append(dirty, append([]int(nil), seq...))
		_ = append(seq, 99)
	})
	require.NotEmpty(t, clean)
	assert.Equal(t, clean, dirty)
}

func TestEnumerate_NonPositiveTargetPrunesRoot(t *testing.T) {
	calls := 0
	stats := Enumerate(3, 0, ruleset.Evens(), func([]int) { calls++ })
	assert.Equal(t, 0, calls)
	assert.Equal(t, Stats{Visited: 1, Pruned: 1}, stats)
}

func TestAccumulator_SumsSequenceMass(t *testing.T) {
	var acc Accumulator
	acc.Add([]int{1})
	acc.Add([]int{1, 3})
	assert.InDelta(t, 1.0/6+1.0/36, acc.Mass(), 1e-15)
	assert.Equal(t, uint64(1), acc.Count(2))
	assert.Equal(t, uint64(0), acc.Count(5))
	assert.Equal(t, 1.0, SequenceProbability(0))
}

func TestAccumulator_FullMassIsExact(t *testing.T) {
	// Every sequence of seven faces: 6^7 leaves summing to exactly 1.
	var acc Accumulator
	seq := make([]int, 7)
	for i := 0; i < 279936; i++ {
		acc.Add(seq)
	}
	assert.Equal(t, 1.0, acc.Mass())
	assert.Equal(t, 0.0, acc.Complement())
}

func TestAccumulator_MixedLengthsSumExactly(t *testing.T) {
	// Five one-face failures and six two-face failures cover the whole tree.
	var acc Accumulator
	for i := 0; i < 5; i++ {
		acc.Add([]int{1})
	}
	for i := 0; i < 6; i++ {
		acc.Add([]int{6, 1})
	}
	assert.Equal(t, 1.0, acc.Mass())
	assert.Equal(t, 0.0, acc.Complement())
}

func TestAccumulator_EmptyHasNoMass(t *testing.T) {
	var acc Accumulator
	assert.Equal(t, 0.0, acc.Mass())
	assert.Equal(t, 1.0, acc.Complement())
}

func TestReporter_CopiesSequence(t *testing.T) {
	var got []Failure
	r := NewReporter(func(f Failure) { got = append(got, f) })
	seq := []int{6, 3}
	r.Add(seq)
	seq[0] = 1
	require.Len(t, got, 1)
	assert.Equal(t, []int{6, 3}, got[0].Faces)
	assert.InDelta(t, 1.0/36, got[0].Probability, 1e-15)
}
