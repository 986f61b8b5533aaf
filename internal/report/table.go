package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPoolSize is the widest table the renderer lays out.
const MaxPoolSize = 6

var (
	// ErrInvalidPoolSize is returned for a maximum pool size outside [1, MaxPoolSize].
	ErrInvalidPoolSize = errors.New("invalid maximum pool size")
	// ErrInvalidTarget is returned for a maximum target below 1.
	ErrInvalidTarget = errors.New("invalid maximum target")
)

// ValidateTableBounds checks the table dimensions.
//
// Postcondition: Returns nil iff 1 <= maxPool <= MaxPoolSize and maxTarget >= 1.
func ValidateTableBounds(maxPool, maxTarget int) error {
	if maxPool < 1 || maxPool > MaxPoolSize {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidPoolSize, maxPool, MaxPoolSize)
	}
	if maxTarget < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTarget, maxTarget)
	}
	return nil
}

// Grid holds success probabilities indexed by pool size and target.
type Grid struct {
	MaxPool   int
	MaxTarget int
	cells     []float64
}

// NewGrid allocates a grid for pool sizes 1..maxPool and targets 1..maxTarget.
//
// Postcondition: Returns a zeroed grid or a bounds error.
func NewGrid(maxPool, maxTarget int) (*Grid, error) {
	if err := ValidateTableBounds(maxPool, maxTarget); err != nil {
		return nil, err
	}
	return &Grid{
		MaxPool:   maxPool,
		MaxTarget: maxTarget,
		cells:     make([]float64, maxPool*maxTarget),
	}, nil
}

// Set stores the probability of (pool, target). Cells are disjoint, so
// concurrent Set calls for different cells are safe.
//
// Precondition: 1 <= pool <= g.MaxPool and 1 <= target <= g.MaxTarget.
func (g *Grid) Set(pool, target int, p float64) {
	g.cells[g.index(pool, target)] = p
}

// At returns the probability of (pool, target).
//
// Precondition: 1 <= pool <= g.MaxPool and 1 <= target <= g.MaxTarget.
func (g *Grid) At(pool, target int) float64 {
	return g.cells[g.index(pool, target)]
}

func (g *Grid) index(pool, target int) int {
	return (target-1)*g.MaxPool + pool - 1
}

// RenderTable draws g as a framed matrix: one column per pool size under a
// poolLabel header, one row per target, percentages with precision decimals.
//
// Precondition: g comes from NewGrid; precision >= 0.
// Postcondition: Every line written has the same width.
func RenderTable(w io.Writer, g *Grid, poolLabel string, precision int) error {
	n := g.MaxPool
	cell := 6 + precision
	header := " " + strings.ToUpper(poolLabel) + " "
	if span, hw := n*cell+n-1, utf8.RuneCountInString(header); hw > span {
		cell += (hw - span + n - 1) / n
	}
	span := n*cell + n - 1
	lineLen := (n+1)*cell + n + 2
	divide := strings.Repeat("-", lineLen)
	emptyCell := strings.Repeat(" ", cell+1)

	lw := &lineWriter{w: w}
	lw.line(center(" TABLE ", lineLen, '='))
	lw.line(emptyCell + strings.Repeat("-", lineLen-cell-1))
	lw.line(emptyCell + "|" + center(header, span, ' ') + "|")
	lw.line(divide)

	var b strings.Builder
	b.WriteString("|" + center("# Suc.", cell, ' ') + "|")
	for pool := 1; pool <= n; pool++ {
		b.WriteString(center(strconv.Itoa(pool), cell, ' ') + "|")
	}
	lw.line(b.String())
	lw.line(divide)

	for target := 1; target <= g.MaxTarget; target++ {
		b.Reset()
		b.WriteString("|" + center(strconv.Itoa(target), cell, ' ') + "|")
		for pool := 1; pool <= n; pool++ {
			b.WriteString(center(percent(g.At(pool, target), precision), cell, ' ') + "|")
		}
		lw.line(b.String())
		lw.line(divide)
	}
	return lw.err
}
