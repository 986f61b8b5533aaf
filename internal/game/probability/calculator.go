// Package probability computes exact success odds for dice pools by
// enumerating every failing die-face sequence.
package probability

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// Query names the calculator operation an enumeration served.
type Query string

const (
	QuerySuccess  Query = "success_probability"
	QueryFailures Query = "list_failures"
)

// Observer is notified after every enumeration.
//
// Implementations MUST be safe for concurrent use.
type Observer interface {
	ObserveEnumeration(rulesetID string, query Query, stats Stats, elapsed time.Duration)
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithObserver attaches an Observer to the Calculator.
func WithObserver(o Observer) Option {
	return func(c *Calculator) { c.observer = o }
}

// Calculator answers odds queries for a single ruleset policy.
//
// A Calculator holds no mutable state; concurrent calls are safe because every
// call enumerates on its own path.
type Calculator struct {
	policy   ruleset.Policy
	logger   *zap.Logger
	observer Observer
}

// NewCalculator creates a Calculator for policy.
//
// Precondition: policy has been validated; logger must be non-nil.
func NewCalculator(policy ruleset.Policy, logger *zap.Logger, opts ...Option) *Calculator {
	c := &Calculator{policy: policy, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the ruleset policy the Calculator applies.
func (c *Calculator) Policy() ruleset.Policy {
	return c.policy
}

// SuccessProbability returns the probability that pool dice reach target
// successes.
//
// Precondition: target >= 1 and pool >= 1 for a meaningful result; pool <= 0
// yields 0 for any positive target.
// Postcondition: Returns 1 minus the failure mass, in [0, 1]; exactly 0 when
// every sequence fails.
func (c *Calculator) SuccessProbability(pool, target int) float64 {
	start := time.Now()
	var acc Accumulator
	stats := Enumerate(pool, target, c.policy, acc.Add)
	c.observe(QuerySuccess, pool, target, stats, start)
	return acc.Complement()
}

// ListFailures calls fn with every failing sequence for (pool, target) in
// ascending-face depth-first order.
//
// Precondition: fn must be non-nil.
func (c *Calculator) ListFailures(pool, target int, fn func(Failure)) {
	start := time.Now()
	stats := Enumerate(pool, target, c.policy, NewReporter(fn).Add)
	c.observe(QueryFailures, pool, target, stats, start)
}

// Failures collects ListFailures into a slice.
func (c *Calculator) Failures(pool, target int) []Failure {
	var out []Failure
	c.ListFailures(pool, target, func(f Failure) {
		out = append(out, f)
	})
	return out
}

// MaxFailureLength returns an upper bound on the length of any failing
// sequence: pool when every face consumes a die, otherwise pool plus the
// target-1 free successes a failing roll can hold.
func (c *Calculator) MaxFailureLength(pool, target int) int {
	n := max(pool, 0)
	if c.policy.HasFreeFaces() && target > 1 {
		n += target - 1
	}
	return n
}

func (c *Calculator) observe(q Query, pool, target int, stats Stats, start time.Time) {
	elapsed := time.Since(start)
	c.logger.Debug("enumeration complete",
		zap.String("ruleset", c.policy.ID),
		zap.String("query", string(q)),
		zap.Int("pool", pool),
		zap.Int("target", target),
		zap.Int("visited", stats.Visited),
		zap.Int("pruned", stats.Pruned),
		zap.Int("failures", stats.Failures),
		zap.Duration("elapsed", elapsed),
	)
	if c.observer != nil {
		c.observer.ObserveEnumeration(c.policy.ID, q, stats, elapsed)
	}
}
