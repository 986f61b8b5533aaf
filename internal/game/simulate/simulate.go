// Package simulate estimates pool odds by rolling dice, as an empirical
// cross-check of the exact calculator.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/risus/internal/game/dice"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// checkEvery is how many trials run between context checks.
const checkEvery = 1024

// ErrInvalidTrials is returned when a simulation is asked for no trials.
var ErrInvalidTrials = errors.New("trials must be positive")

// Estimate is the outcome of a Monte-Carlo run.
type Estimate struct {
	Ruleset     string  `json:"ruleset"`
	Pool        int     `json:"pool"`
	Target      int     `json:"target"`
	Trials      int     `json:"trials"`
	Successes   int     `json:"successes"`
	Probability float64 `json:"probability"`
	// StdErr is the binomial standard error of Probability.
	StdErr float64 `json:"std_err"`
}

// Within reports whether exact lies within k standard errors of the estimate.
func (e Estimate) Within(exact float64, k float64) bool {
	return math.Abs(e.Probability-exact) <= k*e.StdErr
}

// Run rolls the pool trials times with roller and returns the observed
// success rate.
//
// Precondition: policy has been validated; roller must be non-nil.
// Postcondition: Returns an Estimate, ErrInvalidTrials, or the context error
// if ctx is cancelled mid-run.
func Run(ctx context.Context, roller *dice.Roller, pool, target int, policy ruleset.Policy, trials int) (Estimate, error) {
	if trials <= 0 {
		return Estimate{}, fmt.Errorf("simulate %d trials: %w", trials, ErrInvalidTrials)
	}
	est := Estimate{Ruleset: policy.ID, Pool: pool, Target: target, Trials: trials}
	for i := 0; i < trials; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Estimate{}, fmt.Errorf("simulation interrupted after %d trials: %w", i, err)
			}
		}
		if roller.RollPool(pool, target, policy).Succeeded() {
			est.Successes++
		}
	}
	p := float64(est.Successes) / float64(trials)
	est.Probability = p
	est.StdErr = math.Sqrt(p * (1 - p) / float64(trials))
	return est, nil
}
