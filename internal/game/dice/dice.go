// Package dice provides the randomness abstraction and physical pool rolls
// used to cross-check the exact odds calculator.
package dice

import (
	"fmt"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// PoolRoll holds the full audit trail of one rolled pool.
//
// Postcondition: Successes == count of faces in Faces that the ruleset counts.
type PoolRoll struct {
	Ruleset   string // ruleset ID, e.g. "evens-up"
	Pool      int    // dice in the pool before any free rerolls
	Target    int    // successes required
	Faces     []int  // every face rolled, in order
	Successes int    // successes among Faces
}

// Succeeded reports whether the roll reached its target.
func (r PoolRoll) Succeeded() bool {
	return r.Successes >= r.Target
}

// String returns a human-readable audit string in the format:
//
//	"evens-up 2 vs 2 → [6 1 4] = 2 successes"
//
// Precondition: r.Ruleset is non-empty.
func (r PoolRoll) String() string {
	if r.Ruleset == "" {
		panic("dice: PoolRoll.String() precondition violated: Ruleset must be non-empty")
	}
	return fmt.Sprintf("%s %d vs %d → %v = %d successes", r.Ruleset, r.Pool, r.Target, r.Faces, r.Successes)
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollPool rolls pool dice under policy, one die at a time, stopping as soon
// as target successes are reached or the pool is spent. Faces that do not
// consume a die are followed by another roll.
//
// Precondition: policy has been validated; src must be non-nil.
// Postcondition: result.Succeeded() iff target successes were rolled before
// the pool ran out.
func RollPool(src Source, pool, target int, policy ruleset.Policy) PoolRoll {
	r := PoolRoll{Ruleset: policy.ID, Pool: pool, Target: target}
	budget := pool
	for budget > 0 && r.Successes < target {
		face := src.Intn(ruleset.Sides) + 1
		r.Faces = append(r.Faces, face)
		if policy.IsSuccess(face) {
			r.Successes++
		}
		budget -= policy.BudgetDelta(face)
	}
	return r
}
