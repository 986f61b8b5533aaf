package probability

import "github.com/cory-johannsen/risus/internal/game/ruleset"

// maxPathHint caps the path capacity allocated up front.
const maxPathHint = 64

// Sink receives each failing face sequence found by Enumerate.
//
// The slice is a read-only view of the traversal path and is only valid for
// the duration of the call; a sink that keeps it must copy it.
type Sink func(seq []int)

// Stats counts the nodes touched by one enumeration.
type Stats struct {
	// Visited is the number of nodes entered, including the root.
	Visited int
	// Pruned is the number of nodes whose path already reached the target.
	Pruned int
	// Failures is the number of sequences handed to the sink.
	Failures int
}

type enumeration struct {
	target int
	policy ruleset.Policy
	sink   Sink
	path   []int
	stats  Stats
}

// Enumerate walks the tree of die-face sequences depth first, faces in
// ascending order, and passes every sequence that exhausts the pool budget
// without reaching target successes to sink.
//
// A branch is pruned as soon as its path reaches target successes. Each face
// spends policy.BudgetDelta(face) dice of the pool; a pool of zero or less
// yields the empty sequence as the only failure when target > 0.
//
// Precondition: policy has been validated.
// Postcondition: sink has been called once per failing sequence, in order.
func Enumerate(pool, target int, policy ruleset.Policy, sink Sink) Stats {
	e := &enumeration{
		target: target,
		policy: policy,
		sink:   sink,
		path:   make([]int, 0, min(max(pool, 0)+1, maxPathHint)),
	}
	e.walk(0, pool)
	return e.stats
}

func (e *enumeration) walk(successes, budget int) {
	e.stats.Visited++
	if successes >= e.target {
		e.stats.Pruned++
		return
	}
	if budget <= 0 {
		e.stats.Failures++
		n := len(e.path)
		e.sink(e.path[:n:n])
		return
	}
	for _, face := range children() {
		next := successes
		if e.policy.IsSuccess(face) {
			next++
		}
		e.path = append(e.path, face)
		e.walk(next, budget-e.policy.BudgetDelta(face))
		e.path = e.path[:len(e.path)-1]
	}
}
