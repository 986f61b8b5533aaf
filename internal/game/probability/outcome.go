package probability

import "github.com/cory-johannsen/risus/internal/game/ruleset"

// faces holds the children of every outcome node in visiting order.
var faces = [ruleset.Sides]int{1, 2, 3, 4, 5, 6}

// children returns the faces a node expands into, ascending.
//
// Postcondition: Returns a fresh array; callers may iterate it while the
// traversal recurses without sharing state with any other frame.
func children() [ruleset.Sides]int {
	return faces
}
