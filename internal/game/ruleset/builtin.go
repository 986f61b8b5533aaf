package ruleset

// Built-in ruleset identifiers.
const (
	EvensID   = "evens"
	EvensUpID = "evens-up"
)

var risusTerms = Terms{Pool: "Cliche Level", Target: "Target Number"}

// Evens returns the plain evens policy: 2, 4 and 6 succeed and every die
// consumes one slot of the pool.
func Evens() Policy {
	p, err := NewPolicy(EvensID, "Evens", risusTerms, []int{2, 4, 6}, nil)
	if err != nil {
		panic("ruleset: Evens: " + err.Error())
	}
	p.Description = "Even faces succeed; each die is rolled once."
	return p
}

// EvensUp returns the RISUS Evens Up policy: 2, 4 and 6 succeed and a 6 is
// rolled again without consuming a die of the pool.
func EvensUp() Policy {
	p, err := NewPolicy(EvensUpID, "Evens Up", risusTerms, []int{2, 4, 6}, []int{6})
	if err != nil {
		panic("ruleset: EvensUp: " + err.Error())
	}
	p.Description = "Even faces succeed; a 6 adds another die to the pool."
	return p
}

// Builtins returns every built-in policy in display order.
func Builtins() []Policy {
	return []Policy{Evens(), EvensUp()}
}
