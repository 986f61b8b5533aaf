package probability

import (
	"math"
	"math/big"

	"github.com/cory-johannsen/risus/internal/game/ruleset"
)

// SequenceProbability returns the probability of one specific sequence of
// length die faces: 6^-length.
func SequenceProbability(length int) float64 {
	return 1 / math.Pow(ruleset.Sides, float64(length))
}

// Accumulator tallies the sequences it is fed by length and sums their
// probability mass exactly, as count[L] / 6^L over every length L.
type Accumulator struct {
	counts []uint64
}

// Add is a Sink recording one sequence of len(seq) faces.
func (a *Accumulator) Add(seq []int) {
	n := len(seq)
	if n >= len(a.counts) {
		a.counts = append(a.counts, make([]uint64, n+1-len(a.counts))...)
	}
	a.counts[n]++
}

// Count returns how many sequences of length faces were added.
func (a *Accumulator) Count(length int) uint64 {
	if length < 0 || length >= len(a.counts) {
		return 0
	}
	return a.counts[length]
}

// Mass returns the accumulated probability, correctly rounded.
func (a *Accumulator) Mass() float64 {
	f, _ := a.rat().Float64()
	return f
}

// Complement returns 1 - Mass computed before rounding, so a full mass of
// failing sequences yields exactly 0.
//
// Postcondition: Returns a value in [0, 1] when every added sequence is
// distinct and prefix-free.
func (a *Accumulator) Complement() float64 {
	r := new(big.Rat).Sub(big.NewRat(1, 1), a.rat())
	f, _ := r.Float64()
	return min(max(f, 0), 1)
}

// rat returns Σ count[L] * 6^(M-L) / 6^M for the longest length M seen.
func (a *Accumulator) rat() *big.Rat {
	if len(a.counts) == 0 {
		return new(big.Rat)
	}
	longest := len(a.counts) - 1
	sides := big.NewInt(ruleset.Sides)
	num := new(big.Int)
	scale := big.NewInt(1)
	for l := longest; l >= 0; l-- {
		if c := a.counts[l]; c > 0 {
			term := new(big.Int).SetUint64(c)
			num.Add(num, term.Mul(term, scale))
		}
		scale.Mul(scale, sides)
	}
	// scale is now 6^(longest+1); drop the extra factor.
	den := new(big.Int).Quo(scale, sides)
	return new(big.Rat).SetFrac(num, den)
}
