package probability

import (
	"slices"
	"strconv"
	"strings"
)

// Failure is one die-face sequence that misses the target, with its probability.
type Failure struct {
	Faces       []int   `json:"faces"`
	Probability float64 `json:"probability"`
}

// Percent returns the probability as a percentage.
func (f Failure) Percent() float64 {
	return 100 * f.Probability
}

// String renders the faces joined by dashes, e.g. "6-1-3".
func (f Failure) String() string {
	parts := make([]string, len(f.Faces))
	for i, face := range f.Faces {
		parts[i] = strconv.Itoa(face)
	}
	return strings.Join(parts, "-")
}

// Reporter is a sink that snapshots each failing sequence into a Failure.
type Reporter struct {
	emit func(Failure)
}

// NewReporter returns a Reporter forwarding every Failure to emit.
//
// Precondition: emit must be non-nil.
func NewReporter(emit func(Failure)) *Reporter {
	return &Reporter{emit: emit}
}

// Add is a Sink copying seq and forwarding it with its probability.
func (r *Reporter) Add(seq []int) {
	r.emit(Failure{
		Faces:       slices.Clone(seq),
		Probability: SequenceProbability(len(seq)),
	})
}
