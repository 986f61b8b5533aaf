// Package ruleset describes the per-die success policies of the supported
// dice-pool rulesets.
package ruleset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sides is the number of faces of the uniform die every ruleset rolls.
const Sides = 6

var (
	// ErrInvalidFace is returned when a face value outside [1, Sides] is referenced.
	ErrInvalidFace = errors.New("face must be between 1 and 6")
	// ErrNonTerminating is returned for a policy with a face that neither
	// consumes a die nor counts as a success; enumeration would never end.
	ErrNonTerminating = errors.New("every free face must count as a success")
	// ErrMissingID is returned when a policy has no identifier.
	ErrMissingID = errors.New("ruleset id must not be empty")
)

// FaceRule is the policy applied to a single die face.
type FaceRule struct {
	// Success reports whether the face counts toward the target.
	Success bool
	// Consumes reports whether rolling the face uses up one die of the pool.
	Consumes bool
}

// Terms holds the ruleset's vocabulary for display.
type Terms struct {
	Pool   string `yaml:"pool"`
	Target string `yaml:"target"`
}

// Policy is a data-described success rule: for each face, whether it is a
// success and whether it consumes a slot of the pool budget.
//
// Invariant: after Validate returns nil, every face with Consumes == false
// has Success == true.
type Policy struct {
	ID          string
	Name        string
	Description string
	Terms       Terms
	Faces       [Sides]FaceRule
}

// NewPolicy builds a Policy where the listed faces succeed and the listed free
// faces do not consume a die.
//
// Precondition: every entry of successFaces and freeFaces is in [1, Sides].
// Postcondition: Returns a validated Policy or a non-nil error.
func NewPolicy(id, name string, terms Terms, successFaces, freeFaces []int) (Policy, error) {
	p := Policy{ID: id, Name: name, Terms: terms}
	for i := range p.Faces {
		p.Faces[i].Consumes = true
	}
	for _, f := range successFaces {
		if f < 1 || f > Sides {
			return Policy{}, fmt.Errorf("ruleset %q: success face %d: %w", id, f, ErrInvalidFace)
		}
		p.Faces[f-1].Success = true
	}
	for _, f := range freeFaces {
		if f < 1 || f > Sides {
			return Policy{}, fmt.Errorf("ruleset %q: free face %d: %w", id, f, ErrInvalidFace)
		}
		p.Faces[f-1].Consumes = false
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// IsSuccess reports whether face counts as a success.
//
// Precondition: face is in [1, Sides].
func (p Policy) IsSuccess(face int) bool {
	return p.Faces[face-1].Success
}

// BudgetDelta returns how many dice of the pool rolling face consumes: 0 or 1.
//
// Precondition: face is in [1, Sides].
func (p Policy) BudgetDelta(face int) int {
	if p.Faces[face-1].Consumes {
		return 1
	}
	return 0
}

// HasFreeFaces reports whether any face leaves the pool budget untouched.
func (p Policy) HasFreeFaces() bool {
	for _, r := range p.Faces {
		if !r.Consumes {
			return true
		}
	}
	return false
}

// SuccessFaces returns the faces that count as successes in ascending order.
func (p Policy) SuccessFaces() []int {
	var out []int
	for i, r := range p.Faces {
		if r.Success {
			out = append(out, i+1)
		}
	}
	return out
}

// FreeFaces returns the faces that do not consume a die in ascending order.
func (p Policy) FreeFaces() []int {
	var out []int
	for i, r := range p.Faces {
		if !r.Consumes {
			out = append(out, i+1)
		}
	}
	return out
}

// Validate checks the policy invariants.
//
// Postcondition: Returns nil when the policy has an ID and every enumeration
// under it terminates.
func (p Policy) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	for i, r := range p.Faces {
		if !r.Consumes && !r.Success {
			return fmt.Errorf("ruleset %q: face %d: %w", p.ID, i+1, ErrNonTerminating)
		}
	}
	return nil
}

// Fingerprint encodes the face rules, e.g. "success=2,4,6;free=6". Two
// policies with equal fingerprints yield identical odds.
func (p Policy) Fingerprint() string {
	return "success=" + joinFaces(p.SuccessFaces()) + ";free=" + joinFaces(p.FreeFaces())
}

func joinFaces(faces []int) string {
	parts := make([]string, len(faces))
	for i, f := range faces {
		parts[i] = strconv.Itoa(f)
	}
	return strings.Join(parts, ",")
}

// PoolTerm returns the display name of the pool size, defaulting to "Pool Size".
func (p Policy) PoolTerm() string {
	if p.Terms.Pool == "" {
		return "Pool Size"
	}
	return p.Terms.Pool
}

// TargetTerm returns the display name of the target, defaulting to "Target".
func (p Policy) TargetTerm() string {
	if p.Terms.Target == "" {
		return "Target"
	}
	return p.Terms.Target
}
