package transform

import (
	"fmt"

	"github.com/savorlab/foodstate/schema"
)

// Predicate decides whether a transform applies to a food state, given the
// taxon's effective attributes and the requested part. Predicates must be
// pure: same inputs, same answer, no side effects.
type Predicate interface {
	Applicable(attrs map[string]string, part string) bool
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func(attrs map[string]string, part string) bool

// Applicable implements Predicate.
func (f PredicateFunc) Applicable(attrs map[string]string, part string) bool {
	return f(attrs, part)
}

// Always is a predicate that applies to every food state.
var Always Predicate = PredicateFunc(func(map[string]string, string) bool { return true })

// Definition describes a single preparation transform: its identity, the
// schema of its parameters, and the predicate deciding where it applies.
//
// Definitions are data, not behavior: the composition engine consults them
// through a Registry and never mutates them.
type Definition struct {
	// ID is the transform identifier (e.g., "peel", "grill").
	ID string

	// Description documents the transform for catalog consumers.
	Description string

	// Params is the parameter schema. A nil schema means the transform
	// takes no parameters.
	Params schema.Params

	// Applicable decides whether the transform applies to a food state.
	// A nil predicate means the transform applies everywhere.
	Applicable Predicate

	// NonRepeatable marks transforms that may appear at most once in a
	// chain. Repetition is a per-transform capability; the engine itself
	// permits duplicates.
	NonRepeatable bool
}

// Validate checks the definition for registration: a non-empty id and an
// internally consistent parameter schema.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("transform id is required")
	}
	if err := d.Params.Validate(); err != nil {
		return fmt.Errorf("transform %s: %w", d.ID, err)
	}
	return nil
}

// IsApplicable reports whether the transform applies to the given effective
// attributes and part. A definition without a predicate applies everywhere.
func (d Definition) IsApplicable(attrs map[string]string, part string) bool {
	if d.Applicable == nil {
		return true
	}
	return d.Applicable.Applicable(attrs, part)
}
