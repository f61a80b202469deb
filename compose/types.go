package compose

import "context"

// TransformInput is a single requested step in a preparation chain: a
// transform id plus raw, unvalidated parameters. Params may be nil.
type TransformInput struct {
	ID     string            `json:"id"`
	Params map[string]string `json:"params,omitempty"`
}

// Input is a composition request. Transform order is significant: the chain
// [peel, grill] is a materially different composition from [grill, peel].
type Input struct {
	TaxonID    string           `json:"taxon_id"`
	PartID     string           `json:"part_id"`
	Transforms []TransformInput `json:"transforms,omitempty"`
}

// NormalizedTransform is a canonicalized step: parameters validated against
// the transform's schema with defaults filled. Params is always non-nil.
type NormalizedTransform struct {
	ID     string            `json:"id"`
	Params map[string]string `json:"params"`
}

// Normalized is the canonical shape of a composition. Transforms preserves
// the original request order among the steps that passed validation.
type Normalized struct {
	TaxonID    string                `json:"taxon_id"`
	PartID     string                `json:"part_id"`
	Transforms []NormalizedTransform `json:"transforms"`
}

// Result is the outcome of a composition request.
//
// Invariant: ID is non-empty if and only if Errors is empty. Normalized is
// always emitted, even alongside errors, so downstream surfaces can show
// which steps would have worked; steps that failed validation never appear
// in it.
type Result struct {
	ID         string      `json:"id,omitempty"`
	Errors     []string    `json:"errors"`
	Normalized *Normalized `json:"normalized,omitempty"`
}

// OK reports whether the composition validated cleanly.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// PartsCatalog supplies the recognized parts of a taxon from a source other
// than the taxonomy's parts attribute (e.g., a database-backed catalog).
// Implementations backed by I/O must tolerate cancellation via ctx; a lookup
// failure is treated as "no parts declared", not a request failure.
type PartsCatalog interface {
	Parts(ctx context.Context, taxonID string) ([]string, error)
}

// Cache stores composition results keyed by canonical request. Implementations
// must treat entries as immutable snapshots; the engine ignores cache errors
// and recomputes.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, result Result)
}
