// Package compose implements the food state composition engine.
//
// A composition request names a taxon, a part of that taxon, and an ordered
// chain of preparation transforms. The engine resolves the taxon's effective
// attributes through the taxonomy's ancestor cascade, validates the part and
// every transform step against the transform registry, normalizes the chain
// into canonical form, and derives a stable content-addressed identifier for
// the result.
//
// # Error Model
//
// Validation is fail-soft and exhaustive. All errors across a request are
// collected into Result.Errors using a small closed vocabulary:
//
//	unknown taxon: <id>
//	unknown part: <id>
//	unknown transform: <id>
//	transform <id> not applicable to <part>
//	invalid parameter for transform <id>: <detail>
//
// Errors are data, never control flow; Compose does not return an error.
// A result carries an identifier exactly when its error list is empty. The
// normalized shape is emitted even alongside errors, with failing steps
// dropped, so callers can surface which steps would have worked.
//
// # Concurrency
//
// The graph and registry are read-only from the engine's perspective, so any
// number of Compose calls may run fully in parallel. Requests block only on
// I/O-backed registry or parts catalog lookups, which are independent,
// cancellable reads.
package compose
