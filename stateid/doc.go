// Package stateid derives stable, content-addressable identifiers for
// normalized food state compositions.
//
// An identifier is a deterministic function of the ordered canonical
// representation of {taxon, part, transform chain}: parameter keys sorted,
// values in fixed scalar formatting, components trimmed and lowercased. The
// canonical string is SHA-256 hashed and the first 12 bytes base64url
// encoded, yielding identifiers of the form:
//
//	food:2gXb9rM1kQZ4x7Lw
//
// # Determinism Guarantees
//
// The deriver guarantees:
//
//   - Same normalized composition always produces the same identifier
//   - Different compositions produce different identifiers (collision-resistant)
//   - Parameter map iteration order never affects the result
//   - Transform chain order always affects the result
//
// These guarantees make identifiers safe to use as cache keys, database keys,
// and cross-rebuild references.
package stateid
