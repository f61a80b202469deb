package stateid

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Prefix is the node-type prefix carried by every derived identifier.
// It keeps identifiers human-recognizable alongside other catalog ids.
const Prefix = "food"

// Step is one normalized transform in canonical order: a transform id plus
// its canonical (defaulted, validated) parameters.
type Step struct {
	// ID is the transform identifier.
	ID string

	// Params is the canonical parameter mapping. Keys are serialized in
	// sorted order regardless of map iteration.
	Params map[string]string
}

// Derive computes the stable content-derived identifier of a normalized
// composition.
//
// The identifier is a deterministic, collision-resistant function of the
// ordered canonical representation of {taxon, part, transforms}:
//
//  1. Build the canonical string taxon|part|t1{k=v,...}|t2{...} with
//     parameter keys sorted and values normalized (trimmed, lowercased)
//  2. SHA-256 hash the canonical string
//  3. Base64url encode the first 12 bytes (96 bits, no padding)
//  4. Return food:{encoded}
//
// Two semantically identical compositions always derive the same identifier;
// compositions differing in transform order or any parameter value derive
// different identifiers with overwhelming probability.
func Derive(taxonID, partID string, steps []Step) string {
	canonical := Canonical(taxonID, partID, steps)
	hash := sha256.Sum256([]byte(canonical))
	encoded := base64.RawURLEncoding.EncodeToString(hash[:12])
	return fmt.Sprintf("%s:%s", Prefix, encoded)
}

// Canonical returns the canonical string representation hashed by Derive.
// Exposed so caches can key on the same representation without re-deriving.
func Canonical(taxonID, partID string, steps []Step) string {
	var b strings.Builder
	b.WriteString(normalize(taxonID))
	b.WriteByte('|')
	b.WriteString(normalize(partID))

	for _, step := range steps {
		b.WriteByte('|')
		b.WriteString(normalize(step.ID))
		b.WriteByte('{')

		keys := make([]string, 0, len(step.Params))
		for k := range step.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(normalize(k))
			b.WriteByte('=')
			b.WriteString(normalize(step.Params[k]))
		}
		b.WriteByte('}')
	}
	return b.String()
}

// normalize renders a string component in canonical form: trimmed and
// lowercased, so incidental casing or whitespace never splits identities.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
