// Package taxonomy provides the in-memory food taxonomy graph and its
// attribute resolver.
//
// # Core Concepts
//
// The taxonomy is a single rooted tree of taxa, each carrying a rank from a
// fixed, totally ordered specialization ladder (root, domain, kingdom, ...,
// species, subspecies, cultivar, variety, breed, product, form). A child's
// rank always occurs at or after its parent's rank in the ladder, so walking
// down the tree is monotonic specialization.
//
// Nodes may declare scoped attribute overrides. The effective attributes of a
// taxon are computed by cascading every ancestor's declarations from the root
// down, with the nearest declaration winning:
//
//	attrs, err := graph.ResolveAttributes("animalia:arthropoda:decapoda:litopenaeus")
//
// # Structural Invariants
//
// NewGraph validates the whole dataset eagerly and refuses to build a graph
// that violates tree-ness, rank monotonicity, sibling slug uniqueness, or the
// one-value-per-attribute-key rule. Violations are reported as
// *StructuralError identifying the offending node; they are load-time fatal
// conditions, never per-request errors.
//
// # Concurrency
//
// A constructed Graph is immutable. All methods are safe for unlimited
// concurrent use without locking.
package taxonomy
