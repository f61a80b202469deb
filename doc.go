// Package foodstate is the core engine behind the savorlab food catalog.
//
// The engine models food ingredients as nodes in a taxonomic hierarchy and
// derives concrete, validated "food states" by combining a taxon, a part of
// that taxon, and an ordered chain of preparation transforms.
//
// # Core Concepts
//
// The module is organized around a small set of concepts:
//
//   - Taxonomy: an immutable rooted tree of taxa (domain → kingdom → ... →
//     species → cultivar/breed/product/form) with per-node attribute overrides
//   - Effective attributes: the attribute mapping for a taxon after applying
//     the ancestor cascade with nearest-node precedence
//   - Transforms: named preparation steps with a parameter schema and an
//     applicability predicate, resolved through a registry
//   - Composition: the validated, normalized combination of taxon + part +
//     ordered transform chain, addressed by a stable content-derived identifier
//
// # Architecture
//
// Packages, leaves first:
//
//   - taxonomy: the in-memory graph and attribute resolver
//   - schema: scalar parameter schemas for transform parameters
//   - transform: transform definitions, predicates, and registries
//   - compose: the composition engine (the single public operation)
//   - stateid: deterministic identifier derivation
//   - content: markdown-with-frontmatter taxonomy entry loading
//   - cache: optional Redis-backed composition result cache
//
// Data flows graph → resolver → composition engine → identifier deriver; the
// engine treats the transform registry and parts catalog as external lookup
// capabilities and never mutates them.
//
// # Getting Started
//
// Build a graph, register transforms, and compose:
//
//	graph, err := taxonomy.NewGraph(nodes, attrs)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	reg := transform.NewStaticRegistry()
//	reg.MustRegister(transform.Definition{
//		ID:         "grill",
//		Params:     schema.Params{"heat": schema.Enum("low", "medium", "high").WithDefault("medium")},
//		Applicable: transform.MustCELPredicate(`attrs["cookable"] == "true"`),
//	})
//
//	engine := compose.NewEngine(graph, reg)
//	result := engine.Compose(ctx, compose.Input{
//		TaxonID: "animalia:arthropoda:decapoda:litopenaeus",
//		PartID:  "tail",
//		Transforms: []compose.TransformInput{{ID: "grill"}},
//	})
//
// A result carries either a stable identifier or the exhaustive list of
// validation errors, never both.
package foodstate
