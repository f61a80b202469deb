// Package transform provides preparation transform definitions and the
// registries the composition engine resolves them through.
//
// # Core Concepts
//
// A Definition couples a transform id with a parameter schema and an
// applicability predicate. Applicability is a capability interface, not a
// dispatch on transform identity: new transforms are added by registering new
// definitions, never by touching the composition engine.
//
// Predicates are either plain Go functions (PredicateFunc) or CEL
// expressions (CELPredicate) evaluated over the taxon's effective attributes
// and the requested part:
//
//	transform.MustCELPredicate(`attrs["cookable"] == "true" && part != "shell"`)
//
// # Registries
//
// The engine consumes the Registry interface as an external capability.
// StaticRegistry holds definitions in memory; EtcdCatalog reads JSON specs
// from an etcd cluster, either per-lookup or bulk-synced into a
// StaticRegistry with a watch keeping it current.
//
// Registry lookup failures of any kind (unknown id, undecodable spec,
// unreachable catalog) surface as foodstate.ErrTransformNotFound, which the
// engine reports as an "unknown transform" validation error. There is no
// retry at this layer.
package transform
