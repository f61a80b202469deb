package taxonomy

// Node is a single taxonomy entry.
//
// Nodes are value types; the graph owns all nodes and never re-parents them
// once constructed. IDs are colon-delimited lineage paths, stable across
// rebuilds (e.g., "animalia:arthropoda:decapoda:litopenaeus").
type Node struct {
	// ID is the globally unique, stable identifier for this taxon.
	ID string

	// Name is the display name (e.g., "Whiteleg shrimp").
	Name string

	// Slug is the identifier segment, unique among siblings.
	Slug string

	// Rank is the taxon's position in the specialization ladder.
	Rank Rank

	// ParentID references the parent node, or "" for the root.
	ParentID string
}

// Attribute is a scoped attribute override declared on a single node.
//
// At most one value of a given Key may be declared per node; declaring the
// same key twice on one node is a data-integrity error rejected at graph
// construction, never resolved last-write-wins.
type Attribute struct {
	// NodeID is the node on which this attribute is declared.
	NodeID string

	// Key is the attribute key (e.g., "parts", "cookable").
	Key string

	// Value is the attribute value.
	Value string
}
