package taxonomy

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/savorlab/foodstate"
)

// StructuralError reports a taxonomy integrity violation found during graph
// construction. It identifies the offending node so authoring tooling can
// point at the broken entry. Structural violations are fatal at load time and
// are never produced per-request.
type StructuralError struct {
	// NodeID is the id of the offending node ("" when the violation is not
	// attributable to a single node, e.g. a missing root).
	NodeID string

	// Reason describes the violated invariant.
	Reason string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("taxonomy: %s", e.Reason)
	}
	return fmt.Sprintf("taxonomy: node %s: %s", e.NodeID, e.Reason)
}

// Is matches StructuralError against the ErrStructural sentinel.
func (e *StructuralError) Is(target error) bool {
	return target == foodstate.ErrStructural
}

// Graph is an immutable, in-memory taxonomy tree.
//
// The graph is an arena of nodes addressed by stable identifiers plus parent
// and children indices, rather than live object references. It is built once
// per load and then read concurrently by any number of composition requests
// without locking; no method mutates graph state.
type Graph struct {
	nodes    map[string]Node
	children map[string][]string
	attrs    map[string]map[string]string // nodeID -> key -> value
	rootID   string
	buildID  string
}

// NewGraph constructs a graph from node and attribute records, validating all
// structural invariants eagerly:
//
//   - node ids are unique and non-empty
//   - ranks are known ladder values
//   - exactly one root (empty ParentID) exists
//   - every parent reference resolves, and the parent relation forms a tree
//     (no cycles, every node reachable from the root)
//   - a child's rank occurs at or after its parent's rank in the ladder
//   - slugs are unique among siblings
//   - at most one value of a given attribute key per node
//
// Any violation fails construction with a *StructuralError; partial graphs
// are never returned.
func NewGraph(nodes []Node, attrs []Attribute) (*Graph, error) {
	g := &Graph{
		nodes:    make(map[string]Node, len(nodes)),
		children: make(map[string][]string),
		attrs:    make(map[string]map[string]string),
		buildID:  uuid.New().String(),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, &StructuralError{Reason: "empty node id"}
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, &StructuralError{NodeID: n.ID, Reason: "duplicate node id"}
		}
		if !n.Rank.IsValid() {
			return nil, &StructuralError{NodeID: n.ID, Reason: fmt.Sprintf("unknown rank %q", n.Rank)}
		}
		g.nodes[n.ID] = n
	}

	for _, n := range g.nodes {
		if n.ParentID == "" {
			if g.rootID != "" && g.rootID != n.ID {
				return nil, &StructuralError{NodeID: n.ID, Reason: "multiple root nodes"}
			}
			g.rootID = n.ID
			continue
		}

		parent, ok := g.nodes[n.ParentID]
		if !ok {
			return nil, &StructuralError{NodeID: n.ID, Reason: fmt.Sprintf("parent %q does not exist", n.ParentID)}
		}
		if !n.Rank.AtOrBelow(parent.Rank) {
			return nil, &StructuralError{
				NodeID: n.ID,
				Reason: fmt.Sprintf("rank %s may not descend from %s", n.Rank, parent.Rank),
			}
		}
		g.children[n.ParentID] = append(g.children[n.ParentID], n.ID)
	}

	if len(g.nodes) > 0 && g.rootID == "" {
		return nil, &StructuralError{Reason: "no root node"}
	}

	// Deterministic child ordering regardless of input order.
	for _, ids := range g.children {
		sort.Strings(ids)
	}

	if err := g.checkReachability(); err != nil {
		return nil, err
	}
	if err := g.checkSiblingSlugs(); err != nil {
		return nil, err
	}

	for _, a := range attrs {
		if _, ok := g.nodes[a.NodeID]; !ok {
			return nil, &StructuralError{NodeID: a.NodeID, Reason: fmt.Sprintf("attribute %q declared on unknown node", a.Key)}
		}
		byKey := g.attrs[a.NodeID]
		if byKey == nil {
			byKey = make(map[string]string)
			g.attrs[a.NodeID] = byKey
		}
		if _, dup := byKey[a.Key]; dup {
			return nil, &StructuralError{NodeID: a.NodeID, Reason: fmt.Sprintf("attribute %q declared twice", a.Key)}
		}
		byKey[a.Key] = a.Value
	}

	return g, nil
}

// checkReachability verifies every node is reachable from the root, which
// rules out cycles among non-root nodes (a cycle is unreachable from the
// root since every node has exactly one parent).
func (g *Graph) checkReachability() error {
	if len(g.nodes) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(g.nodes))
	stack := []string{g.rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.children[id]...)
	}

	if len(seen) == len(g.nodes) {
		return nil
	}
	for id := range g.nodes {
		if !seen[id] {
			return &StructuralError{NodeID: id, Reason: "unreachable from root (cyclic parentage)"}
		}
	}
	return nil
}

// checkSiblingSlugs verifies slug uniqueness among each node's children.
func (g *Graph) checkSiblingSlugs() error {
	for parentID, childIDs := range g.children {
		slugs := make(map[string]string, len(childIDs))
		for _, id := range childIDs {
			slug := g.nodes[id].Slug
			if slug == "" {
				continue
			}
			if other, dup := slugs[slug]; dup {
				return &StructuralError{
					NodeID: id,
					Reason: fmt.Sprintf("slug %q already used by sibling %s under %s", slug, other, parentID),
				}
			}
			slugs[slug] = id
		}
	}
	return nil
}

// Node returns the node with the given id.
// Returns an error wrapping foodstate.ErrNodeNotFound if the id is unknown.
func (g *Graph) Node(id string) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, foodstate.NewNotFoundError("Graph.Node", foodstate.ErrNodeNotFound).
			WithContext(map[string]any{"node_id": id})
	}
	return n, nil
}

// Children returns the direct children of the given node, ordered by id.
// Returns an error wrapping foodstate.ErrNodeNotFound if the id is unknown.
func (g *Graph) Children(id string) ([]Node, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, foodstate.NewNotFoundError("Graph.Children", foodstate.ErrNodeNotFound).
			WithContext(map[string]any{"node_id": id})
	}
	ids := g.children[id]
	out := make([]Node, len(ids))
	for i, cid := range ids {
		out[i] = g.nodes[cid]
	}
	return out, nil
}

// AncestorChain returns the chain of nodes from the root to the given node,
// inclusive. Returns an error wrapping foodstate.ErrNodeNotFound if the id is
// unknown.
func (g *Graph) AncestorChain(id string) ([]Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, foodstate.NewNotFoundError("Graph.AncestorChain", foodstate.ErrNodeNotFound).
			WithContext(map[string]any{"node_id": id})
	}

	var chain []Node
	for {
		chain = append(chain, n)
		if n.ParentID == "" {
			break
		}
		n = g.nodes[n.ParentID]
	}

	// Reverse into root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Root returns the root node.
func (g *Graph) Root() Node {
	return g.nodes[g.rootID]
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// BuildID returns the identifier assigned to this graph at construction.
// Rebuilding the graph yields a new BuildID even for identical content, which
// lets caches distinguish results computed against different loads.
func (g *Graph) BuildID() string {
	return g.buildID
}
