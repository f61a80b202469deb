package taxonomy

import "strings"

// PartsAttribute is the attribute key that enumerates the valid parts of a
// taxon, as a comma-separated list (e.g., "tail,head,shell"). The key is
// subject to the same ancestor cascade as every other attribute, so a genus
// can declare parts once for all of its species.
const PartsAttribute = "parts"

// ResolveAttributes computes the effective attribute mapping for a node by
// walking its ancestor chain root→node and applying each node's own declared
// attributes over the accumulator. A value declared closer to the target node
// replaces the same key declared on a broader ancestor.
//
// Resolution is pure: the returned map is freshly allocated, the graph is
// never mutated, and repeated calls with the same graph return identical
// results. Returns an error wrapping foodstate.ErrNodeNotFound if the id is
// unknown.
func (g *Graph) ResolveAttributes(id string) (map[string]string, error) {
	chain, err := g.AncestorChain(id)
	if err != nil {
		return nil, err
	}

	effective := make(map[string]string)
	for _, n := range chain {
		for k, v := range g.attrs[n.ID] {
			effective[k] = v
		}
	}
	return effective, nil
}

// Parts returns the recognized parts for a taxon, parsed from the resolved
// PartsAttribute value. A taxon with no parts attribute anywhere in its
// ancestor chain has no recognized parts. Returns an error wrapping
// foodstate.ErrNodeNotFound if the id is unknown.
func (g *Graph) Parts(id string) ([]string, error) {
	attrs, err := g.ResolveAttributes(id)
	if err != nil {
		return nil, err
	}
	return SplitParts(attrs[PartsAttribute]), nil
}

// SplitParts parses a comma-separated parts attribute value into a list,
// trimming whitespace and dropping empty segments.
func SplitParts(v string) []string {
	if v == "" {
		return nil
	}
	segments := strings.Split(v, ",")
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
