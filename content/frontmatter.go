// Package content loads taxonomy entries from the markdown-with-frontmatter
// files the savorlab catalog is authored in. Each entry is a markdown file
// whose YAML frontmatter carries the structured fields; the free-text body is
// documentation for humans and is not consumed by the engine.
package content

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/savorlab/foodstate/taxonomy"
)

// frontmatterDelimiter separates the YAML header from the markdown body.
var frontmatterDelimiter = []byte("---")

// Entry is the decoded frontmatter of a single taxonomy entry file.
type Entry struct {
	// ID is the colon-delimited lineage path (e.g.,
	// "animalia:arthropoda:decapoda:litopenaeus"). The parent id and the
	// slug are both derived from it.
	ID string `yaml:"id"`

	// Rank is the taxon's rank in the specialization ladder.
	Rank string `yaml:"rank"`

	// LatinName is the scientific name.
	LatinName string `yaml:"latin_name,omitempty"`

	// DisplayName is the vernacular name shown in the catalog.
	DisplayName string `yaml:"display_name,omitempty"`

	// Lang is the language of the entry's free text.
	Lang string `yaml:"lang,omitempty"`

	// Summary is a one-line description.
	Summary string `yaml:"summary,omitempty"`

	// Updated is the last-touched date of the entry, as authored.
	Updated string `yaml:"updated,omitempty"`

	// Attributes are the structured attribute overrides declared on this
	// node (e.g., parts, edible).
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Node converts the entry to its taxonomy node. The slug is the last segment
// of the id; the parent id is everything before it. An id without a colon is
// a child of the given root id, and the root id itself maps to the root node.
func (e Entry) Node(rootID string) (taxonomy.Node, error) {
	if e.ID == "" {
		return taxonomy.Node{}, fmt.Errorf("entry is missing an id")
	}

	rank, err := taxonomy.ParseRank(e.Rank)
	if err != nil {
		return taxonomy.Node{}, fmt.Errorf("entry %s: %w", e.ID, err)
	}

	name := e.DisplayName
	if name == "" {
		name = e.LatinName
	}

	node := taxonomy.Node{
		ID:   e.ID,
		Name: name,
		Rank: rank,
	}

	switch {
	case e.ID == rootID:
		node.Slug = rootID
	case strings.Contains(e.ID, ":"):
		idx := strings.LastIndex(e.ID, ":")
		node.ParentID = e.ID[:idx]
		node.Slug = e.ID[idx+1:]
	default:
		node.ParentID = rootID
		node.Slug = e.ID
	}

	if node.Slug == "" {
		return taxonomy.Node{}, fmt.Errorf("entry %s: empty trailing id segment", e.ID)
	}
	return node, nil
}

// Attrs converts the entry's attribute declarations, keyed deterministically.
func (e Entry) Attrs() []taxonomy.Attribute {
	if len(e.Attributes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]taxonomy.Attribute, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, taxonomy.Attribute{NodeID: e.ID, Key: k, Value: e.Attributes[k]})
	}
	return attrs
}

// ParseEntry decodes one markdown-with-frontmatter document.
// The file must open with a "---" line; everything up to the closing "---"
// is YAML, everything after it is the ignored body.
func ParseEntry(data []byte) (Entry, error) {
	header, err := splitFrontmatter(data)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := yaml.Unmarshal(header, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return entry, nil
}

// splitFrontmatter extracts the YAML header between the delimiters.
func splitFrontmatter(data []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(data, "\r\n \t")
	if !bytes.HasPrefix(trimmed, frontmatterDelimiter) {
		return nil, fmt.Errorf("entry does not start with frontmatter")
	}

	rest := trimmed[len(frontmatterDelimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	if !bytes.HasPrefix(rest, []byte("\n")) {
		return nil, fmt.Errorf("entry does not start with frontmatter")
	}
	rest = rest[1:]

	end := bytes.Index(rest, append([]byte("\n"), frontmatterDelimiter...))
	if end < 0 {
		return nil, fmt.Errorf("unterminated frontmatter")
	}
	return rest[:end], nil
}

// LoadDir reads every .md file under dir (recursively) and converts the
// entries into graph inputs. rootID names the synthetic root node; a file
// declaring that id becomes the root, and files whose ids have no lineage
// prefix become its children.
//
// LoadDir only gathers records; structural validation happens in
// taxonomy.NewGraph, so authoring errors are reported against the whole
// dataset rather than per file.
func LoadDir(dir, rootID string) ([]taxonomy.Node, []taxonomy.Attribute, error) {
	var (
		nodes []taxonomy.Node
		attrs []taxonomy.Attribute
	)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		entry, err := ParseEntry(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		node, err := entry.Node(rootID)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		nodes = append(nodes, node)
		attrs = append(attrs, entry.Attrs()...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return nodes, attrs, nil
}

// Load reads entry files and builds the validated taxonomy graph in one
// step. This is the typical entry point for composition-serving processes.
func Load(dir, rootID string) (*taxonomy.Graph, error) {
	nodes, attrs, err := LoadDir(dir, rootID)
	if err != nil {
		return nil, err
	}
	return taxonomy.NewGraph(nodes, attrs)
}
