// Package graph assembles per-file front matter and diagram analyses
// into one project-wide traceability context. The builder only
// assembles; every correctness check lives in the rules package, so
// policy can evolve without touching graph assembly.
package graph

import (
	"regexp"

	"github.com/starford/raido/internal/models"
)

// identRe is the project identifier convention: an uppercase kind
// prefix, an underscore, then a name (PER_Shopper, REQ_Login).
var identRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*_[A-Za-z0-9_]+$`)

// IsIdentifier reports whether s follows the identifier convention.
func IsIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// Node is one identifier's place in the traceability graph.
type Node struct {
	ID        string         `json:"id"`
	File      string         `json:"file,omitempty"`
	Title     string         `json:"title,omitempty"`
	Uplinks   []string       `json:"uplinks"`
	Downlinks []string       `json:"downlinks"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// implicitUplinks come from structural ownership. They only apply
	// when no explicit front-matter uplink was declared.
	implicitUplinks []string
	explicitUplink  bool
}

// HasUplink reports whether the node links up to parent, either
// explicitly or inferably through structural ownership. Reciprocity
// checks accept both forms.
func (n *Node) HasUplink(parent string) bool {
	return contains(n.Uplinks, parent) || contains(n.implicitUplinks, parent)
}

// Duplicate records an identifier declared by more than one file. The
// first registration wins; the collision is surfaced by a rule.
type Duplicate struct {
	ID        string `json:"id"`
	FirstFile string `json:"firstFile"`
	OtherFile string `json:"otherFile"`
}

// Context is the aggregate traceability graph of a whole project. It is
// written by a single builder and treated as read-only once built.
type Context struct {
	Nodes         map[string]*Node
	ReferencedIDs map[string]struct{}
	IDToFile      map[string]string
	Duplicates    []Duplicate

	// Analyses holds the diagram analysis per asset relative path, so
	// rules can inspect structure without re-parsing.
	Analyses map[string]models.Analysis
}

// Node returns the graph node for id, or nil when the identifier was
// never declared or referenced.
func (c *Context) Node(id string) *Node {
	return c.Nodes[id]
}

// Declared reports whether id was declared by some file.
func (c *Context) Declared(id string) bool {
	_, ok := c.IDToFile[id]
	return ok
}

// Referenced reports whether id is mentioned anywhere in the graph as
// an uplink target, downlink target, or relationship endpoint.
func (c *Context) Referenced(id string) bool {
	_, ok := c.ReferencedIDs[id]
	return ok
}

// AddMetadata records a fact about a node. Metadata is additive: an
// existing key is never overwritten, so rule-written facts survive in
// load order. This is the one sanctioned side channel rules may write
// through during evaluation.
func (c *Context) AddMetadata(id, key string, value any) {
	n := c.Nodes[id]
	if n == nil {
		return
	}
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	if _, exists := n.Metadata[key]; exists {
		return
	}
	n.Metadata[key] = value
}

// Metadata returns the metadata value for a node, or nil.
func (c *Context) Metadata(id, key string) any {
	n := c.Nodes[id]
	if n == nil || n.Metadata == nil {
		return nil
	}
	return n.Metadata[key]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
