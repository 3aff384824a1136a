package graph

import (
	"github.com/starford/raido/internal/models"
)

// Builder folds assets and their analyses into a Context. It is the
// single writer of the graph: Add runs during the assembly phase, and
// the returned Context is read-only afterwards.
type Builder struct {
	ctx *Context
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{ctx: &Context{
		Nodes:         make(map[string]*Node),
		ReferencedIDs: make(map[string]struct{}),
		IDToFile:      make(map[string]string),
		Analyses:      make(map[string]models.Analysis),
	}}
}

// Add registers one asset and its diagram analysis.
func (b *Builder) Add(asset *models.Asset, analysis models.Analysis) {
	c := b.ctx
	c.Analyses[asset.RelPath] = analysis

	// Register the file-level identifier and its explicit links.
	ownerID := asset.Meta.ID
	if ownerID != "" {
		b.register(ownerID, asset.RelPath, asset.Meta.Title)
		b.link(ownerID, asset.Meta.Uplink, asset.Meta.Downlinks)
	}

	// Nested entities declare identifiers of their own.
	for _, e := range asset.Meta.Entities {
		if e.ID == "" {
			continue
		}
		b.register(e.ID, asset.RelPath, "")
		b.link(e.ID, e.Uplink, e.Downlinks)
		for _, req := range e.Requirements {
			c.ReferencedIDs[req] = struct{}{}
		}
	}

	// Relationship endpoints count as references whether or not they
	// are ever declared; dangling-reference detection depends on this.
	for _, rel := range analysis.Relationships {
		if IsIdentifier(rel.From) {
			c.ReferencedIDs[rel.From] = struct{}{}
		}
		if IsIdentifier(rel.To) {
			c.ReferencedIDs[rel.To] = struct{}{}
		}
	}

	// Structural ownership: a diagram's internal identifier nodes
	// become children of the owning file's declared identifier. An
	// explicit front-matter uplink on the child wins over this.
	if ownerID != "" {
		owner := c.Nodes[ownerID]
		for _, node := range analysis.Nodes {
			if node == ownerID || !IsIdentifier(node) {
				continue
			}
			if !contains(owner.Downlinks, node) {
				owner.Downlinks = append(owner.Downlinks, node)
			}
			c.ReferencedIDs[node] = struct{}{}
			child := b.ensure(node)
			if !contains(child.implicitUplinks, ownerID) {
				child.implicitUplinks = append(child.implicitUplinks, ownerID)
			}
		}
	}
}

// Context finalizes and returns the assembled graph. Implicit ownership
// uplinks are folded in for nodes without an explicit uplink.
func (b *Builder) Context() *Context {
	for _, n := range b.ctx.Nodes {
		if !n.explicitUplink && len(n.Uplinks) == 0 {
			n.Uplinks = n.implicitUplinks
		}
		if n.Uplinks == nil {
			n.Uplinks = []string{}
		}
		if n.Downlinks == nil {
			n.Downlinks = []string{}
		}
	}
	return b.ctx
}

// register records an identifier declaration. The first file wins;
// later declarations are recorded as duplicates for a rule to report.
func (b *Builder) register(id, file, title string) {
	c := b.ctx
	if existing, ok := c.IDToFile[id]; ok {
		if existing != file {
			c.Duplicates = append(c.Duplicates, Duplicate{
				ID:        id,
				FirstFile: existing,
				OtherFile: file,
			})
		}
		return
	}
	c.IDToFile[id] = file
	n := b.ensure(id)
	n.File = file
	if title != "" {
		n.Title = title
	}
}

// link attaches explicit front-matter uplink/downlink edges to a node.
func (b *Builder) link(id, uplink string, downlinks []string) {
	c := b.ctx
	n := b.ensure(id)
	if uplink != "" {
		n.explicitUplink = true
		if !contains(n.Uplinks, uplink) {
			n.Uplinks = append(n.Uplinks, uplink)
		}
		c.ReferencedIDs[uplink] = struct{}{}
	}
	for _, d := range downlinks {
		if d == "" {
			continue
		}
		if !contains(n.Downlinks, d) {
			n.Downlinks = append(n.Downlinks, d)
		}
		c.ReferencedIDs[d] = struct{}{}
	}
}

func (b *Builder) ensure(id string) *Node {
	if n, ok := b.ctx.Nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	b.ctx.Nodes[id] = n
	return n
}
