package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// DuplicateIDRule reports every identifier declared by more than one
// file, naming both files.
type DuplicateIDRule struct {
	meta Meta
}

func NewDuplicateIDRule(meta Meta) *DuplicateIDRule { return &DuplicateIDRule{meta: meta} }

func (r *DuplicateIDRule) Meta() Meta { return r.meta }

func (r *DuplicateIDRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	var out []string
	for _, d := range ctx.Duplicates {
		out = append(out, fmt.Sprintf("id %q declared by both %s and %s", d.ID, d.FirstFile, d.OtherFile))
	}
	return out
}

// ReciprocityRule checks that a downlink from A to B is matched by an
// uplink from B back to A. Only declared targets are checked here;
// undeclared targets are the dangling-reference rule's finding.
type ReciprocityRule struct {
	meta Meta
}

func NewReciprocityRule(meta Meta) *ReciprocityRule { return &ReciprocityRule{meta: meta} }

func (r *ReciprocityRule) Meta() Meta { return r.meta }

func (r *ReciprocityRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	var out []string
	for _, id := range sortedNodeIDs(ctx) {
		n := ctx.Node(id)
		for _, down := range n.Downlinks {
			target := ctx.Node(down)
			if target == nil || !ctx.Declared(down) {
				continue
			}
			if !target.HasUplink(id) {
				out = append(out, fmt.Sprintf("%s declares downlink to %s, but %s has no uplink back", id, down, down))
			}
		}
		for _, up := range n.Uplinks {
			parent := ctx.Node(up)
			if parent == nil || !ctx.Declared(up) {
				continue
			}
			if !containsString(parent.Downlinks, id) {
				out = append(out, fmt.Sprintf("%s declares uplink to %s, but %s has no downlink back", id, up, up))
			}
		}
	}
	return out
}

// OrphanRule checks that every declared identifier is referenced
// somewhere else in the graph, unless explicitly exempt (for example
// the graph root).
type OrphanRule struct {
	meta   Meta
	Exempt []string
}

func NewOrphanRule(meta Meta, exempt []string) *OrphanRule {
	return &OrphanRule{meta: meta, Exempt: exempt}
}

func (r *OrphanRule) Meta() Meta { return r.meta }

func (r *OrphanRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	var ids []string
	for id := range ctx.IDToFile {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []string
	for _, id := range ids {
		if containsString(r.Exempt, id) {
			continue
		}
		if !ctx.Referenced(id) {
			out = append(out, fmt.Sprintf("%s is declared in %s but never referenced by anything", id, ctx.IDToFile[id]))
		}
	}
	return out
}

// DanglingRule checks that every uplink and downlink edge of a declared
// node points at a declared identifier. Distinct from the orphan check:
// the issue here is a declared edge pointing nowhere rather than an
// undeclared edge.
type DanglingRule struct {
	meta Meta
}

func NewDanglingRule(meta Meta) *DanglingRule { return &DanglingRule{meta: meta} }

func (r *DanglingRule) Meta() Meta { return r.meta }

func (r *DanglingRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	var out []string
	for _, id := range sortedNodeIDs(ctx) {
		if !ctx.Declared(id) {
			continue
		}
		n := ctx.Node(id)
		for _, up := range n.Uplinks {
			if !ctx.Declared(up) {
				out = append(out, fmt.Sprintf("%s uplinks to %s, which is never declared", id, up))
			}
		}
		for _, down := range n.Downlinks {
			if !ctx.Declared(down) {
				out = append(out, fmt.Sprintf("%s downlinks to %s, which is never declared", id, down))
			}
		}
	}
	return out
}

// ChainRule is a typed traceability chain: every declared node whose id
// carries FromPrefix (optionally filtered by a metadata key/value
// written by an earlier rule) must be linked from at least one node
// carrying ToPrefix, following the given direction.
type ChainRule struct {
	meta Meta

	FromPrefix string
	ToPrefix   string

	// Direction "uplink" requires a ToPrefix node whose uplinks contain
	// the FromPrefix node; "downlink" walks the FromPrefix node's own
	// downlinks.
	Direction string

	// Optional metadata gate on the FromPrefix node, typically written
	// by a classification rule that runs earlier in load order.
	MetaKey   string
	MetaValue string

	// Optional metadata requirement on the target node.
	TargetMetaKey   string
	TargetMetaValue string
}

func (r *ChainRule) Meta() Meta { return r.meta }

func (r *ChainRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	var out []string
	for _, id := range sortedNodeIDs(ctx) {
		if !ctx.Declared(id) || !strings.HasPrefix(id, r.FromPrefix) {
			continue
		}
		if r.MetaKey != "" {
			if v, _ := ctx.Metadata(id, r.MetaKey).(string); v != r.MetaValue {
				continue
			}
		}
		if !r.satisfied(id, ctx) {
			out = append(out, fmt.Sprintf("%s has no %s trace to a %s* node", id, r.Direction, r.ToPrefix))
		}
	}
	return out
}

func (r *ChainRule) satisfied(id string, ctx *graph.Context) bool {
	if r.Direction == "uplink" {
		// Some ToPrefix node must point up at id.
		for _, other := range sortedNodeIDs(ctx) {
			if !strings.HasPrefix(other, r.ToPrefix) {
				continue
			}
			if containsString(ctx.Node(other).Uplinks, id) && r.targetOK(other, ctx) {
				return true
			}
		}
		return false
	}
	// Downlink chain: walk id's downlinks.
	for _, down := range ctx.Node(id).Downlinks {
		if strings.HasPrefix(down, r.ToPrefix) && r.targetOK(down, ctx) {
			return true
		}
	}
	return false
}

func (r *ChainRule) targetOK(id string, ctx *graph.Context) bool {
	if r.TargetMetaKey == "" {
		return true
	}
	v, _ := ctx.Metadata(id, r.TargetMetaKey).(string)
	return v == r.TargetMetaValue
}

func sortedNodeIDs(ctx *graph.Context) []string {
	ids := make([]string, 0, len(ctx.Nodes))
	for id := range ctx.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
