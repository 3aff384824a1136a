package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	// Person(alias, "Label", ...) and friends. The alias, the first
	// call argument, is the identifier.
	c4NodeRe = regexp.MustCompile(`^(?:Person|System|SystemDb|SystemQueue|Container|ContainerDb|ContainerQueue|Component|ComponentDb|ComponentQueue|Node|Deployment_Node)(?:_Ext)?\s*\(\s*([A-Za-z][A-Za-z0-9_]*)\s*,`)

	// Boundary calls: System_Boundary(alias, "Label"), Enterprise_Boundary, Boundary.
	c4BoundaryRe = regexp.MustCompile(`^(?:Enterprise_Boundary|System_Boundary|Container_Boundary|Boundary)\s*\(\s*([A-Za-z][A-Za-z0-9_]*)\s*,`)

	// Rel(from, to, "label", ...), BiRel, and directional variants.
	c4RelRe = regexp.MustCompile(`^(?:Bi)?Rel(?:_[UDLRudlr]|_Up|_Down|_Left|_Right|_Back|_Neighbor)?\s*\(\s*([A-Za-z][A-Za-z0-9_]*)\s*,\s*([A-Za-z][A-Za-z0-9_]*)\s*(?:,\s*"([^"]*)")?`)
)

// C4 analyzes the C4-style notation with its parenthesized call syntax.
type C4 struct{}

func (C4) Type() models.DiagramType { return models.DiagramC4 }

func (C4) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship

	for _, line := range bodyLines(content) {
		if line == "}" || strings.HasPrefix(line, "UpdateElementStyle") ||
			strings.HasPrefix(line, "UpdateRelStyle") || strings.HasPrefix(line, "SHOW_LEGEND") {
			continue
		}
		if m := c4RelRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			nodes.add(m[2])
			rels = append(rels, models.Relationship{From: m[1], To: m[2], Label: m[3]})
			continue
		}
		if m := c4NodeRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			continue
		}
		if m := c4BoundaryRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
		}
	}

	return models.Analysis{
		Type:          models.DiagramC4,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
