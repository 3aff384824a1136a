package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	// Shaped node declarations: ID[Label], ID(Label), ID{Label},
	// ID((Label)), ID>Label].
	flowNodeRe = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z0-9_]*)\s*(?:\[|\(|\{|>)`)

	// Edges: A --> B, A --- B, A -.-> B, A ==> B, with an optional
	// |label| segment. Endpoints may carry an inline shape, which the
	// identifier group stops before.
	flowEdgeRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9_]*)(?:\[[^\]]*\]|\([^)]*\)|\{[^}]*\})?\s*(?:-{2,3}|={2,3}|-\.+-?)>?\s*(?:\|([^|]*)\|\s*)?([A-Za-z][A-Za-z0-9_]*)`)

	flowSubgraphRe = regexp.MustCompile(`(?m)^\s*subgraph\s+([A-Za-z][A-Za-z0-9_]*)`)
)

// Flowchart analyzes flowchart/graph notation.
type Flowchart struct{}

func (Flowchart) Type() models.DiagramType { return models.DiagramFlowchart }

func (Flowchart) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship

	for _, line := range bodyLines(content) {
		if m := flowSubgraphRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			continue
		}
		if line == "end" || strings.HasPrefix(line, "direction") ||
			strings.HasPrefix(line, "classDef") || strings.HasPrefix(line, "class ") ||
			strings.HasPrefix(line, "style ") || strings.HasPrefix(line, "click ") {
			continue
		}

		edge := flowEdgeRe.FindStringSubmatch(line)
		if edge != nil {
			nodes.add(edge[1])
			nodes.add(edge[3])
			rels = append(rels, models.Relationship{
				From:  edge[1],
				To:    edge[3],
				Label: strings.TrimSpace(edge[2]),
			})
			continue
		}
		if m := flowNodeRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
		}
	}

	return models.Analysis{
		Type:          models.DiagramFlowchart,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
