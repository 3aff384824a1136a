// Package analyzer extracts identifiers and relationships from Mermaid
// diagram source text. One analyzer per notation family, all behind the
// same interface so callers never depend on a concrete grammar.
//
// Analyzers never fail: malformed input degrades to a partial or empty
// result. Whether a diagram opens with the right keyword is a rule-level
// concern, not an analyzer concern.
package analyzer

import (
	"strings"

	"github.com/starford/raido/internal/models"
)

// Analyzer extracts structure from one notation family.
type Analyzer interface {
	// Type returns the notation family this analyzer handles.
	Type() models.DiagramType
	// Analyze extracts declared identifiers (first-seen order) and
	// directed relationships (duplicates preserved) from content.
	Analyze(content string) models.Analysis
}

// registry holds the built-in analyzers keyed by notation family.
var registry = map[models.DiagramType]Analyzer{}

func register(a Analyzer) {
	registry[a.Type()] = a
}

func init() {
	register(&Flowchart{})
	register(&Sequence{})
	register(&State{})
	register(&EntityRelation{})
	register(&Mindmap{})
	register(&Requirement{})
	register(&C4{})
}

// ForType returns the analyzer for a notation family, or nil when the
// family is unknown.
func ForType(t models.DiagramType) Analyzer {
	return registry[t]
}

// Detect inspects the first meaningful line of content and returns the
// notation family its keyword declares.
func Detect(content string) models.DiagramType {
	first := FirstLine(content)
	switch {
	case strings.HasPrefix(first, "flowchart"), strings.HasPrefix(first, "graph"):
		return models.DiagramFlowchart
	case strings.HasPrefix(first, "sequenceDiagram"):
		return models.DiagramSequence
	case strings.HasPrefix(first, "stateDiagram"):
		return models.DiagramState
	case strings.HasPrefix(first, "erDiagram"):
		return models.DiagramER
	case strings.HasPrefix(first, "mindmap"):
		return models.DiagramMindmap
	case strings.HasPrefix(first, "requirementDiagram"):
		return models.DiagramRequirement
	case strings.HasPrefix(first, "C4Context"), strings.HasPrefix(first, "C4Container"),
		strings.HasPrefix(first, "C4Component"), strings.HasPrefix(first, "C4Dynamic"),
		strings.HasPrefix(first, "C4Deployment"):
		return models.DiagramC4
	default:
		return models.DiagramUnknown
	}
}

// Analyze detects the notation family and runs the matching analyzer.
// Unknown content yields an empty analysis, never an error.
func Analyze(content string) models.Analysis {
	t := Detect(content)
	a := ForType(t)
	if a == nil {
		return models.Analysis{Type: t, Nodes: []string{}, Relationships: []models.Relationship{}}
	}
	return a.Analyze(content)
}

// FirstLine returns the first non-empty, non-comment line of content,
// trimmed. Mermaid init directives (%%{...}%%) are skipped.
func FirstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		return trimmed
	}
	return ""
}

// nodeList accumulates identifiers preserving first-seen order.
type nodeList struct {
	seen  map[string]struct{}
	order []string
}

func newNodeList() *nodeList {
	return &nodeList{seen: make(map[string]struct{})}
}

func (n *nodeList) add(id string) {
	if id == "" {
		return
	}
	if _, ok := n.seen[id]; ok {
		return
	}
	n.seen[id] = struct{}{}
	n.order = append(n.order, id)
}

func (n *nodeList) list() []string {
	if n.order == nil {
		return []string{}
	}
	return n.order
}

// bodyLines splits content into trimmed lines with the opening keyword
// line and comment lines removed.
func bodyLines(content string) []string {
	var out []string
	firstSeen := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		if !firstSeen {
			firstSeen = true
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
