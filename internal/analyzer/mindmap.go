package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

// Mindmap branches are plain prose; only labels matching the project
// identifier convention (KIND_Name) count as declared identifiers.
var mindmapIDRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*_[A-Za-z0-9_]+$`)

// Mindmap analyzes mindmap notation. The hierarchy is defined purely by
// indentation; an edge is emitted from the nearest identifier ancestor
// to each identifier branch beneath it.
type Mindmap struct{}

func (Mindmap) Type() models.DiagramType { return models.DiagramMindmap }

func (Mindmap) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship

	// Stack of (indent, identifier) for ancestors that are identifiers.
	type frame struct {
		indent int
		id     string
	}
	var stack []frame

	firstSeen := false
	for _, raw := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		if !firstSeen {
			firstSeen = true
			continue
		}

		indent := indentOf(raw)
		label := cleanMindmapLabel(trimmed)

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if !mindmapIDRe.MatchString(label) {
			continue
		}
		nodes.add(label)
		if len(stack) > 0 {
			rels = append(rels, models.Relationship{
				From: stack[len(stack)-1].id,
				To:   label,
			})
		}
		stack = append(stack, frame{indent: indent, id: label})
	}

	return models.Analysis{
		Type:          models.DiagramMindmap,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// cleanMindmapLabel strips shape delimiters: ((text)), (text), [text],
// and icon/class markers.
func cleanMindmapLabel(s string) string {
	s = strings.TrimSpace(s)
	for {
		switch {
		case strings.HasPrefix(s, "((") && strings.HasSuffix(s, "))"):
			s = strings.TrimSpace(s[2 : len(s)-2])
		case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
			s = strings.TrimSpace(s[1 : len(s)-1])
		case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
			s = strings.TrimSpace(s[1 : len(s)-1])
		default:
			return s
		}
	}
}
