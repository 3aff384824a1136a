package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	reqDeclRe = regexp.MustCompile(`^(requirement|functionalRequirement|performanceRequirement|interfaceRequirement|physicalRequirement|designConstraint|element)\s+([A-Za-z][A-Za-z0-9_]*)\s*\{?$`)

	// A - satisfies -> B and the reversed A <- satisfies - B form.
	reqRelRe    = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*-\s*(\w+)\s*->\s*([A-Za-z][A-Za-z0-9_]*)$`)
	reqRelRevRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*<-\s*(\w+)\s*-\s*([A-Za-z][A-Za-z0-9_]*)$`)
)

// Requirement analyzes requirement notation.
type Requirement struct{}

func (Requirement) Type() models.DiagramType { return models.DiagramRequirement }

func (Requirement) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship
	depth := 0

	for _, line := range bodyLines(content) {
		if depth > 0 {
			if line == "}" {
				depth--
			}
			continue
		}
		if m := reqDeclRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[2])
			if strings.HasSuffix(line, "{") {
				depth++
			}
			continue
		}
		if m := reqRelRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			nodes.add(m[3])
			rels = append(rels, models.Relationship{From: m[1], To: m[3], Label: m[2]})
			continue
		}
		if m := reqRelRevRe.FindStringSubmatch(line); m != nil {
			// Reversed arrow: the source is on the right.
			nodes.add(m[1])
			nodes.add(m[3])
			rels = append(rels, models.Relationship{From: m[3], To: m[1], Label: m[2]})
		}
	}

	return models.Analysis{
		Type:          models.DiagramRequirement,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
