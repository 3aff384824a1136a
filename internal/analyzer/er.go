package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	// CUSTOMER ||--o{ ORDER : places — cardinality markers around a
	// solid (--) or dashed (..) line.
	erRelRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)\s+[|}o][|o]?(?:--|\.\.)[|o]?[|{o]\s+([A-Za-z][A-Za-z0-9_-]*)\s*:\s*"?([^"]*)"?$`)

	// CUSTOMER { — attribute block opener declares the entity.
	erEntityRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)\s*\{?$`)
)

// EntityRelation analyzes entity-relationship notation.
type EntityRelation struct{}

func (EntityRelation) Type() models.DiagramType { return models.DiagramER }

func (EntityRelation) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship
	inBlock := false

	for _, line := range bodyLines(content) {
		if inBlock {
			if line == "}" || strings.HasSuffix(line, "}") {
				inBlock = false
			}
			continue
		}
		if m := erRelRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			nodes.add(m[2])
			rels = append(rels, models.Relationship{
				From:  m[1],
				To:    m[2],
				Label: strings.TrimSpace(m[3]),
			})
			continue
		}
		if m := erEntityRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			if strings.HasSuffix(line, "{") {
				inBlock = true
			}
		}
	}

	return models.Analysis{
		Type:          models.DiagramER,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
