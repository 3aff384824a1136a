package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	// participant ID / actor ID, optionally "as Human Label". The
	// declared identifier is always the canonical one; the trailing
	// label fragment is display-only and must never be extracted, or a
	// multi-word alias would be misread as several identifiers.
	seqDeclRe = regexp.MustCompile(`^(?:participant|actor)\s+([A-Za-z][A-Za-z0-9_]*)(?:\s+as\s+.+)?$`)

	// Messages: A->B, A->>B, A-->>B, A-xB, A-)B, with an optional
	// ": label" suffix and optional +/- activation marker.
	seqMsgRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:--?(?:>>|>|[x)]))\s*[+-]?\s*([A-Za-z][A-Za-z0-9_]*)\s*(?::\s*(.*))?$`)
)

// Sequence analyzes sequence notation. Both actor and participant
// declarations are recognized; message endpoints that were never
// declared are added implicitly, matching Mermaid's own behavior.
type Sequence struct{}

func (Sequence) Type() models.DiagramType { return models.DiagramSequence }

func (Sequence) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship

	for _, line := range bodyLines(content) {
		if m := seqDeclRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			continue
		}
		if m := seqMsgRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			nodes.add(m[2])
			rels = append(rels, models.Relationship{
				From:  m[1],
				To:    m[2],
				Label: strings.TrimSpace(m[3]),
			})
		}
	}

	return models.Analysis{
		Type:          models.DiagramSequence,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
