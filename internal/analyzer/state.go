package analyzer

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

var (
	// state "Human label" as ID — quoted-alias declaration.
	stateAliasRe = regexp.MustCompile(`^state\s+"[^"]*"\s+as\s+([A-Za-z][A-Za-z0-9_]*)`)

	// state ID / state ID { — bare declaration, possibly a composite.
	stateBareRe = regexp.MustCompile(`^state\s+([A-Za-z][A-Za-z0-9_]*)`)

	// ID : description — declares ID as a side effect.
	stateDescRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*:`)

	// Transitions: A --> B : label. [*] endpoints are pseudo-states and
	// are not identifiers.
	stateTransRe = regexp.MustCompile(`^(\[\*\]|[A-Za-z][A-Za-z0-9_]*)\s*-->\s*(\[\*\]|[A-Za-z][A-Za-z0-9_]*)\s*(?::\s*(.*))?$`)
)

// State analyzes state-machine notation.
type State struct{}

func (State) Type() models.DiagramType { return models.DiagramState }

func (State) Analyze(content string) models.Analysis {
	nodes := newNodeList()
	var rels []models.Relationship

	for _, line := range bodyLines(content) {
		if line == "}" || strings.HasPrefix(line, "direction") || strings.HasPrefix(line, "note") {
			continue
		}
		if m := stateAliasRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			continue
		}
		if m := stateTransRe.FindStringSubmatch(line); m != nil {
			from, to := m[1], m[2]
			if from != "[*]" {
				nodes.add(from)
			}
			if to != "[*]" {
				nodes.add(to)
			}
			if from != "[*]" && to != "[*]" {
				rels = append(rels, models.Relationship{
					From:  from,
					To:    to,
					Label: strings.TrimSpace(m[3]),
				})
			}
			continue
		}
		if m := stateBareRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
			continue
		}
		if m := stateDescRe.FindStringSubmatch(line); m != nil {
			nodes.add(m[1])
		}
	}

	return models.Analysis{
		Type:          models.DiagramState,
		Nodes:         nodes.list(),
		Relationships: rels,
	}
}
