package rules

import (
	"regexp"
	"strings"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// Metadata keys written by classification rules. Writers run before
// their readers in the built-in load order.
const (
	// MetaPersonaKind is written by PersonaClassificationRule and read
	// by the actor-journey chain rule. Values: "behavioral",
	// "structural".
	MetaPersonaKind = "personaKind"

	// MetaRequirementKind is written by RequirementKindRule and read by
	// the journey-requirement chain rule. Value: "functional".
	MetaRequirementKind = "requirementKind"
)

// PersonaClassificationRule classifies each persona as behavioral or
// structural from its mindmap: a persona whose map branches into at
// least one journey identifier is behavioral. It never reports
// violations; it only enriches node metadata for later rules.
type PersonaClassificationRule struct {
	meta          Meta
	JourneyPrefix string
}

func NewPersonaClassificationRule(meta Meta, journeyPrefix string) *PersonaClassificationRule {
	if journeyPrefix == "" {
		journeyPrefix = "JRN_"
	}
	return &PersonaClassificationRule{meta: meta, JourneyPrefix: journeyPrefix}
}

func (r *PersonaClassificationRule) Meta() Meta { return r.meta }

func (r *PersonaClassificationRule) Validate(asset *models.Asset, ctx *graph.Context) []string {
	id := asset.Meta.ID
	if id == "" || !ctx.Declared(id) {
		return nil
	}
	kind := "structural"
	analysis := ctx.Analyses[asset.RelPath]
	for _, node := range analysis.Nodes {
		if strings.HasPrefix(node, r.JourneyPrefix) {
			kind = "behavioral"
			break
		}
	}
	ctx.AddMetadata(id, MetaPersonaKind, kind)
	return nil
}

var functionalReqRe = regexp.MustCompile(`(?m)^\s*functionalRequirement\s+([A-Za-z][A-Za-z0-9_]*)`)

// RequirementKindRule marks every requirement declared with the
// functionalRequirement keyword as functional. Metadata-only, no
// violations.
type RequirementKindRule struct {
	meta Meta
}

func NewRequirementKindRule(meta Meta) *RequirementKindRule {
	return &RequirementKindRule{meta: meta}
}

func (r *RequirementKindRule) Meta() Meta { return r.meta }

func (r *RequirementKindRule) Validate(asset *models.Asset, ctx *graph.Context) []string {
	for _, m := range functionalReqRe.FindAllStringSubmatch(asset.Body, -1) {
		ctx.AddMetadata(m[1], MetaRequirementKind, "functional")
	}
	return nil
}
