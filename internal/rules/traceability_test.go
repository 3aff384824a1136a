package rules

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

func projMeta(id string) Meta {
	return Meta{ID: id, Level: models.LevelProject, Enforcement: models.SeverityError}
}

func declared(rel, id, uplink string, downlinks ...string) *models.Asset {
	return &models.Asset{
		RelPath: rel,
		Meta:    models.FrontMatter{ID: id, Title: id, Uplink: uplink, Downlinks: downlinks},
	}
}

func buildCtx(assets ...*models.Asset) *graph.Context {
	b := graph.NewBuilder()
	for _, a := range assets {
		b.Add(a, models.Analysis{})
	}
	return b.Context()
}

func TestDuplicateIDRule(t *testing.T) {
	ctx := buildCtx(
		declared("a/DUP_1.mermaid", "DUP_1", ""),
		declared("b/DUP_1.mermaid", "DUP_1", ""),
	)
	msgs := NewDuplicateIDRule(projMeta("graph/duplicate-id")).Validate(nil, ctx)
	if len(msgs) != 1 {
		t.Fatalf("violations = %v, want exactly one", msgs)
	}
	if !strings.Contains(msgs[0], "a/DUP_1.mermaid") || !strings.Contains(msgs[0], "b/DUP_1.mermaid") {
		t.Errorf("violation must name both files: %s", msgs[0])
	}
}

func TestReciprocityRule(t *testing.T) {
	r := NewReciprocityRule(projMeta("graph/reciprocity"))

	// A downlinks B, B has no uplink back: exactly one violation.
	broken := buildCtx(
		declared("p/PER_A.mermaid", "PER_A", "", "JRN_B"),
		declared("j/JRN_B.mermaid", "JRN_B", ""),
	)
	msgs := r.Validate(nil, broken)
	if len(msgs) != 1 {
		t.Fatalf("violations = %v, want exactly one", msgs)
	}
	if !strings.Contains(msgs[0], "PER_A") || !strings.Contains(msgs[0], "JRN_B") {
		t.Errorf("message = %s", msgs[0])
	}

	// Adding the reverse link clears it.
	fixed := buildCtx(
		declared("p/PER_A.mermaid", "PER_A", "", "JRN_B"),
		declared("j/JRN_B.mermaid", "JRN_B", "PER_A"),
	)
	if msgs := r.Validate(nil, fixed); len(msgs) != 0 {
		t.Errorf("fixed graph still violates: %v", msgs)
	}
}

func TestReciprocityRule_ImplicitUplinkAccepted(t *testing.T) {
	// Ownership-derived children satisfy reciprocity without an
	// explicit front-matter uplink.
	b := graph.NewBuilder()
	b.Add(declared("c/COMP_Shop.mermaid", "COMP_Shop", ""), models.Analysis{
		Nodes: []string{"COMP_Cart"},
	})
	b.Add(declared("c/COMP_Cart.mermaid", "COMP_Cart", ""), models.Analysis{})
	ctx := b.Context()

	if msgs := NewReciprocityRule(projMeta("graph/reciprocity")).Validate(nil, ctx); len(msgs) != 0 {
		t.Errorf("implicit ownership must satisfy reciprocity: %v", msgs)
	}
}

func TestOrphanRule(t *testing.T) {
	r := NewOrphanRule(projMeta("graph/orphan"), []string{"DOC_Root"})

	// JRN_B is referenced by PER_A's downlink; PER_A by JRN_B's uplink.
	healthy := buildCtx(
		declared("p/PER_A.mermaid", "PER_A", "", "JRN_B"),
		declared("j/JRN_B.mermaid", "JRN_B", "PER_A"),
	)
	if msgs := r.Validate(nil, healthy); len(msgs) != 0 {
		t.Errorf("healthy graph reported orphans: %v", msgs)
	}

	// Removing the only reference to JRN_B makes it an orphan.
	orphaned := buildCtx(
		declared("p/PER_A.mermaid", "PER_A", ""),
		declared("j/JRN_B.mermaid", "JRN_B", "PER_A"),
	)
	msgs := r.Validate(nil, orphaned)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "JRN_B") {
		t.Errorf("violations = %v, want one orphan for JRN_B", msgs)
	}

	// Exempt identifiers never count as orphans.
	root := buildCtx(declared("DOC_Root.md", "DOC_Root", ""))
	if msgs := r.Validate(nil, root); len(msgs) != 0 {
		t.Errorf("exempt root reported: %v", msgs)
	}
}

func TestDanglingRule(t *testing.T) {
	// A journey's only uplink targets a persona never declared
	// anywhere: dangling, not orphan.
	ctx := buildCtx(
		declared("j/JRN_B.mermaid", "JRN_B", "PER_Ghost"),
	)
	msgs := NewDanglingRule(projMeta("graph/dangling")).Validate(nil, ctx)
	if len(msgs) != 1 {
		t.Fatalf("violations = %v, want one dangling reference", msgs)
	}
	if !strings.Contains(msgs[0], "PER_Ghost") {
		t.Errorf("message = %s", msgs[0])
	}

	// The orphan rule must not fire for the same situation.
	orphans := NewOrphanRule(projMeta("graph/orphan"), nil).Validate(nil, ctx)
	for _, m := range orphans {
		if strings.Contains(m, "PER_Ghost") {
			t.Errorf("undeclared id reported as orphan: %s", m)
		}
	}
}

func TestChainRule_ActorJourney(t *testing.T) {
	chain := &ChainRule{
		meta:       projMeta("graph/actor-journey"),
		FromPrefix: "PER_",
		ToPrefix:   "JRN_",
		Direction:  "uplink",
		MetaKey:    MetaPersonaKind,
		MetaValue:  "behavioral",
	}

	ctx := buildCtx(
		declared("p/PER_A.mermaid", "PER_A", ""),
		declared("p/PER_B.mermaid", "PER_B", ""),
		declared("j/JRN_X.mermaid", "JRN_X", "PER_A"),
	)
	ctx.AddMetadata("PER_A", MetaPersonaKind, "behavioral")
	ctx.AddMetadata("PER_B", MetaPersonaKind, "behavioral")

	msgs := chain.Validate(nil, ctx)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "PER_B") {
		t.Errorf("violations = %v, want one for PER_B only", msgs)
	}
}

func TestChainRule_JourneyFunctionalRequirement(t *testing.T) {
	chain := &ChainRule{
		meta:            projMeta("graph/journey-requirement"),
		FromPrefix:      "JRN_",
		ToPrefix:        "REQ_",
		Direction:       "downlink",
		TargetMetaKey:   MetaRequirementKind,
		TargetMetaValue: "functional",
	}

	ctx := buildCtx(
		declared("j/JRN_X.mermaid", "JRN_X", "", "REQ_Pay"),
		declared("r/REQ_Pay.mermaid", "REQ_Pay", "JRN_X"),
	)

	// Without the functional classification the chain is unmet.
	if msgs := chain.Validate(nil, ctx); len(msgs) != 1 {
		t.Errorf("violations = %v, want one before classification", msgs)
	}

	ctx.AddMetadata("REQ_Pay", MetaRequirementKind, "functional")
	if msgs := chain.Validate(nil, ctx); len(msgs) != 0 {
		t.Errorf("violations = %v after classification, want none", msgs)
	}
}
