package rules

import (
	"fmt"

	"github.com/starford/raido/internal/models"
)

// folderDef describes one governed folder of the default vault layout.
type folderDef struct {
	dir      string
	prefix   string
	keywords []string
	hubTitle string
}

var defaultFolders = []folderDef{
	{dir: "personas", prefix: "PER_", keywords: []string{"mindmap"}, hubTitle: "Personas"},
	{dir: "journeys", prefix: "JRN_", keywords: []string{"flowchart", "graph", "sequenceDiagram"}, hubTitle: "Journeys"},
	{dir: "components", prefix: "COMP_", keywords: []string{"C4Context", "C4Container", "C4Component", "flowchart", "graph"}, hubTitle: "Components"},
	{dir: "requirements", prefix: "REQ_", keywords: []string{"requirementDiagram"}, hubTitle: "Requirements"},
	{dir: "states", prefix: "STA_", keywords: []string{"stateDiagram"}, hubTitle: "States"},
	{dir: "data", prefix: "ENT_", keywords: []string{"erDiagram"}, hubTitle: "Data"},
}

// DefaultOrphanExempt lists identifiers that are allowed to go
// unreferenced, notably the graph root.
var DefaultOrphanExempt = []string{"DOC_Root"}

// defaultFolderExempt lists directories no folder rule needs to claim.
var defaultFolderExempt = []string{"notes", "assets", "templates"}

// Defaults returns the built-in rule set in evaluation order. User
// overrides load after these, so their findings append rather than
// replace.
func Defaults() []Rule {
	var out []Rule

	// Per-folder structural governance.
	for _, f := range defaultFolders {
		pattern := f.dir + "/**"
		hub := &Hub{ID: f.dir, Title: f.hubTitle}

		out = append(out,
			NewKeywordRule(Meta{
				ID:          f.dir + "/keyword",
				Name:        fmt.Sprintf("%s diagrams open with the right keyword", f.hubTitle),
				Level:       models.LevelFile,
				Type:        TypeStructural,
				Enforcement: models.SeverityError,
				PathPattern: pattern,
				Hub:         hub,
			}, f.keywords),
			NewRequiredFieldsRule(Meta{
				ID:          f.dir + "/front-matter",
				Name:        fmt.Sprintf("%s declare id, title, description", f.hubTitle),
				Level:       models.LevelFile,
				Type:        TypeMetadata,
				Enforcement: models.SeverityError,
				PathPattern: pattern,
			}, nil),
			NewIDPrefixRule(Meta{
				ID:          f.dir + "/id-prefix",
				Name:        fmt.Sprintf("%s ids start with %s", f.hubTitle, f.prefix),
				Level:       models.LevelFolder,
				Type:        TypeStructural,
				Enforcement: models.SeverityError,
				PathPattern: pattern,
			}, f.prefix),
		)
	}

	// Filename governance applies to every diagram file.
	out = append(out, NewFilenameIDRule(Meta{
		ID:          "vault/filename-id",
		Name:        "file name equals declared id",
		Level:       models.LevelFile,
		Type:        TypeStructural,
		Enforcement: models.SeverityError,
		PathPattern: "**/*.mermaid",
	}))

	// Persona mindmaps need their canonical branches.
	out = append(out, NewBranchesRule(Meta{
		ID:          "personas/branches",
		Name:        "persona mindmaps carry Goals and Frustrations",
		Level:       models.LevelFile,
		Type:        TypeStructural,
		Enforcement: models.SeverityError,
		IDPrefix:    "PER_",
		PathPattern: "personas/**",
	}, []string{"Goals", "Frustrations"}))

	// Metadata writers. Their readers are the chain rules below.
	out = append(out,
		NewPersonaClassificationRule(Meta{
			ID:          "personas/classify",
			Name:        "classify personas as behavioral or structural",
			Level:       models.LevelFile,
			Type:        TypeMetadata,
			Enforcement: models.SeverityWarning,
			IDPrefix:    "PER_",
			PathPattern: "personas/**",
		}, "JRN_"),
		NewRequirementKindRule(Meta{
			ID:          "requirements/classify",
			Name:        "mark functional requirements",
			Level:       models.LevelFile,
			Type:        TypeMetadata,
			Enforcement: models.SeverityWarning,
			PathPattern: "requirements/**",
		}),
	)

	// Whole-graph rules run after every per-asset rule.
	out = append(out,
		NewDuplicateIDRule(Meta{
			ID:          "graph/duplicate-id",
			Name:        "each identifier is declared by exactly one file",
			Level:       models.LevelProject,
			Type:        TypeStructural,
			Enforcement: models.SeverityError,
		}),
		NewReciprocityRule(Meta{
			ID:          "graph/reciprocity",
			Name:        "downlinks are mirrored by uplinks",
			Level:       models.LevelProject,
			Type:        TypeTraceability,
			Enforcement: models.SeverityError,
		}),
		NewDanglingRule(Meta{
			ID:          "graph/dangling",
			Name:        "links point at declared identifiers",
			Level:       models.LevelProject,
			Type:        TypeTraceability,
			Enforcement: models.SeverityError,
		}),
		NewOrphanRule(Meta{
			ID:          "graph/orphan",
			Name:        "declared identifiers are referenced somewhere",
			Level:       models.LevelProject,
			Type:        TypeTraceability,
			Enforcement: models.SeverityError,
		}, DefaultOrphanExempt),
		&ChainRule{
			meta: Meta{
				ID:          "graph/actor-journey",
				Name:        "behavioral actors anchor at least one journey",
				Level:       models.LevelProject,
				Type:        TypeTraceability,
				Enforcement: models.SeverityWarning,
			},
			FromPrefix: "PER_",
			ToPrefix:   "JRN_",
			Direction:  "uplink",
			MetaKey:    MetaPersonaKind,
			MetaValue:  "behavioral",
		},
		&ChainRule{
			meta: Meta{
				ID:          "graph/journey-requirement",
				Name:        "journeys trace to a functional requirement",
				Level:       models.LevelProject,
				Type:        TypeTraceability,
				Enforcement: models.SeverityWarning,
			},
			FromPrefix:      "JRN_",
			ToPrefix:        "REQ_",
			Direction:       "downlink",
			TargetMetaKey:   MetaRequirementKind,
			TargetMetaValue: "functional",
		},
		NewFolderRegistryRule(Meta{
			ID:          "vault/folder-registry",
			Name:        "every folder is claimed by exactly one folder rule",
			Level:       models.LevelProject,
			Type:        TypeStructural,
			Enforcement: models.SeverityError,
		}, claimedDirs(), defaultFolderExempt),
	)

	return out
}

func claimedDirs() []string {
	dirs := make([]string, len(defaultFolders))
	for i, f := range defaultFolders {
		dirs[i] = f.dir
	}
	return dirs
}
