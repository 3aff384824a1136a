package rules

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/starford/raido/internal/analyzer"
	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// KeywordRule checks that a diagram's first meaningful line opens with
// one of the allowed notation keywords.
type KeywordRule struct {
	meta     Meta
	Keywords []string
}

// NewKeywordRule builds a keyword rule for the given notation keywords.
func NewKeywordRule(meta Meta, keywords []string) *KeywordRule {
	return &KeywordRule{meta: meta, Keywords: keywords}
}

func (r *KeywordRule) Meta() Meta { return r.meta }

func (r *KeywordRule) Validate(asset *models.Asset, _ *graph.Context) []string {
	first := analyzer.FirstLine(asset.Body)
	for _, kw := range r.Keywords {
		if strings.HasPrefix(first, kw) {
			return nil
		}
	}
	return []string{fmt.Sprintf("diagram must open with one of %v, found %q", r.Keywords, first)}
}

// RequiredFieldsRule checks that front-matter keys are present and
// non-empty, one violation per missing key.
type RequiredFieldsRule struct {
	meta   Meta
	Fields []string
}

// NewRequiredFieldsRule builds a required-fields rule. An empty field
// list defaults to id, title, and description.
func NewRequiredFieldsRule(meta Meta, fields []string) *RequiredFieldsRule {
	if len(fields) == 0 {
		fields = []string{"id", "title", "description"}
	}
	return &RequiredFieldsRule{meta: meta, Fields: fields}
}

func (r *RequiredFieldsRule) Meta() Meta { return r.meta }

func (r *RequiredFieldsRule) Validate(asset *models.Asset, _ *graph.Context) []string {
	var out []string
	for _, f := range r.Fields {
		var v string
		switch f {
		case "id":
			v = asset.Meta.ID
		case "title":
			v = asset.Meta.Title
		case "description":
			v = asset.Meta.Description
		case "uplink":
			v = asset.Meta.Uplink
		default:
			if asset.Meta.Extra != nil {
				v, _ = asset.Meta.Extra[f].(string)
			}
		}
		if strings.TrimSpace(v) == "" {
			out = append(out, fmt.Sprintf("missing required front-matter field %q", f))
		}
	}
	return out
}

// FilenameIDRule checks that a file's base name (without extension)
// equals its declared identifier.
type FilenameIDRule struct {
	meta Meta
}

func NewFilenameIDRule(meta Meta) *FilenameIDRule { return &FilenameIDRule{meta: meta} }

func (r *FilenameIDRule) Meta() Meta { return r.meta }

func (r *FilenameIDRule) Validate(asset *models.Asset, _ *graph.Context) []string {
	if asset.Meta.ID == "" {
		// Missing id is the required-fields rule's finding.
		return nil
	}
	base := path.Base(asset.RelPath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem != asset.Meta.ID {
		return []string{fmt.Sprintf("file name %q must equal declared id %q", stem, asset.Meta.ID)}
	}
	return nil
}

// IDPrefixRule checks that an asset placed under a governed folder
// declares an identifier starting with that folder's prefix.
type IDPrefixRule struct {
	meta   Meta
	Prefix string
}

func NewIDPrefixRule(meta Meta, prefix string) *IDPrefixRule {
	return &IDPrefixRule{meta: meta, Prefix: prefix}
}

func (r *IDPrefixRule) Meta() Meta { return r.meta }

func (r *IDPrefixRule) Validate(asset *models.Asset, _ *graph.Context) []string {
	if asset.Meta.ID == "" {
		return nil
	}
	if !strings.HasPrefix(asset.Meta.ID, r.Prefix) {
		return []string{fmt.Sprintf("id %q must start with prefix %q", asset.Meta.ID, r.Prefix)}
	}
	return nil
}

// BranchesRule checks that a mindmap document contains every required
// branch label (for instance a persona's Goals branch).
type BranchesRule struct {
	meta     Meta
	Branches []string
}

func NewBranchesRule(meta Meta, branches []string) *BranchesRule {
	return &BranchesRule{meta: meta, Branches: branches}
}

func (r *BranchesRule) Meta() Meta { return r.meta }

func (r *BranchesRule) Validate(asset *models.Asset, _ *graph.Context) []string {
	present := make(map[string]struct{})
	for i, line := range strings.Split(asset.Body, "\n") {
		if i == 0 {
			continue
		}
		present[strings.TrimSpace(line)] = struct{}{}
	}
	var out []string
	for _, branch := range r.Branches {
		if _, ok := present[branch]; !ok {
			out = append(out, fmt.Sprintf("missing required branch %q", branch))
		}
	}
	return out
}

// FolderRegistryRule is the no-rogue-folder policy: every top-level
// directory under the document root must be claimed by exactly one
// folder rule or appear in the exemption set.
type FolderRegistryRule struct {
	meta    Meta
	Claimed []string // folder path prefixes claimed by folder rules
	Exempt  []string
}

func NewFolderRegistryRule(meta Meta, claimed, exempt []string) *FolderRegistryRule {
	return &FolderRegistryRule{meta: meta, Claimed: claimed, Exempt: exempt}
}

func (r *FolderRegistryRule) Meta() Meta { return r.meta }

func (r *FolderRegistryRule) Validate(_ *models.Asset, ctx *graph.Context) []string {
	dirs := make(map[string]struct{})
	for rel := range ctx.Analyses {
		dir, _, found := strings.Cut(rel, "/")
		if !found {
			continue // root-level files are always allowed
		}
		dirs[dir] = struct{}{}
	}

	var out []string
	var sorted []string
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	for _, d := range sorted {
		if containsString(r.Exempt, d) {
			continue
		}
		claims := 0
		for _, c := range r.Claimed {
			if c == d {
				claims++
			}
		}
		switch {
		case claims == 0:
			out = append(out, fmt.Sprintf("directory %q is not claimed by any folder rule", d))
		case claims > 1:
			out = append(out, fmt.Sprintf("directory %q is claimed by %d folder rules, want exactly one", d, claims))
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
