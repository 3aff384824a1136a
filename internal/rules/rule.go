// Package rules evaluates a loaded rule set against individual assets
// and against the whole traceability graph, collecting violations
// tagged with enforcement severity. Rules are pure functions of an
// asset and the shared context; the one sanctioned side effect is
// additive metadata written through graph.Context.AddMetadata, and
// every writer documents its readers.
package rules

import (
	"path"
	"strings"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// Hub is site-navigation metadata carried by folder rules. The engine
// only passes it through; the site generator consumes it.
type Hub struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// Meta is the descriptive half of a rule: identity, scope, targeting,
// and enforcement.
// Rule families for reporting purposes.
const (
	TypeStructural   = "structural"
	TypeSyntax       = "syntax"
	TypeMetadata     = "metadata"
	TypeTraceability = "traceability"
)

type Meta struct {
	ID          string
	Name        string
	Level       models.Level
	Type        string
	Enforcement models.Severity
	IDPrefix    string
	PathPattern string
	Hub         *Hub
}

// Rule is one validation check. Project-level rules are called exactly
// once with a nil asset; all other levels are called per matching
// asset. Validate returns human-readable violation messages and must
// not have side effects beyond metadata enrichment.
type Rule interface {
	Meta() Meta
	Validate(asset *models.Asset, ctx *graph.Context) []string
}

// Applies reports whether a rule targets the given asset: either the
// asset's declared identifier matches the rule's ID prefix, or its
// relative path matches the rule's glob pattern. Project-level rules
// ignore per-asset targeting.
func Applies(m Meta, asset *models.Asset) bool {
	if m.Level == models.LevelProject {
		return false
	}
	if m.IDPrefix != "" && asset.Meta.ID != "" && strings.HasPrefix(asset.Meta.ID, m.IDPrefix) {
		return true
	}
	if m.PathPattern != "" && MatchPath(m.PathPattern, asset.RelPath) {
		return true
	}
	return false
}

// MatchPath matches a slash-separated relative path against a
// glob-like pattern. Besides path.Match syntax, "dir/**" matches
// everything under dir and "**/base" matches base in any directory.
func MatchPath(pattern, rel string) bool {
	if pattern == "" {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}
	if base, ok := strings.CutPrefix(pattern, "**/"); ok {
		matched, err := path.Match(base, path.Base(rel))
		return err == nil && matched
	}
	matched, err := path.Match(pattern, rel)
	return err == nil && matched
}

// Report is the outcome of one rule-engine pass.
type Report struct {
	Violations []models.Violation `json:"violations"`
}

// Errors returns the error-enforcement violations.
func (r *Report) Errors() []models.Violation {
	return r.filter(models.SeverityError)
}

// Warnings returns the warning-enforcement violations.
func (r *Report) Warnings() []models.Violation {
	return r.filter(models.SeverityWarning)
}

// Failed reports whether the pass should fail the build: true when any
// error-enforcement violation exists. Warnings never change the
// verdict.
func (r *Report) Failed() bool {
	return len(r.Errors()) > 0
}

func (r *Report) filter(sev models.Severity) []models.Violation {
	var out []models.Violation
	for _, v := range r.Violations {
		if v.Severity == sev {
			out = append(out, v)
		}
	}
	return out
}
