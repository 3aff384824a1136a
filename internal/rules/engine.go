package rules

import (
	"log/slog"

	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
)

// Engine applies a loaded rule set to every asset and to the whole
// project context.
//
// Rules run strictly in load order (built-in defaults first, then user
// overrides), one after another, so metadata producer/consumer pairs
// are deterministic. Violations are batched: a pass always surfaces
// every problem at once, and the engine itself never terminates the
// process — the caller decides exit behavior from the report.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine creates an engine over the given rules, in order.
func NewEngine(ruleSet []Rule, logger *slog.Logger) *Engine {
	return &Engine{rules: ruleSet, logger: logger}
}

// Rules returns the loaded rule set in evaluation order.
func (e *Engine) Rules() []Rule { return e.rules }

// Evaluate runs every rule and returns the collected report. The
// context must be fully built before this is called; rules treat it as
// read-only apart from the sanctioned metadata side channel.
func (e *Engine) Evaluate(assets []*models.Asset, ctx *graph.Context) *Report {
	report := &Report{}

	for _, rule := range e.rules {
		m := rule.Meta()

		if m.Level == models.LevelProject {
			for _, msg := range rule.Validate(nil, ctx) {
				report.Violations = append(report.Violations, models.Violation{
					RuleID:   m.ID,
					Severity: m.Enforcement,
					Message:  msg,
				})
			}
			continue
		}

		for _, asset := range assets {
			if !Applies(m, asset) {
				continue
			}
			for _, msg := range rule.Validate(asset, ctx) {
				report.Violations = append(report.Violations, models.Violation{
					RuleID:   m.ID,
					Severity: m.Enforcement,
					File:     asset.RelPath,
					Message:  msg,
				})
			}
		}
	}

	e.logger.Debug("rules: evaluation complete",
		slog.Int("rules", len(e.rules)),
		slog.Int("violations", len(report.Violations)))
	return report
}
