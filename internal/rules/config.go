package rules

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

// TargetConfig narrows which assets a configured rule applies to.
type TargetConfig struct {
	IDPrefix    string `yaml:"idPrefix"`
	PathPattern string `yaml:"pathPattern"`
}

// RuleConfig is one rule entry in the rule configuration document. The
// kind field selects an implementation from a fixed catalog; params
// carry the implementation-specific knobs.
type RuleConfig struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Kind        string          `yaml:"kind"`
	Level       models.Level    `yaml:"level"`
	Type        string          `yaml:"type"`
	Enforcement models.Severity `yaml:"enforcement"`
	Target      TargetConfig    `yaml:"target"`
	Hub         *Hub            `yaml:"hub"`
	Params      map[string]any  `yaml:"params"`
}

// Validate checks one rule entry.
func (c *RuleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Kind, validation.Required, validation.By(knownKind)),
		validation.Field(&c.Level, validation.Required, validation.In(
			models.LevelProject, models.LevelFolder, models.LevelFile, models.LevelNode)),
		validation.Field(&c.Enforcement, validation.Required, validation.In(
			models.SeverityError, models.SeverityWarning)),
		validation.Field(&c.Type, validation.In(
			TypeStructural, TypeSyntax, TypeMetadata, TypeTraceability)),
	)
}

func knownKind(value any) error {
	kind, _ := value.(string)
	if _, ok := catalog[kind]; !ok {
		return fmt.Errorf("unknown rule kind %q", kind)
	}
	return nil
}

type ruleDocument struct {
	Rules []RuleConfig `yaml:"rules"`
}

// factory builds a rule implementation from metadata and params.
type factory func(meta Meta, params map[string]any) (Rule, error)

// catalog maps a configured kind to its implementation. A code-defined
// rule that needs fully custom logic simply implements Rule and is
// appended to the engine's set directly.
var catalog = map[string]factory{
	"keyword": func(m Meta, p map[string]any) (Rule, error) {
		kws := stringList(p, "keywords")
		if len(kws) == 0 {
			return nil, fmt.Errorf("keyword rule needs params.keywords")
		}
		return NewKeywordRule(m, kws), nil
	},
	"required-fields": func(m Meta, p map[string]any) (Rule, error) {
		return NewRequiredFieldsRule(m, stringList(p, "fields")), nil
	},
	"filename-id": func(m Meta, _ map[string]any) (Rule, error) {
		return NewFilenameIDRule(m), nil
	},
	"id-prefix": func(m Meta, p map[string]any) (Rule, error) {
		prefix := stringParam(p, "prefix")
		if prefix == "" {
			prefix = m.IDPrefix
		}
		if prefix == "" {
			return nil, fmt.Errorf("id-prefix rule needs params.prefix or target.idPrefix")
		}
		return NewIDPrefixRule(m, prefix), nil
	},
	"branches": func(m Meta, p map[string]any) (Rule, error) {
		branches := stringList(p, "branches")
		if len(branches) == 0 {
			return nil, fmt.Errorf("branches rule needs params.branches")
		}
		return NewBranchesRule(m, branches), nil
	},
	"duplicate-id": func(m Meta, _ map[string]any) (Rule, error) {
		return NewDuplicateIDRule(m), nil
	},
	"reciprocity": func(m Meta, _ map[string]any) (Rule, error) {
		return NewReciprocityRule(m), nil
	},
	"orphan": func(m Meta, p map[string]any) (Rule, error) {
		return NewOrphanRule(m, stringList(p, "exempt")), nil
	},
	"dangling": func(m Meta, _ map[string]any) (Rule, error) {
		return NewDanglingRule(m), nil
	},
	"folder-registry": func(m Meta, p map[string]any) (Rule, error) {
		return NewFolderRegistryRule(m, stringList(p, "claimed"), stringList(p, "exempt")), nil
	},
	"persona-classification": func(m Meta, p map[string]any) (Rule, error) {
		return NewPersonaClassificationRule(m, stringParam(p, "journeyPrefix")), nil
	},
	"requirement-kind": func(m Meta, _ map[string]any) (Rule, error) {
		return NewRequirementKindRule(m), nil
	},
	"chain": func(m Meta, p map[string]any) (Rule, error) {
		r := &ChainRule{
			meta:            m,
			FromPrefix:      stringParam(p, "fromPrefix"),
			ToPrefix:        stringParam(p, "toPrefix"),
			Direction:       stringParam(p, "direction"),
			MetaKey:         stringParam(p, "metaKey"),
			MetaValue:       stringParam(p, "metaValue"),
			TargetMetaKey:   stringParam(p, "targetMetaKey"),
			TargetMetaValue: stringParam(p, "targetMetaValue"),
		}
		if r.FromPrefix == "" || r.ToPrefix == "" {
			return nil, fmt.Errorf("chain rule needs params.fromPrefix and params.toPrefix")
		}
		if r.Direction != "uplink" && r.Direction != "downlink" {
			return nil, fmt.Errorf("chain rule direction must be uplink or downlink, got %q", r.Direction)
		}
		return r, nil
	},
}

// Load reads a rule configuration document and builds the configured
// rules in order. An unreadable or invalid document is a fatal error:
// it aborts before any asset processing begins.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds rules from raw YAML.
func Parse(data []byte) ([]Rule, error) {
	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: parse config: %w", err)
	}

	out := make([]Rule, 0, len(doc.Rules))
	for i := range doc.Rules {
		rc := &doc.Rules[i]
		if err := rc.Validate(); err != nil {
			return nil, fmt.Errorf("rules: rule %q: %w", rc.ID, err)
		}
		meta := Meta{
			ID:          rc.ID,
			Name:        rc.Name,
			Level:       rc.Level,
			Type:        rc.Type,
			Enforcement: rc.Enforcement,
			IDPrefix:    rc.Target.IDPrefix,
			PathPattern: rc.Target.PathPattern,
			Hub:         rc.Hub,
		}
		rule, err := catalog[rc.Kind](meta, rc.Params)
		if err != nil {
			return nil, fmt.Errorf("rules: rule %q: %w", rc.ID, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	s, _ := params[key].(string)
	return s
}

func stringList(params map[string]any, key string) []string {
	if params == nil {
		return nil
	}
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
