// Package models defines the domain types for Raido.
package models

// DiagramType identifies the notation family a diagram is written in.
type DiagramType string

// Known notation families.
const (
	DiagramFlowchart   DiagramType = "flowchart"
	DiagramSequence    DiagramType = "sequence"
	DiagramState       DiagramType = "state"
	DiagramER          DiagramType = "er"
	DiagramMindmap     DiagramType = "mindmap"
	DiagramRequirement DiagramType = "requirement"
	DiagramC4          DiagramType = "c4"
	DiagramUnknown     DiagramType = "unknown"
)

// Relationship is a directed edge extracted from diagram source.
type Relationship struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Analysis is the result of extracting identifiers and relationships
// from one diagram's source text. It is derived deterministically from
// the raw content and never mutated after creation.
type Analysis struct {
	Type          DiagramType    `json:"diagramType"`
	Nodes         []string       `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
	FromCache     bool           `json:"-"`
}

// Entity is one declared entity inside a document's front matter.
type Entity struct {
	ID           string   `yaml:"id" json:"id"`
	Uplink       string   `yaml:"uplink,omitempty" json:"uplink,omitempty"`
	Downlinks    []string `yaml:"downlinks,omitempty" json:"downlinks,omitempty"`
	Requirements []string `yaml:"requirements,omitempty" json:"requirements,omitempty"`
}

// FrontMatter is the typed header block of a vault document. Keys the
// schema does not know about are preserved in Extra rather than dropped.
type FrontMatter struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Uplink      string         `yaml:"uplink,omitempty" json:"uplink,omitempty"`
	Downlinks   []string       `yaml:"downlinks,omitempty" json:"downlinks,omitempty"`
	Entities    []Entity       `yaml:"entities,omitempty" json:"entities,omitempty"`
	Extra       map[string]any `yaml:"-" json:"extra,omitempty"`
}

// Asset is one source file in the documentation vault, read once per
// build pass and immutable for the pass's duration. Body holds the
// content below the front matter block; diagram analyzers operate on
// it rather than on the raw file.
type Asset struct {
	RelPath  string      `json:"relativePath"`
	AbsPath  string      `json:"absolutePath"`
	Raw      []byte      `json:"-"`
	Body     string      `json:"-"`
	Meta     FrontMatter `json:"frontMatter"`
	Checksum string      `json:"checksum"`
}

// Severity is a rule's enforcement level: error violations fail the
// build, warnings only log.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Level is the scope a rule operates at.
type Level string

const (
	LevelProject Level = "project"
	LevelFolder  Level = "folder"
	LevelFile    Level = "file"
	LevelNode    Level = "node"
)

// Violation is one rule finding. Violations are values, never errors:
// they are collected and reported together at the end of a pass.
type Violation struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	File     string   `json:"file,omitempty"`
	Message  string   `json:"message"`
}
