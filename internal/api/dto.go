package api

import (
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// PassResponse summarizes one validation pass.
type PassResponse struct {
	Assets     int                `json:"assets"`
	Errors     int                `json:"errors"`
	Warnings   int                `json:"warnings"`
	Failed     bool               `json:"failed"`
	Violations []models.Violation `json:"violations"`
}

// NodeDetail is one declared identifier with its traceability edges.
type NodeDetail struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	Title     string   `json:"title"`
	Uplinks   []string `json:"uplinks"`
	Downlinks []string `json:"downlinks"`
	Referrers []string `json:"referrers"`
}

// DocDetail is the full document response type.
type DocDetail struct {
	Path     string `json:"path"`
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// GraphResponse wraps the traceability graph.
type GraphResponse struct {
	Nodes []index.NodeRow `json:"nodes"`
	Edges []index.EdgeRow `json:"edges"`
}
