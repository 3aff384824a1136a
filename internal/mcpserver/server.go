// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/validator"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	db     *index.DB
	runner *validator.Validator
}

// New creates a new MCP server with all Raido tools registered.
func New(store storage.Provider, db *index.DB, runner *validator.Validator) *Server {
	s := &Server{store: store, db: db, runner: runner}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_project",
		mcp.WithDescription("Run a full validation pass over the vault and return the report: "+
			"structural findings, traceability findings, and whether the build would fail."),
	), s.validateProject)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("trace_id",
		mcp.WithDescription("Trace one identifier through the project graph: its file, "+
			"uplinks, downlinks, and every identifier referencing it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Identifier to trace (e.g. REQ_Login)")),
	), s.traceID)

	s.mcp.AddTool(mcp.NewTool("read_doc",
		mcp.WithDescription("Read the full content of a vault document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. personas/PER_Shopper.mermaid)")),
	), s.readDoc)

	s.mcp.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List all documents or documents in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listDocs)

	s.mcp.AddTool(mcp.NewTool("get_doc_contract",
		mcp.WithDescription("Returns the canonical Raido document format contract. "+
			"Call this before writing documents to ensure they pass validation."),
	), s.getDocContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://doc-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical vault document format that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) validateProject(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload := map[string]any{
		"assets":     len(res.Assets),
		"errors":     len(res.Report.Errors()),
		"warnings":   len(res.Report.Warnings()),
		"failed":     res.Report.Failed(),
		"violations": res.Report.Violations,
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) traceID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := s.db.GetNode(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not declared: %s", id)), nil
	}
	up, down, err := s.db.Trace(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, _ := s.db.Referrers(id)

	payload := map[string]any{
		"id":        node.ID,
		"path":      node.Path,
		"title":     node.Title,
		"uplinks":   up,
		"downlinks": down,
		"referrers": refs,
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getDocContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocFormatContract), nil
}

func (s *Server) readDocFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://doc-format",
			MIMEType: "text/markdown",
			Text:     DocFormatContract,
		},
	}, nil
}
