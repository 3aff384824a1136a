package api

import (
	"context"
	"log/slog"

	"github.com/starford/raido/internal/collector"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/validator"
)

// Service coordinates the validator, storage, and index for the API
// layer.
type Service struct {
	store  storage.Provider
	db     *index.DB
	runner *validator.Validator
	broker *sse.Broker
	logger *slog.Logger
}

// NewService creates a new API service. broker may be nil when no SSE
// clients are served.
func NewService(store storage.Provider, db *index.DB, runner *validator.Validator, broker *sse.Broker, logger *slog.Logger) *Service {
	return &Service{store: store, db: db, runner: runner, broker: broker, logger: logger}
}

// Validate runs a full pass, stores the outcome in the index, and
// broadcasts the summary to SSE clients.
func (s *Service) Validate(ctx context.Context) (*PassResponse, error) {
	res, err := s.runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := index.Sync(s.db, res, s.logger); err != nil {
		s.logger.Warn("api: index sync failed", slog.String("error", err.Error()))
	}

	resp := &PassResponse{
		Assets:     len(res.Assets),
		Errors:     len(res.Report.Errors()),
		Warnings:   len(res.Report.Warnings()),
		Failed:     res.Report.Failed(),
		Violations: res.Report.Violations,
	}
	if resp.Violations == nil {
		resp.Violations = []models.Violation{}
	}

	if s.broker != nil {
		s.broker.PublishPass(sse.PassSummary{
			Assets:   resp.Assets,
			Errors:   resp.Errors,
			Warnings: resp.Warnings,
			Failed:   resp.Failed,
		})
	}
	return resp, nil
}

// Report returns the stored outcome of the latest pass.
func (s *Service) Report() (*PassResponse, error) {
	vs, err := s.db.Violations()
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = []models.Violation{}
	}
	cs, err := s.db.AllChecksums()
	if err != nil {
		return nil, err
	}

	resp := &PassResponse{Assets: len(cs), Violations: vs}
	for _, v := range vs {
		switch v.Severity {
		case models.SeverityError:
			resp.Errors++
		case models.SeverityWarning:
			resp.Warnings++
		}
	}
	resp.Failed = resp.Errors > 0
	return resp, nil
}

// Node returns one declared identifier with its traceability edges.
func (s *Service) Node(id string) (*NodeDetail, error) {
	n, err := s.db.GetNode(id)
	if err != nil {
		return nil, err
	}
	up, down, err := s.db.Trace(id)
	if err != nil {
		return nil, err
	}
	refs, err := s.db.Referrers(id)
	if err != nil {
		return nil, err
	}
	if up == nil {
		up = []string{}
	}
	if down == nil {
		down = []string{}
	}
	if refs == nil {
		refs = []string{}
	}
	return &NodeDetail{
		ID:        n.ID,
		Path:      n.Path,
		Title:     n.Title,
		Uplinks:   up,
		Downlinks: down,
		Referrers: refs,
	}, nil
}

// Doc reads one vault document from storage.
func (s *Service) Doc(path string) (*DocDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	a := collector.NewAsset(path, "", data)
	return &DocDetail{
		Path:     a.RelPath,
		ID:       a.Meta.ID,
		Title:    a.Meta.Title,
		Content:  string(data),
		Checksum: a.Checksum,
	}, nil
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph delegates to the index.
func (s *Service) Graph() ([]index.NodeRow, []index.EdgeRow, error) {
	return s.db.Graph()
}
