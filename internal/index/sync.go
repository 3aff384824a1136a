package index

import (
	"log/slog"
	"sort"
	"time"

	"github.com/starford/raido/internal/validator"
)

// Sync stores the outcome of one validation pass: documents (for
// search), the full traceability graph, and the pass violations.
// Unchanged documents are skipped by checksum; documents removed from
// the vault are dropped from the index.
func Sync(db *DB, res *validator.Result, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	now := time.Now()
	seen := make(map[string]struct{}, len(res.Assets))
	for _, a := range res.Assets {
		seen[a.RelPath] = struct{}{}

		if checksums[a.RelPath] == a.Checksum {
			continue
		}
		row := DocRow{
			Path:      a.RelPath,
			Title:     a.Meta.Title,
			Checksum:  a.Checksum,
			UpdatedAt: now,
		}
		if err := db.UpsertDoc(row, a.Body); err != nil {
			logger.Warn("sync: upsert failed",
				slog.String("path", a.RelPath),
				slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", a.RelPath))
		}
	}

	for p := range checksums {
		if _, ok := seen[p]; !ok {
			if err := db.DeleteDoc(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	nodes, edges := flatten(res)
	if err := db.ReplaceGraph(nodes, edges); err != nil {
		return err
	}
	return db.ReplaceViolations(res.Report.Violations)
}

// flatten turns the in-memory graph into sorted row sets.
func flatten(res *validator.Result) ([]NodeRow, []EdgeRow) {
	ids := make([]string, 0, len(res.Context.Nodes))
	for id := range res.Context.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nodes := make([]NodeRow, 0, len(ids))
	var edges []EdgeRow
	for _, id := range ids {
		n := res.Context.Nodes[id]
		nodes = append(nodes, NodeRow{ID: n.ID, Path: n.File, Title: n.Title})
		for _, u := range n.Uplinks {
			edges = append(edges, EdgeRow{Source: n.ID, Target: u, Kind: "uplink"})
		}
		for _, d := range n.Downlinks {
			edges = append(edges, EdgeRow{Source: n.ID, Target: d, Kind: "downlink"})
		}
	}
	return nodes, edges
}
