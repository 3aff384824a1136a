package index

import (
	"fmt"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// DocRow represents a row in the docs table.
type DocRow struct {
	Path      string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// NodeRow is one declared identifier in the traceability graph.
type NodeRow struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

// EdgeRow is one directed traceability edge. Kind is "uplink" or
// "downlink".
type EdgeRow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDoc inserts or replaces a document and its FTS entry within a
// transaction.
func (db *DB) UpsertDoc(d DocRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO docs (path, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert doc: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDoc removes a document and its FTS entry.
func (db *DB) DeleteDoc(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM docs WHERE path = ?`, path)

	return tx.Commit()
}

// AllChecksums returns path -> checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM docs`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ReplaceGraph swaps the stored graph for the given one in a single
// transaction. A validation pass always produces the complete graph, so
// replacement is simpler and safer than diffing.
func (db *DB) ReplaceGraph(nodes []NodeRow, edges []EdgeRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM nodes`)
	_, _ = tx.Exec(`DELETE FROM edges`)

	nodeStmt, err := tx.Prepare(`INSERT OR REPLACE INTO nodes (id, path, title) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare node insert: %w", err)
	}
	defer nodeStmt.Close()
	for _, n := range nodes {
		if _, err := nodeStmt.Exec(n.ID, n.Path, n.Title); err != nil {
			return fmt.Errorf("index: insert node: %w", err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT OR IGNORE INTO edges (source, target, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()
	for _, e := range edges {
		if _, err := edgeStmt.Exec(e.Source, e.Target, e.Kind); err != nil {
			return fmt.Errorf("index: insert edge: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceViolations swaps the stored violations for the given set.
func (db *DB) ReplaceViolations(vs []models.Violation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM violations`)

	stmt, err := tx.Prepare(`INSERT INTO violations (rule_id, severity, file, message) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare violation insert: %w", err)
	}
	defer stmt.Close()
	for _, v := range vs {
		if _, err := stmt.Exec(v.RuleID, string(v.Severity), v.File, v.Message); err != nil {
			return fmt.Errorf("index: insert violation: %w", err)
		}
	}

	return tx.Commit()
}

// GetNode returns one declared identifier, or apperr.ErrNotFound.
func (db *DB) GetNode(id string) (*NodeRow, error) {
	var n NodeRow
	err := db.conn.QueryRow(`SELECT id, path, title FROM nodes WHERE id = ?`, id).
		Scan(&n.ID, &n.Path, &n.Title)
	if err != nil {
		return nil, fmt.Errorf("index: node %s: %w", id, apperr.ErrNotFound)
	}
	return &n, nil
}

// Trace returns the uplink and downlink targets of one identifier.
func (db *DB) Trace(id string) (uplinks, downlinks []string, err error) {
	rows, err := db.conn.Query(`SELECT target, kind FROM edges WHERE source = ? ORDER BY target`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("index: trace: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var target, kind string
		if err := rows.Scan(&target, &kind); err != nil {
			return nil, nil, err
		}
		switch kind {
		case "uplink":
			uplinks = append(uplinks, target)
		case "downlink":
			downlinks = append(downlinks, target)
		}
	}
	return uplinks, downlinks, rows.Err()
}

// Referrers returns every identifier with an edge pointing at target.
func (db *DB) Referrers(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM edges WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: referrers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Graph returns the full stored graph.
func (db *DB) Graph() ([]NodeRow, []EdgeRow, error) {
	nodeRows, err := db.conn.Query(`SELECT id, path, title FROM nodes ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []NodeRow
	for nodeRows.Next() {
		var n NodeRow
		if err := nodeRows.Scan(&n.ID, &n.Path, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`SELECT source, target, kind FROM edges ORDER BY source, target, kind`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []EdgeRow
	for edgeRows.Next() {
		var e EdgeRow
		if err := edgeRows.Scan(&e.Source, &e.Target, &e.Kind); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, edges, edgeRows.Err()
}

// Violations returns the violations stored by the latest pass.
func (db *DB) Violations() ([]models.Violation, error) {
	rows, err := db.conn.Query(`SELECT rule_id, severity, file, message FROM violations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("index: violations: %w", err)
	}
	defer rows.Close()

	var out []models.Violation
	for rows.Next() {
		var v models.Violation
		var sev string
		if err := rows.Scan(&v.RuleID, &sev, &v.File, &v.Message); err != nil {
			return nil, err
		}
		v.Severity = models.Severity(sev)
		out = append(out, v)
	}
	return out, rows.Err()
}
