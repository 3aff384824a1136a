package index

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/graph"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/validator"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"docs", "nodes", "edges", "violations"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertDocAndChecksums(t *testing.T) {
	db := testDB(t)
	row := DocRow{
		Path:      "personas/PER_A.mermaid",
		Title:     "Shopper",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertDoc(row, "mindmap\n  PER_A\n"); err != nil {
		t.Fatalf("UpsertDoc: %v", err)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if cs["personas/PER_A.mermaid"] != "abc123" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestDeleteDoc(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, "body")

	if err := db.DeleteDoc("del.md"); err != nil {
		t.Fatalf("DeleteDoc: %v", err)
	}
	cs, _ := db.AllChecksums()
	if _, ok := cs["del.md"]; ok {
		t.Error("deleted doc still indexed")
	}
}

func TestReplaceGraphAndTrace(t *testing.T) {
	db := testDB(t)

	nodes := []NodeRow{
		{ID: "PER_A", Path: "personas/PER_A.mermaid", Title: "Shopper"},
		{ID: "JRN_B", Path: "journeys/JRN_B.mermaid", Title: "Checkout"},
	}
	edges := []EdgeRow{
		{Source: "PER_A", Target: "JRN_B", Kind: "downlink"},
		{Source: "JRN_B", Target: "PER_A", Kind: "uplink"},
	}
	if err := db.ReplaceGraph(nodes, edges); err != nil {
		t.Fatalf("ReplaceGraph: %v", err)
	}

	up, down, err := db.Trace("JRN_B")
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(up) != 1 || up[0] != "PER_A" || len(down) != 0 {
		t.Errorf("trace = up %v down %v", up, down)
	}

	refs, err := db.Referrers("JRN_B")
	if err != nil {
		t.Fatalf("Referrers: %v", err)
	}
	if len(refs) != 1 || refs[0] != "PER_A" {
		t.Errorf("referrers = %v", refs)
	}

	// A later pass replaces the graph wholesale.
	if err := db.ReplaceGraph([]NodeRow{{ID: "PER_A"}}, nil); err != nil {
		t.Fatalf("ReplaceGraph: %v", err)
	}
	if _, err := db.GetNode("JRN_B"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stale node survived replacement: %v", err)
	}
}

func TestViolationsRoundTrip(t *testing.T) {
	db := testDB(t)
	in := []models.Violation{
		{RuleID: "graph/orphan", Severity: models.SeverityError, File: "a.mermaid", Message: "JRN_B is never referenced"},
		{RuleID: "graph/actor-journey", Severity: models.SeverityWarning, Message: "PER_A anchors no journey"},
	}
	if err := db.ReplaceViolations(in); err != nil {
		t.Fatalf("ReplaceViolations: %v", err)
	}
	out, err := db.Violations()
	if err != nil {
		t.Fatalf("Violations: %v", err)
	}
	if len(out) != 2 || out[0].RuleID != "graph/orphan" || out[1].Severity != models.SeverityWarning {
		t.Errorf("violations = %+v", out)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDoc(DocRow{Path: "s.md", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

func TestSync_FromPassResult(t *testing.T) {
	db := testDB(t)

	a := &models.Asset{
		RelPath:  "personas/PER_A.mermaid",
		Body:     "mindmap\n  PER_A\n",
		Checksum: "c1",
		Meta:     models.FrontMatter{ID: "PER_A", Title: "Shopper", Downlinks: []string{"JRN_B"}},
	}
	b := &models.Asset{
		RelPath:  "journeys/JRN_B.mermaid",
		Body:     "flowchart TD\n",
		Checksum: "c2",
		Meta:     models.FrontMatter{ID: "JRN_B", Title: "Checkout", Uplink: "PER_A"},
	}
	gb := graph.NewBuilder()
	gb.Add(a, models.Analysis{})
	gb.Add(b, models.Analysis{})

	res := &validator.Result{
		Assets:  []*models.Asset{a, b},
		Context: gb.Context(),
		Report:  &rules.Report{Violations: []models.Violation{{RuleID: "x", Severity: models.SeverityWarning, Message: "m"}}},
	}
	if err := Sync(db, res, slog.Default()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	n, err := db.GetNode("PER_A")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if n.Path != "personas/PER_A.mermaid" || n.Title != "Shopper" {
		t.Errorf("node = %+v", n)
	}

	_, down, err := db.Trace("PER_A")
	if err != nil || len(down) != 1 || down[0] != "JRN_B" {
		t.Errorf("trace = %v (%v)", down, err)
	}

	vs, _ := db.Violations()
	if len(vs) != 1 {
		t.Errorf("violations = %+v", vs)
	}

	// A file dropped from the vault leaves the index on the next sync.
	res.Assets = res.Assets[:1]
	if err := Sync(db, res, slog.Default()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	cs, _ := db.AllChecksums()
	if _, ok := cs["journeys/JRN_B.mermaid"]; ok {
		t.Error("stale doc survived sync")
	}
}
