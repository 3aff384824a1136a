package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/parsecache"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/testutil"
	"github.com/starford/raido/internal/validator"
)

var testVault = map[string]string{
	"personas/PER_Shopper.mermaid": `---
id: PER_Shopper
title: Shopper
description: A returning customer.
downlinks:
  - JRN_Checkout
---
mindmap
  PER_Shopper
    Goals
      Fast checkout
    Frustrations
      Slow pages
    JRN_Checkout
`,
	"journeys/JRN_Checkout.mermaid": `---
id: JRN_Checkout
title: Checkout
description: The purchase flow.
uplink: PER_Shopper
downlinks:
  - REQ_Pay
---
flowchart TD
  JRN_Checkout --> REQ_Pay
`,
	"requirements/REQ_Pay.mermaid": `---
id: REQ_Pay
title: Payment
description: Take a payment.
uplink: JRN_Checkout
---
requirementDiagram

functionalRequirement REQ_Pay {
  id: 1
  text: charge the card
}
`,
}

// testEnv sets up a temp vault, SQLite DB, service, and router.
// authEnabled=false means disabled mode; authEnabled=true with a
// non-empty token means token mode.
func testEnv(t *testing.T, authToken string) (*Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*Service, http.Handler) {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	for rel, content := range testVault {
		abs := filepath.Join(vaultDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	db := testutil.TestDB(t)

	runner := validator.New(store, parsecache.Open(""), rules.NewEngine(rules.Defaults(), slog.Default()), slog.Default())
	svc := NewService(store, db, runner, nil, slog.Default())
	router := NewRouter(svc, authEnabled, authToken, sseHandler)
	return svc, router
}

func runValidate(t *testing.T, router http.Handler) PassResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/validate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PassResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestValidateAndReport(t *testing.T) {
	_, router := testEnv(t, "")

	resp := runValidate(t, router)
	if resp.Failed {
		t.Fatalf("healthy vault failed: %+v", resp.Violations)
	}
	if resp.Assets != 3 {
		t.Errorf("assets = %d, want 3", resp.Assets)
	}

	// The report endpoint serves the stored outcome.
	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("report = %d", w.Code)
	}
	var report PassResponse
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if report.Assets != 3 || report.Failed {
		t.Errorf("report = %+v", report)
	}
}

func TestGraphEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	runValidate(t, router)

	req := httptest.NewRequest(http.MethodGet, "/graph", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("graph = %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	nodes := resp["nodes"].([]any)
	edges := resp["edges"].([]any)
	if len(nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(nodes))
	}
	if len(edges) < 4 {
		t.Errorf("edges = %d, want >= 4", len(edges))
	}
}

func TestNodeEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	runValidate(t, router)

	req := httptest.NewRequest(http.MethodGet, "/nodes/JRN_Checkout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("node = %d, body = %s", w.Code, w.Body.String())
	}
	var node NodeDetail
	_ = json.Unmarshal(w.Body.Bytes(), &node)
	if node.Path != "journeys/JRN_Checkout.mermaid" {
		t.Errorf("path = %q", node.Path)
	}
	if len(node.Uplinks) != 1 || node.Uplinks[0] != "PER_Shopper" {
		t.Errorf("uplinks = %v", node.Uplinks)
	}
	if len(node.Downlinks) != 1 || node.Downlinks[0] != "REQ_Pay" {
		t.Errorf("downlinks = %v", node.Downlinks)
	}
}

func TestNodeEndpoint_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	runValidate(t, router)

	req := httptest.NewRequest(http.MethodGet, "/nodes/NOPE_X", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing node = %d, want 404", w.Code)
	}
}

func TestDocEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/docs/personas/PER_Shopper.mermaid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("doc = %d", w.Code)
	}
	var doc DocDetail
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.ID != "PER_Shopper" || doc.Title != "Shopper" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Checksum == "" {
		t.Error("checksum missing")
	}
}

func TestDocEndpoint_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/docs/nope.mermaid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing doc = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	runValidate(t, router)

	req := httptest.NewRequest(http.MethodGet, "/search?q=charge", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	results := resp["results"].([]any)
	if len(results) != 1 {
		t.Errorf("search results = %d, want 1", len(results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed report = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", sseStub())

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	_, router := testEnvFull(t, false, "", sseStub())

	// Disabled mode should not 401. The stub blocks until context done,
	// so cancel after a short time.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}
