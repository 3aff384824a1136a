package validator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/starford/raido/internal/parsecache"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/storage"
)

// healthyVault is a minimal project that satisfies the default rule set
// end to end: persona -> journey -> functional requirement.
var healthyVault = map[string]string{
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

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newValidator(t *testing.T, root string, cache *parsecache.Cache) *Validator {
	t.Helper()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	engine := rules.NewEngine(rules.Defaults(), slog.Default())
	return New(store, cache, engine, slog.Default())
}

func TestRun_HealthyVaultPasses(t *testing.T) {
	root := writeVault(t, healthyVault)
	v := newValidator(t, root, parsecache.Open(""))

	res, err := v.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Report.Failed() {
		t.Fatalf("healthy vault failed: %+v", res.Report.Violations)
	}
	if len(res.Report.Violations) != 0 {
		t.Errorf("violations = %+v, want none", res.Report.Violations)
	}
	if len(res.Assets) != 3 {
		t.Errorf("assets = %d, want 3", len(res.Assets))
	}
	if _, ok := res.Context.Nodes["REQ_Pay"]; !ok {
		t.Error("graph missing REQ_Pay")
	}
}

func TestRun_DanglingLinkFailsBuild(t *testing.T) {
	files := map[string]string{}
	for k, v := range healthyVault {
		files[k] = v
	}
	// Point the requirement at a journey that does not exist.
	files["requirements/REQ_Pay.mermaid"] = `---
id: REQ_Pay
title: Payment
description: Take a payment.
uplink: JRN_Missing
---
requirementDiagram

functionalRequirement REQ_Pay {
  id: 1
  text: charge the card
}
`
	root := writeVault(t, files)
	res, err := newValidator(t, root, parsecache.Open("")).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Report.Failed() {
		t.Fatal("dangling uplink must fail the build")
	}

	found := false
	for _, v := range res.Report.Errors() {
		if v.RuleID == "graph/dangling" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %+v, want graph/dangling among them", res.Report.Errors())
	}
}

func TestRun_WarningsNeverFail(t *testing.T) {
	files := map[string]string{}
	for k, v := range healthyVault {
		files[k] = v
	}
	// Drop the functional classification: the journey->requirement chain
	// rule now fires, but only as a warning.
	files["requirements/REQ_Pay.mermaid"] = `---
id: REQ_Pay
title: Payment
description: Take a payment.
uplink: JRN_Checkout
---
requirementDiagram

requirement REQ_Pay {
  id: 1
  text: charge the card
}
`
	root := writeVault(t, files)
	res, err := newValidator(t, root, parsecache.Open("")).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Report.Failed() {
		t.Fatalf("warnings must not fail the build: %+v", res.Report.Violations)
	}
	if len(res.Report.Warnings()) == 0 {
		t.Error("expected a chain warning")
	}
}

func TestRun_CacheIsTransparent(t *testing.T) {
	root := writeVault(t, healthyVault)
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	cold, err := newValidator(t, root, parsecache.Open(cachePath)).Run(context.Background())
	if err != nil {
		t.Fatalf("cold run: %v", err)
	}

	warm, err := newValidator(t, root, parsecache.Open(cachePath)).Run(context.Background())
	if err != nil {
		t.Fatalf("warm run: %v", err)
	}

	// The warm pass must actually hit the cache.
	a, ok := warm.Context.Analyses["journeys/JRN_Checkout.mermaid"]
	if !ok || !a.FromCache {
		t.Errorf("warm analysis not served from cache: %+v", a)
	}

	// And change nothing observable.
	if !reflect.DeepEqual(cold.Report.Violations, warm.Report.Violations) {
		t.Errorf("cold/warm reports differ:\ncold = %+v\nwarm = %+v",
			cold.Report.Violations, warm.Report.Violations)
	}
	if len(cold.Context.Nodes) != len(warm.Context.Nodes) {
		t.Errorf("node counts differ: %d vs %d", len(cold.Context.Nodes), len(warm.Context.Nodes))
	}
	for id, cn := range cold.Context.Nodes {
		wn := warm.Context.Nodes[id]
		if wn == nil || !reflect.DeepEqual(cn.Uplinks, wn.Uplinks) || !reflect.DeepEqual(cn.Downlinks, wn.Downlinks) {
			t.Errorf("node %s differs between passes", id)
		}
	}
}
