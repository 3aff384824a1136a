package collector

import (
	"log/slog"
	"testing"

	"github.com/starford/raido/internal/storage"
)

func TestSplitFrontMatter_Typed(t *testing.T) {
	input := []byte(`---
id: PER_Shopper
title: The Shopper
description: Buys things online
entities:
  - id: PER_Shopper_Mobile
    uplink: PER_Shopper
    downlinks:
      - JRN_Checkout
color: blue
---
mindmap
  PER_Shopper
`)
	fm, body := splitFrontMatter(input)
	if fm.ID != "PER_Shopper" {
		t.Errorf("id = %q", fm.ID)
	}
	if fm.Title != "The Shopper" {
		t.Errorf("title = %q", fm.Title)
	}
	if len(fm.Entities) != 1 || fm.Entities[0].ID != "PER_Shopper_Mobile" {
		t.Fatalf("entities = %+v", fm.Entities)
	}
	if fm.Entities[0].Uplink != "PER_Shopper" || len(fm.Entities[0].Downlinks) != 1 {
		t.Errorf("entity links = %+v", fm.Entities[0])
	}
	if fm.Extra == nil || fm.Extra["color"] != "blue" {
		t.Errorf("unknown key not preserved in Extra: %v", fm.Extra)
	}
	if body != "mindmap\n  PER_Shopper\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontMatter_LegacySingleEntity(t *testing.T) {
	input := []byte("---\nid: JRN_Checkout\ntitle: Checkout\nuplink: PER_Shopper\ndownlinks:\n  - REQ_Pay\n---\nflowchart TD\n")
	fm, _ := splitFrontMatter(input)
	if fm.Uplink != "PER_Shopper" {
		t.Errorf("uplink = %q", fm.Uplink)
	}
	if len(fm.Downlinks) != 1 || fm.Downlinks[0] != "REQ_Pay" {
		t.Errorf("downlinks = %v", fm.Downlinks)
	}
}

func TestSplitFrontMatter_NoHeader(t *testing.T) {
	fm, body := splitFrontMatter([]byte("flowchart TD\nA --> B\n"))
	if fm.ID != "" {
		t.Errorf("id = %q, want empty", fm.ID)
	}
	if body != "flowchart TD\nA --> B\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontMatter_InvalidYAMLFallback(t *testing.T) {
	fm, body := splitFrontMatter([]byte("---\n: bad: yaml: {{{\n---\nbody\n"))
	if fm.ID != "" || fm.Extra != nil {
		t.Errorf("expected empty front matter on invalid YAML, got %+v", fm)
	}
	if body == "" {
		t.Error("body must fall back to full content")
	}
}

func TestCollect(t *testing.T) {
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("personas/PER_A.mermaid", []byte("---\nid: PER_A\ntitle: A\ndescription: d\n---\nmindmap\n  PER_A\n"))
	_ = store.Write("notes/readme.md", []byte("no front matter here\n"))

	c := New(store, slog.Default())
	assets, err := c.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}

	byPath := map[string]bool{}
	for _, a := range assets {
		byPath[a.RelPath] = true
		if a.Checksum == "" {
			t.Errorf("missing checksum for %s", a.RelPath)
		}
	}
	if !byPath["personas/PER_A.mermaid"] || !byPath["notes/readme.md"] {
		t.Errorf("unexpected paths: %v", byPath)
	}
}
