package main

// Notes:
// - loadDocument: we test every record type, the configured and per-file
//   policies, createdAt resolution and the error sentinels.
// - discoverDocuments: we test files, directories and rejected inputs.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/config"
	"github.com/Abdul-Razack/docpreview/internal/dateutil"
)

// ---------------------------------------------------------------------------
// TestLoadDocument - YAML to Document
// ---------------------------------------------------------------------------

func TestLoadDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "order.yaml", `
kind: purchase-order
title: Purchase Order PO-1042
reference: PO-1042
createdBy: Ada
createdAt: auto
note: Internal use only
columns: [Part, Description, Qty]
records:
  - type: keyvalue
    title: Vendor
    fields:
      - {key: Name, value: Acme}
      - {key: City, value: Lyon}
  - type: row
    cells: [BRK-220, Brake pad, "4"]
  - type: file
    name: drawing.png
    source: ./drawing.png
    caption: Assembly drawing
`)

	doc, err := loadDocument(path, config.DefaultConfig(), testNow)
	if err != nil {
		t.Fatalf("loadDocument() error = %v", err)
	}

	if doc.Kind != "purchase-order" || doc.Title != "Purchase Order PO-1042" {
		t.Errorf("kind/title = %q/%q", doc.Kind, doc.Title)
	}
	if doc.CreatedAt != "2026-05-04" {
		t.Errorf("CreatedAt = %q, want 2026-05-04", doc.CreatedAt)
	}
	if doc.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", doc.BaseDir, dir)
	}
	if doc.Note != "Internal use only" {
		t.Errorf("Note = %q", doc.Note)
	}

	wantKinds := []docpreview.Kind{docpreview.KindKeyValue, docpreview.KindRow, docpreview.KindFile}
	if len(doc.Records) != len(wantKinds) {
		t.Fatalf("got %d records, want %d", len(doc.Records), len(wantKinds))
	}
	for i, k := range wantKinds {
		if doc.Records[i].Kind() != k {
			t.Errorf("record %d kind = %q, want %q", i, doc.Records[i].Kind(), k)
		}
	}

	kv := doc.Records[0].Payload.(docpreview.KeyValueBlock)
	if kv.Title != "Vendor" || len(kv.Fields) != 2 || kv.Fields[1] != (docpreview.Field{Key: "City", Value: "Lyon"}) {
		t.Errorf("keyvalue = %+v", kv)
	}
	row := doc.Records[1].Payload.(docpreview.Row)
	if !reflect.DeepEqual(row.Cells, []string{"BRK-220", "Brake pad", "4"}) {
		t.Errorf("row cells = %v", row.Cells)
	}
	file := doc.Records[2].Payload.(docpreview.FileBlock)
	if file.Source != "./drawing.png" || file.Caption != "Assembly drawing" {
		t.Errorf("file = %+v", file)
	}

	if got := doc.Policy.String(); got != docpreview.DefaultPolicy().String() {
		t.Errorf("Policy = %s, want default %s", got, docpreview.DefaultPolicy())
	}
}

func TestLoadDocument_Policy(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Policies["invoice"] = config.PolicyConfig{Mode: "fixed", PerPage: 10}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "configured for kind",
			yaml: "kind: invoice\nrecords: []\n",
			want: "fixed(10)",
		},
		{
			name: "default for unknown kind",
			yaml: "kind: receipt\nrecords: []\n",
			want: "tiered(8,12,6)",
		},
		{
			name: "per-file override",
			yaml: "kind: invoice\npolicy: {mode: tiered, first: 5, rest: 9, minSplitRemainder: 3}\nrecords: []\n",
			want: "tiered(5,9,3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, t.TempDir(), "doc.yaml", tt.yaml)
			doc, err := loadDocument(path, cfg, testNow)
			if err != nil {
				t.Fatalf("loadDocument() error = %v", err)
			}
			if got := doc.Policy.String(); got != tt.want {
				t.Errorf("Policy = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLoadDocument_CreatedAtFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Document.CreatedAt = "auto:DD/MM/YYYY"

	path := writeFile(t, t.TempDir(), "doc.yaml", "kind: invoice\n")
	doc, err := loadDocument(path, cfg, testNow)
	if err != nil {
		t.Fatalf("loadDocument() error = %v", err)
	}
	if doc.CreatedAt != "04/05/2026" {
		t.Errorf("CreatedAt = %q, want 04/05/2026", doc.CreatedAt)
	}
}

func TestLoadDocument_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"unknown record type", "kind: x\nrecords:\n  - type: chart\n", docpreview.ErrUnknownRecordKind},
		{"unknown field", "kind: x\ncolour: red\n", ErrParseInput},
		{"malformed yaml", "kind: [unclosed\n", ErrParseInput},
		{"missing kind", "title: No kind\n", docpreview.ErrEmptyKind},
		{"invalid policy", "kind: x\npolicy: {mode: fixed, perPage: 0}\n", docpreview.ErrInvalidCapacity},
		{"bad policy mode", "kind: x\npolicy: {mode: adaptive}\n", config.ErrInvalidValue},
		{"bad createdAt", "kind: x\ncreatedAt: \"auto:\"\n", dateutil.ErrInvalidDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, t.TempDir(), "doc.yaml", tt.yaml)
			_, err := loadDocument(path, config.DefaultConfig(), testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("loadDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := loadDocument(filepath.Join(t.TempDir(), "nope.yaml"), config.DefaultConfig(), testNow)
		if !errors.Is(err, ErrReadInput) {
			t.Errorf("loadDocument() error = %v, want ErrReadInput", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestDiscoverDocuments - Input expansion
// ---------------------------------------------------------------------------

func TestDiscoverDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "kind: x\n")
	b := writeFile(t, dir, "nested/b.yml", "kind: x\n")
	writeFile(t, dir, "notes.txt", "ignored")

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		got, err := discoverDocuments([]string{dir})
		if err != nil {
			t.Fatalf("discoverDocuments() error = %v", err)
		}
		if !reflect.DeepEqual(got, []string{a, b}) {
			t.Errorf("got %v, want [%s %s]", got, a, b)
		}
	})

	t.Run("explicit files keep order", func(t *testing.T) {
		t.Parallel()
		got, err := discoverDocuments([]string{b, a})
		if err != nil {
			t.Fatalf("discoverDocuments() error = %v", err)
		}
		if !reflect.DeepEqual(got, []string{b, a}) {
			t.Errorf("got %v, want [%s %s]", got, b, a)
		}
	})

	errTests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no args", nil, ErrNoInput},
		{"missing path", []string{filepath.Join(dir, "missing.yaml")}, ErrReadInput},
		{"wrong extension", []string{filepath.Join(dir, "notes.txt")}, ErrInvalidExtension},
		{"empty directory", []string{t.TempDir()}, ErrNoDocuments},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := discoverDocuments(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("discoverDocuments() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
