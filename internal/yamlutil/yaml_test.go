package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Abdul-Razack/docpreview/internal/yamlutil"
)

type sample struct {
	Kind    string   `yaml:"kind"`
	Pages   int      `yaml:"pages"`
	Columns []string `yaml:"columns"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		want    sample
	}{
		{
			name: "valid YAML",
			data: []byte("kind: purchase-order\npages: 3\ncolumns: [Part, Qty]"),
			dest: &sample{},
			want: sample{Kind: "purchase-order", Pages: 3, Columns: []string{"Part", "Qty"}},
		},
		{
			name: "unknown fields are ignored",
			data: []byte("kind: invoice\nextra: true"),
			dest: &sample{},
			want: sample{Kind: "invoice"},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &sample{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("kind: x"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			got := tt.dest.(*sample)
			if got.Kind != tt.want.Kind || got.Pages != tt.want.Pages || len(got.Columns) != len(tt.want.Columns) {
				t.Errorf("Unmarshal() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestUnmarshal_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("kind: " + strings.Repeat("x", yamlutil.MaxInputSize))
	err := yamlutil.Unmarshal(data, &sample{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("Unmarshal() error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Unknown fields rejected
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var s sample
	if err := yamlutil.UnmarshalStrict([]byte("kind: invoice\npages: 2"), &s); err != nil {
		t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
	}
	if s.Kind != "invoice" || s.Pages != 2 {
		t.Errorf("UnmarshalStrict() = %+v", s)
	}

	if err := yamlutil.UnmarshalStrict([]byte("kind: invoice\nbogus: 1"), &sample{}); err == nil {
		t.Error("UnmarshalStrict() expected error for unknown field")
	}
}

// ---------------------------------------------------------------------------
// TestDecodeFile - File-backed strict decoding
// ---------------------------------------------------------------------------

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte("kind: receipt\npages: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := yamlutil.DecodeFile(path, &s); err != nil {
		t.Fatalf("DecodeFile() unexpected error: %v", err)
	}
	if s.Kind != "receipt" {
		t.Errorf("Kind = %q, want %q", s.Kind, "receipt")
	}

	if err := yamlutil.DecodeFile(filepath.Join(dir, "missing.yaml"), &s); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("DecodeFile(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(sample{Kind: "invoice", Pages: 2})
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "kind: invoice") {
		t.Errorf("Marshal() = %q, want kind: invoice", out)
	}
}
