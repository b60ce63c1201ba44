package docpreview

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func rows(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = NewRow(fmt.Sprintf("P-%03d", i), "item", "1")
	}
	return out
}

func mustTiered(t *testing.T, first, rest, minSplit int) CapacityPolicy {
	t.Helper()
	p, err := Tiered(first, rest, minSplit)
	if err != nil {
		t.Fatalf("Tiered(%d, %d, %d) error = %v", first, rest, minSplit, err)
	}
	return p
}

func mustFixed(t *testing.T, n int) CapacityPolicy {
	t.Helper()
	p, err := Fixed(n)
	if err != nil {
		t.Fatalf("Fixed(%d) error = %v", n, err)
	}
	return p
}

func pageSizes(pages []Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = len(p.Records)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestPlan_Tiered - First page, full pages, remainder split
// ---------------------------------------------------------------------------

func TestPlan_Tiered(t *testing.T) {
	t.Parallel()

	policy := mustTiered(t, 8, 12, 6)

	tests := []struct {
		total int
		want  []int
	}{
		{total: 0, want: []int{0}},
		{total: 1, want: []int{1}},
		{total: 5, want: []int{5}},
		{total: 8, want: []int{8}},
		{total: 9, want: []int{8, 1}},
		{total: 14, want: []int{8, 6}},
		{total: 15, want: []int{8, 4, 3}},
		{total: 20, want: []int{8, 12}},
		{total: 21, want: []int{8, 12, 1}},
		{total: 26, want: []int{8, 12, 6}},
		{total: 27, want: []int{8, 12, 4, 3}},
		{total: 30, want: []int{8, 12, 5, 5}},
		{total: 32, want: []int{8, 12, 12}},
		{total: 43, want: []int{8, 12, 12, 6, 5}},
		{total: 45, want: []int{8, 12, 12, 12, 1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d records", tt.total), func(t *testing.T) {
			t.Parallel()

			got := pageSizes(Plan(rows(tt.total), policy))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Plan(%d) sizes = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}

func TestPlan_Fixed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		perPage int
		total   int
		want    []int
	}{
		{perPage: 10, total: 0, want: []int{0}},
		{perPage: 10, total: 10, want: []int{10}},
		{perPage: 10, total: 11, want: []int{10, 1}},
		{perPage: 10, total: 25, want: []int{10, 10, 5}},
		{perPage: 1, total: 3, want: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		got := pageSizes(Plan(rows(tt.total), mustFixed(t, tt.perPage)))
		if !slices.Equal(got, tt.want) {
			t.Errorf("Plan(%d, fixed(%d)) sizes = %v, want %v", tt.total, tt.perPage, got, tt.want)
		}
	}
}

func TestPlan_ZeroPolicy(t *testing.T) {
	t.Parallel()

	got := pageSizes(Plan(rows(40), CapacityPolicy{}))
	if !slices.Equal(got, []int{40}) {
		t.Errorf("Plan(zero policy) sizes = %v, want [40]", got)
	}
}

// ---------------------------------------------------------------------------
// Plan invariants
// ---------------------------------------------------------------------------

func TestPlan_PreservesOrderAndCoverage(t *testing.T) {
	t.Parallel()

	policies := []CapacityPolicy{
		mustTiered(t, 8, 12, 6),
		mustTiered(t, 3, 5, 0),
		mustTiered(t, 10, 4, 10),
		mustFixed(t, 7),
	}

	for _, policy := range policies {
		for total := 0; total <= 60; total++ {
			in := rows(total)
			pages := Plan(in, policy)

			var flat []Record
			for i, p := range pages {
				if p.Index != i {
					t.Fatalf("%v/%d: page %d has Index %d", policy, total, i, p.Index)
				}
				if p.IsFirst != (i == 0) || p.IsLast != (i == len(pages)-1) {
					t.Fatalf("%v/%d: page %d first/last flags wrong", policy, total, i)
				}
				if c := policy.Capacity(i); len(p.Records) > c {
					t.Fatalf("%v/%d: page %d holds %d records, capacity %d", policy, total, i, len(p.Records), c)
				}
				flat = append(flat, p.Records...)
			}

			if len(flat) != total {
				t.Fatalf("%v/%d: planned %d records", policy, total, len(flat))
			}
			for i := range flat {
				if flat[i].Payload.(Row).Cells[0] != in[i].Payload.(Row).Cells[0] {
					t.Fatalf("%v/%d: record %d out of order", policy, total, i)
				}
			}
		}
	}
}

func TestPlan_NoTrailingStub(t *testing.T) {
	t.Parallel()

	policy := mustTiered(t, 8, 12, 6)
	for total := 21; total <= 200; total++ {
		sizes := PageSizes(total, policy)
		if len(sizes) < 3 {
			continue
		}
		last := sizes[len(sizes)-1]
		prev := sizes[len(sizes)-2]
		if prev < 12 && prev-last > 1 {
			t.Errorf("total %d: split pages %d/%d are not near-equal", total, prev, last)
		}
	}
}

func TestPlan_PagesDoNotAlias(t *testing.T) {
	t.Parallel()

	pages := Plan(rows(20), mustTiered(t, 8, 12, 6))
	first := pages[0].Records
	_ = append(first, NewRow("intruder"))

	if cell := pages[1].Records[0].Payload.(Row).Cells[0]; cell != "P-008" {
		t.Errorf("appending to page 0 overwrote page 1: got %q", cell)
	}
}

// ---------------------------------------------------------------------------
// Policy construction
// ---------------------------------------------------------------------------

func TestPolicyConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() (CapacityPolicy, error)
		wantErr error
	}{
		{name: "fixed ok", build: func() (CapacityPolicy, error) { return Fixed(10) }},
		{name: "fixed zero", build: func() (CapacityPolicy, error) { return Fixed(0) }, wantErr: ErrInvalidCapacity},
		{name: "fixed negative", build: func() (CapacityPolicy, error) { return Fixed(-3) }, wantErr: ErrInvalidCapacity},
		{name: "tiered ok", build: func() (CapacityPolicy, error) { return Tiered(8, 12, 6) }},
		{name: "tiered zero split", build: func() (CapacityPolicy, error) { return Tiered(8, 12, 0) }},
		{name: "tiered zero first", build: func() (CapacityPolicy, error) { return Tiered(0, 12, 6) }, wantErr: ErrInvalidCapacity},
		{name: "tiered zero rest", build: func() (CapacityPolicy, error) { return Tiered(8, 0, 6) }, wantErr: ErrInvalidCapacity},
		{name: "tiered negative split", build: func() (CapacityPolicy, error) { return Tiered(8, 12, -1) }, wantErr: ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := tt.build()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && p.IsZero() {
				t.Error("valid policy reports IsZero")
			}
			if tt.wantErr != nil && !p.IsZero() {
				t.Error("rejected policy should be the zero value")
			}
		})
	}
}

func TestCapacityPolicy_String(t *testing.T) {
	t.Parallel()

	if got := DefaultPolicy().String(); got != "tiered(8,12,6)" {
		t.Errorf("DefaultPolicy().String() = %q", got)
	}
	if got := mustFixed(t, 4).String(); got != "fixed(4)" {
		t.Errorf("Fixed(4).String() = %q", got)
	}
	if got := (CapacityPolicy{}).String(); got != "unbounded" {
		t.Errorf("zero policy String() = %q", got)
	}
}
