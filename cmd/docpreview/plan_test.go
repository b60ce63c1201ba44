package main

// Notes:
// - runPlanCmd: we test text and JSON output against the default and a
//   configured policy, plus usage errors. No browser is involved.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRunPlanCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	order := writeFile(t, dir, "order.yaml", orderYAML(30))
	short := writeFile(t, dir, "short.yaml", orderYAML(15))
	empty := writeFile(t, dir, "empty.yaml", "kind: memo\n")

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := testEnv(&fakePool{})
		if code := runPlanCmd([]string{order, short, empty}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr)
		}

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		want := []string{
			order + ": purchase-order, 30 records, 4 page(s) [8 12 5 5] (tiered(8,12,6))",
			short + ": purchase-order, 15 records, 3 page(s) [8 4 3] (tiered(8,12,6))",
			empty + ": memo, 0 records, 1 page(s) [0] (tiered(8,12,6))",
		}
		if !reflect.DeepEqual(lines, want) {
			t.Errorf("output =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
		}
	})

	t.Run("json with configured policy", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeFile(t, t.TempDir(), "docpreview.yaml", `
policies:
  purchase-order:
    mode: fixed
    perPage: 10
`)
		env, stdout, stderr := testEnv(&fakePool{})
		if code := runPlanCmd([]string{"--json", "-c", cfgPath, order}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr)
		}

		var got []planResult
		if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if len(got) != 1 {
			t.Fatalf("got %d results, want 1", len(got))
		}
		if got[0].Policy != "fixed(10)" || !reflect.DeepEqual(got[0].Pages, []int{10, 10, 10}) {
			t.Errorf("plan = %+v, want fixed(10) [10 10 10]", got[0])
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			args []string
			want int
		}{
			{"no input", nil, ExitIO},
			{"missing file", []string{filepath.Join(dir, "missing.yaml")}, ExitIO},
			{"unknown flag", []string{"--pages", order}, ExitUsage},
			{"help", []string{"-h"}, ExitSuccess},
		}
		for _, tt := range tests {
			env, _, _ := testEnv(&fakePool{})
			if got := runPlanCmd(tt.args, env); got != tt.want {
				t.Errorf("%s: exit code = %d, want %d", tt.name, got, tt.want)
			}
		}
	})
}
