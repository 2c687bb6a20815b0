package main

import (
	"strings"
	"testing"
)

func TestRenderTableAlignment(t *testing.T) {
	out := renderTable("Sets", []tableColumn{
		{header: "File"},
		{header: "Count", align: alignRight},
	}, [][]string{{"ms1.ms", "7"}, {"ms22.ms"}})

	requireContains(t, out, "Sets")
	requireContains(t, out, "│ ms1.ms  │     7 │")
	requireContains(t, out, "│ ms22.ms │       │")
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable("empty", nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestParsetShowCountsOverrides(t *testing.T) {
	env := setupCLITestEnv(t, "ms1.ms", "ms2.ms")

	out, _, err := runCLI(t, []string{"parset", "show", env.parsetPath}, env.configPath)
	if err != nil {
		t.Fatalf("parset show: %v", err)
	}
	var ms1, ms2 string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "│ ms1.ms") && strings.HasSuffix(line, "│") && strings.Count(line, "│") == 3:
			ms1 = line
		case strings.HasPrefix(line, "│ ms2.ms") && strings.Count(line, "│") == 3:
			ms2 = line
		}
	}
	if !strings.HasSuffix(ms1, " 2 │") {
		t.Fatalf("expected two overrides for ms1.ms, got %q", ms1)
	}
	if !strings.HasSuffix(ms2, " 0 │") {
		t.Fatalf("expected no overrides for ms2.ms, got %q", ms2)
	}
}
