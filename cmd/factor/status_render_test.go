package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestStatusLineRenderPlain(t *testing.T) {
	got := statusLine{label: "Parset", kind: statusError, detail: "global.dir_ms is required"}.render(false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Parset:", "[ERROR] global.dir_ms is required")
	if got != want {
		t.Fatalf("render mismatch\n got: %q\nwant: %q", got, want)
	}

	bare := statusLine{label: "Mosaic", kind: statusInfo}.render(false)
	if !strings.HasSuffix(bare, "[INFO]") {
		t.Fatalf("expected no trailing detail, got %q", bare)
	}
}

func TestStatusLineRenderColor(t *testing.T) {
	got := statusLine{label: "Parset", kind: statusOK, detail: "factor.parset"}.render(true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusKindString(t *testing.T) {
	for kind, want := range map[statusKind]string{
		statusInfo:     "INFO",
		statusOK:       "OK",
		statusWarn:     "WARN",
		statusError:    "ERROR",
		statusKind(42): "INFO",
	} {
		if got := kind.String(); got != want {
			t.Fatalf("statusKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}

func TestStatusWriterVerdict(t *testing.T) {
	tests := []struct {
		name  string
		kinds []statusKind
		want  string
	}{
		{name: "clean", kinds: []statusKind{statusInfo, statusOK}, want: "Parset valid\n"},
		{name: "warnings", kinds: []statusKind{statusOK, statusWarn, statusInfo}, want: "Parset valid (with warnings)\n"},
		{name: "errors", kinds: []statusKind{statusWarn, statusError, statusOK}, want: "Parset invalid\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newStatusWriter(&buf)
			for _, kind := range tt.kinds {
				w.line("Check", kind, "%s", kind)
			}
			w.verdict("Parset")

			lines := strings.SplitAfter(buf.String(), "\n")
			if got := lines[len(tt.kinds)]; got != tt.want {
				t.Fatalf("verdict = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusWriterFormatsDetail(t *testing.T) {
	var buf bytes.Buffer
	w := newStatusWriter(&buf)
	w.line("Nodes", statusWarn, "%s is not set", "PBS_NODEFILE")
	if w.worst != statusWarn {
		t.Fatalf("expected worst kind WARN, got %v", w.worst)
	}
	requireContains(t, buf.String(), "[WARN] PBS_NODEFILE is not set")
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
