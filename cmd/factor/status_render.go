package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// statusKind grades one line of a validation report. Higher is worse.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = [...]struct {
	tag   string
	color string
}{
	statusInfo:  {tag: "INFO", color: ansiBlue},
	statusOK:    {tag: "OK", color: ansiGreen},
	statusWarn:  {tag: "WARN", color: ansiYellow},
	statusError: {tag: "ERROR", color: ansiRed},
}

func (k statusKind) style() (string, string) {
	if k < 0 || int(k) >= len(statusStyles) {
		return "INFO", ""
	}
	s := statusStyles[k]
	return s.tag, s.color
}

func (k statusKind) String() string {
	tag, _ := k.style()
	return tag
}

// statusLine is one "Label: [TAG] detail" row, e.g.
//
//	Measurement sets:    [OK] 2 found in /data/ms
type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

func (l statusLine) render(colorize bool) string {
	var b strings.Builder
	b.WriteString(statusIndent)
	fmt.Fprintf(&b, "%-*s [%s]", statusLabelWidth, l.label+":", l.kind)
	if l.detail != "" {
		b.WriteByte(' ')
		b.WriteString(l.detail)
	}
	if _, color := l.kind.style(); colorize && color != "" {
		return color + b.String() + ansiReset
	}
	return b.String()
}

// statusWriter prints a report of status lines and remembers the worst kind
// seen so the caller can print a verdict.
type statusWriter struct {
	out      io.Writer
	colorize bool
	worst    statusKind
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) line(label string, kind statusKind, format string, args ...any) {
	w.worst = max(w.worst, kind)
	l := statusLine{label: label, kind: kind, detail: fmt.Sprintf(format, args...)}
	fmt.Fprintln(w.out, l.render(w.colorize))
}

// verdict closes a report on subject: "<subject> valid", noting warnings.
func (w *statusWriter) verdict(subject string) {
	switch {
	case w.worst >= statusError:
		fmt.Fprintf(w.out, "%s invalid\n", subject)
	case w.worst == statusWarn:
		fmt.Fprintf(w.out, "%s valid (with warnings)\n", subject)
	default:
		fmt.Fprintf(w.out, "%s valid\n", subject)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
