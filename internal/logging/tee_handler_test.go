package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when both sides are nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(inner, nil); h != inner {
		t.Fatal("expected primary to be returned without a mirror")
	}
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected mirror to be returned without a primary stream")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to be enabled for debug")
	}

	logger := slog.New(h).With(FieldComponent, "recipe").WithGroup("render")
	logger.Debug("file only", "template", "fft")
	logger.Info("both", "template", "fft")

	if bytes.Contains(console.Bytes(), []byte("file only")) {
		t.Fatalf("console received debug record: %s", console.String())
	}
	if !bytes.Contains(console.Bytes(), []byte("component=recipe")) || !bytes.Contains(console.Bytes(), []byte("render.template=fft")) {
		t.Fatalf("expected attrs and group on console, got %s", console.String())
	}
	if !bytes.Contains(file.Bytes(), []byte(`"msg":"file only"`)) || !bytes.Contains(file.Bytes(), []byte(`"render":{"template":"fft"}`)) {
		t.Fatalf("expected grouped debug record in file copy, got %s", file.String())
	}
}

type failingHandler struct{ slog.Handler }

var (
	errDiskFull = errors.New("disk full")
	testTime    = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
)

func (failingHandler) Handle(context.Context, slog.Record) error { return errDiskFull }

func TestTeeHandlerKeepsPrimaryWhenMirrorFails(t *testing.T) {
	var console bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&console, nil),
		failingHandler{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil)},
	)
	record := slog.NewRecord(testTime, slog.LevelInfo, "rendered", 0)
	err := h.Handle(context.Background(), record)
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected mirror error to be reported, got %v", err)
	}
	if !bytes.Contains(console.Bytes(), []byte("msg=rendered")) {
		t.Fatalf("expected primary to receive the record, got %q", console.String())
	}
}
