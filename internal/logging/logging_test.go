package logging

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	l := New(buf, level).(*logfmtLogger)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, Info).With(F("component", "progress"))

	logger.Info("save degraded", F("page", "/guides/one/"), Err(errors.New("quota exceeded")))

	got := strings.TrimSpace(buf.String())
	want := `ts=2026-01-02T03:04:05Z level=info msg="save degraded" component=progress page=/guides/one/ err="quota exceeded"`
	if got != want {
		t.Fatalf("unexpected line:\n got=%s\nwant=%s", got, want)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, Warn)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	if !logger.Enabled(Error) || logger.Enabled(Info) {
		t.Fatalf("unexpected Enabled results")
	}
}

func TestNopDiscardsEverything(t *testing.T) {
	logger := Nop()
	if logger.Enabled(Error) {
		t.Fatalf("expected nop logger to be disabled")
	}
	logger.Error("nothing")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"":        Info,
		"verbose": Info,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", raw, got, want)
		}
	}
}

func TestOpenFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ui.log")
	logger, closer, err := OpenFile(path, Debug)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Debug("first")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
