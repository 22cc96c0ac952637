package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mangasplit/internal/events"
)

func TestSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := Sink(l)

	events.Warnf(s, "fallback to zip for %s", "vol1")
	events.Progress(s, "packaging", 50)

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "fallback to zip for vol1") {
		t.Fatalf("missing warn entry: %s", out)
	}
	if !strings.Contains(out, `"percent":50`) {
		t.Fatalf("missing progress entry: %s", out)
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	if err := Init(Options{Level: "debug", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Get().Info().Msg("hello file")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file missing entry: %s", data)
	}
}
