package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monocle-dev/taskdeck/internal/config"
	"github.com/rs/zerolog"
)

func TestNewProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer

	logger, closer, err := New(config.EnvProd, config.LogConfig{}, &buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer closer.Close()

	logger.Debug().Msg("hidden")
	logger.Info().Str("handle", "alice").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["message"] != "visible" || entry["handle"] != "alice" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp field in %v", entry)
	}
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{config.EnvProd, zerolog.InfoLevel},
		{config.EnvDev, zerolog.DebugLevel},
		{config.EnvLocal, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			logger, _, err := New(tt.env, config.LogConfig{}, &bytes.Buffer{})
			if err != nil {
				t.Fatalf("new logger: %v", err)
			}
			if logger.GetLevel() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, logger.GetLevel())
			}
		})
	}
}

func TestNewRejectsUnknownEnv(t *testing.T) {
	if _, _, err := New("staging", config.LogConfig{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskdeck.log")

	logger, closer, err := New(config.EnvProd, config.LogConfig{File: path, MaxSizeMB: 1}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info().Msg("to file")

	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("expected message in file, got %q", data)
	}
}
