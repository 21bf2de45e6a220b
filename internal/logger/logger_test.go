package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartbeat.log")
	log, err := New(Config{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("side", "BUY").Msg("order rejected")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want only the warning", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if entry["level"] != "warn" || entry["side"] != "BUY" || entry["message"] != "order rejected" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Errorf("entry missing timestamp: %v", entry)
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.Disabled, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(Config{Level: tt.level})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}
