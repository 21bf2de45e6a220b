package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRunConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	body := strings.Join([]string{
		"state_path: " + filepath.Join(dir, "state.json"),
		"trades_log_path: " + filepath.Join(dir, "trades.log"),
		"hourly_report_path: " + filepath.Join(dir, "hourly_report.log"),
		"metrics_path: " + filepath.Join(dir, "heartbeat.prom"),
		"trades_csv_path: " + filepath.Join(dir, "trades.csv"),
		"log:",
		"  output: " + filepath.Join(dir, "heartbeat.log"),
		"  format: json",
		extra,
	}, "\n")
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_SyntheticFeed(t *testing.T) {
	dir := t.TempDir()
	opts := &runOptions{configPath: writeRunConfig(t, dir, ""), ticks: 200}
	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	for _, name := range []string{"state.json", "hourly_report.log", "heartbeat.prom", "trades.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	b, err := os.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	var snap map[string]any
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatalf("state is not json: %v", err)
	}
	for _, key := range []string{"ledger", "strategy", "last_report_at"} {
		if _, ok := snap[key]; !ok {
			t.Errorf("state missing %q", key)
		}
	}
}

func TestRun_CSVFeed(t *testing.T) {
	dir := t.TempDir()
	prices := filepath.Join(dir, "prices.csv")
	body := "timestamp,price\n" +
		"2024-01-01T00:00:00Z,100\n" +
		"2024-01-01T00:00:05Z,101\n" +
		"2024-01-01T00:00:10Z,103.02\n" +
		"2024-01-01T00:00:15Z,101.98\n"
	if err := os.WriteFile(prices, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeRunConfig(t, dir, "feed:\n  source: csv\n  csv_path: "+prices)
	if err := run(context.Background(), &runOptions{configPath: cfgPath, ticks: -1}); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	trades, err := os.ReadFile(filepath.Join(dir, "trades.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(trades)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "| BUY |") || !strings.Contains(lines[1], "| SELL |") {
		t.Errorf("trades log = %q", trades)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeRunConfig(t, dir, "fee_rate: 2")
	if err := run(context.Background(), &runOptions{configPath: cfgPath, ticks: 1}); err == nil {
		t.Fatal("run() expected validation error")
	}
}
