package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInitProductionWritesJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := initWithWriter(&buf, false, "")
	log.Info("goal created", "goalId", "g1")
	log.Debug("hidden")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatal("debug record should be filtered in production")
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("expected json record, got %q: %v", line, err)
	}
	if record["goalId"] != "g1" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestInitDevelopmentWritesText(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	initWithWriter(&buf, true, "")
	slog.Debug("task approved", "taskId", "t1")

	if !strings.Contains(buf.String(), "taskId=t1") {
		t.Fatalf("expected text record via default logger, got %q", buf.String())
	}
}
