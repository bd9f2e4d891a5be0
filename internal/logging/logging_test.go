package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/codeloops-go/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.in); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&config.Config{LogLevel: "debug", LogFormat: "json"}, &buf)

	logger.Debug("wrote document", "feature", "checkout", "kind", "tasks")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "wrote document" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["feature"] != "checkout" {
		t.Errorf("feature: got %v", entry["feature"])
	}
	if prefix, _ := entry["prefix"].(string); !strings.Contains(prefix, DefaultPrefix) {
		t.Errorf("prefix: got %v, want %s", entry["prefix"], DefaultPrefix)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&config.Config{LogLevel: "warn", LogFormat: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "feature", "../escape")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "WARN") {
		t.Errorf("warn line missing:\n%s", out)
	}
}

func TestFromConfigNil(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(nil, &buf)
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level: got %v, want info", logger.GetLevel())
	}
	if logger.GetPrefix() != DefaultPrefix {
		t.Errorf("prefix: got %q, want %q", logger.GetPrefix(), DefaultPrefix)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
