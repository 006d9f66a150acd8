package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "prod", slog.LevelInfo, "cloudy", "1.2.3")

	logger.Debug("hidden")
	logger.Info("fetching weather", "provider", "forecast")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a single JSON record: %v\n%s", err, buf.String())
	}
	for k, want := range map[string]string{
		"msg": "fetching weather", "app": "cloudy", "version": "1.2.3", "env": "prod", "provider": "forecast",
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %q", k, rec[k], want)
		}
	}
}

func TestNew_DevWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "dev", slog.LevelDebug, "cloudy", "dev")

	logger.Debug("resolving location", "cycle", "abc")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("dev output looks like JSON: %s", out)
	}
	if !strings.Contains(out, "resolving location") || !strings.Contains(out, "cycle") {
		t.Errorf("missing message or attribute: %s", out)
	}
}
