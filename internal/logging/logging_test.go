package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutputUsesJSONInProduction(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewWithOutput(&buffer, "debug", "Production")

	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("user_id", 7).Info("state computed")

	payload := map[string]any{}
	if err := json.Unmarshal(buffer.Bytes(), &payload); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buffer.String(), err)
	}
	if payload["msg"] != "state computed" || payload["user_id"] != float64(7) {
		t.Fatalf("unexpected JSON payload: %v", payload)
	}
}

func TestNewWithOutputFallsBackToInfo(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewWithOutput(&buffer, "loud", "development")

	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level fallback, got %s", logger.GetLevel())
	}
	if !strings.Contains(buffer.String(), `invalid log level \"loud\"`) {
		t.Fatalf("expected fallback warning, got %q", buffer.String())
	}
}
