package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerWithOutput_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("segment", "Consumer").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"segment":"Consumer"`) {
		t.Errorf("expected structured field in output, got %s", out)
	}
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	if got := parseLevel("chatty"); got.String() != "info" {
		t.Errorf("parseLevel(chatty) = %s, want info", got)
	}
	if got := parseLevel(" DEBUG "); got.String() != "debug" {
		t.Errorf("parseLevel(DEBUG) = %s, want debug", got)
	}
}
