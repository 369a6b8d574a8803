package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wisp.log")

	if err := Init(Config{Level: "debug", Format: "json", File: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Close()

	Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty, expected at least one entry")
	}
}

func TestGetBeforeInit(t *testing.T) {
	// Must never return nil, even if Init was not called
	if Get() == nil {
		t.Fatal("Get returned nil logger")
	}
}

func TestInitBadFile(t *testing.T) {
	err := Init(Config{Level: "info", File: filepath.Join(t.TempDir(), "no", "such", "dir", "x.log")})
	if err == nil {
		t.Error("Init should fail when the log file cannot be opened")
	}
}
