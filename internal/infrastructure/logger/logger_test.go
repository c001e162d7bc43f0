package logger

import (
	"bytes"
	"context"
	"strings"
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
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Fatalf("info message should be filtered, got %q", output)
	}
	if !strings.HasPrefix(output, "{") || !strings.Contains(output, `"message":"shown"`) {
		t.Fatalf("expected json warn line, got %q", output)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(Config{Level: "debug"}, &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithActorID(ctx, "owner-a")

	log := FromContext(ctx, base)
	log.Info().Msg("hello")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-1"`) || !strings.Contains(output, `"actor_id":"owner-a"`) {
		t.Fatalf("expected context fields, got %q", output)
	}

	if RequestID(ctx) != "req-1" {
		t.Fatalf("unexpected request id %q", RequestID(ctx))
	}
}

func TestFromContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(Config{Level: "debug"}, &buf)

	log := FromContext(context.Background(), base)
	log.Info().Msg("plain")

	if strings.Contains(buf.String(), "request_id") {
		t.Fatalf("unexpected request id in %q", buf.String())
	}
}
