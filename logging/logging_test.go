package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerAtLevels(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	} {
		l, err := NewLoggerAt("t", tc.in)
		if err != nil {
			t.Fatalf("level %q: %v", tc.in, err)
		}
		if !l.Desugar().Core().Enabled(tc.want) {
			t.Fatalf("level %q: %v not enabled", tc.in, tc.want)
		}
		if tc.want > zapcore.DebugLevel && l.Desugar().Core().Enabled(tc.want-1) {
			t.Fatalf("level %q: %v should be disabled", tc.in, tc.want-1)
		}
	}
}

func TestNewLoggerAtRejectsUnknown(t *testing.T) {
	if _, err := NewLoggerAt("t", "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestTestLogger(t *testing.T) {
	l := NewTestLogger(t)
	l.Debugw("hello", "k", 1)
	NewNopLogger().Infow("dropped")
}
