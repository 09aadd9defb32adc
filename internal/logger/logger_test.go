package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Verbosity()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbosity(int(prev))
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Errorf("boom %d", 1)
	Warnf("fallback")
	Infof("hidden")
	Debugf("hidden")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] boom 1") {
		t.Fatalf("missing error line: %q", out)
	}
	if !strings.Contains(out, "[WARN]  fallback") {
		t.Fatalf("missing warn line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("info/debug lines should be filtered: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Fatalf("expected caller file in output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"error": Error,
		"WARN":  Warn,
		" info": Info,
		"debug": Debug,
		"trace": Trace,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetLevelEmptyKeepsCurrent(t *testing.T) {
	capture(t)
	SetVerbosity(int(Debug))
	if err := SetLevel(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Verbosity() != Debug {
		t.Fatalf("verbosity changed to %v", Verbosity())
	}
}
