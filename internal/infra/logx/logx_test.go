package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRedactionInStdlogWriter(t *testing.T) {
	var buf bytes.Buffer
	w := StdlogWriter(LevelDebug, &buf)
	SetMinLevel(LevelDebug)
	SetVerbose(false)
	RegisterSecret("secret123")

	_, err := w.Write([]byte("this contains secret123 and should be redacted\n"))
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "secret123") {
		t.Fatalf("expected secret to be redacted, got: %s", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Fatalf("expected [REDACTED] marker, got: %s", got)
	}
}

func TestTruncationWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	w := StdlogWriter(LevelDebug, &buf)
	SetMinLevel(LevelDebug)
	SetVerbose(false)

	long := strings.Repeat("a", 6000)
	_, err := w.Write([]byte(long + "\n"))
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "truncated") {
		t.Fatalf("expected truncation indicator, got: %s", got)
	}
}

func TestNoTruncationWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	w := StdlogWriter(LevelDebug, &buf)
	SetMinLevel(LevelDebug)
	SetVerbose(true)
	defer SetVerbose(false)

	long := strings.Repeat("b", 4000)
	_, err := w.Write([]byte(long + "\n"))
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "truncated") {
		t.Fatalf("did not expect truncation, got: %s", got)
	}
}

func TestMinLevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	SetMinLevel(LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got: %s", got)
	}
	if !strings.Contains(got, "shown 3") {
		t.Fatalf("expected warn line, got: %s", got)
	}
}

func TestFieldsAreNestedAndRedacted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	SetMinLevel(LevelDebug)
	RegisterSecret("tok-999")

	Fields(LevelError, "load more failed", map[string]any{
		"path":  "/docs",
		"token": "tok-999",
		"err":   errors.New("bad tok-999"),
		"count": 3,
	})

	var line struct {
		Level   string         `json:"level"`
		Message string         `json:"message"`
		Fields  map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode line %q: %v", buf.String(), err)
	}
	if line.Level != "error" || line.Message != "load more failed" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Fields["path"] != "/docs" {
		t.Fatalf("path field = %v", line.Fields["path"])
	}
	if line.Fields["token"] != "[REDACTED]" || line.Fields["err"] != "bad [REDACTED]" {
		t.Fatalf("secret leaked in fields: %+v", line.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, " warning ": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
