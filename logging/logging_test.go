package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelInfo)

	logger.Debug("debug message")
	if buf.Len() > 0 {
		t.Error("debug message should be filtered at INFO level")
	}

	logger.Info("info message")
	output := buf.String()
	if !strings.Contains(output, "INFO") {
		t.Error("log should contain INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("log should contain the message")
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger = logger.WithComponent("todo")

	logger.Info("hello world", map[string]interface{}{"key": "value"})

	output := buf.String()
	// INFO  2026-02-05T04:00:00.000Z [todo] hello world key=value
	if !strings.HasPrefix(output, "INFO ") {
		t.Errorf("expected line to start with 'INFO ', got: %s", output)
	}
	if !strings.Contains(output, "[todo]") {
		t.Errorf("expected component [todo], got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value, got: %s", output)
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.Info("x", map[string]interface{}{"b": 2, "a": 1, "c": 3})

	if !strings.Contains(buf.String(), "a=1 b=2 c=3") {
		t.Errorf("fields should be sorted, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" Info ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"ERROR", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLogger_PersistFailed(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.PersistFailed("todos.v1", 3, errors.New("disk full"))

	output := buf.String()
	if !strings.HasPrefix(output, "WARN ") {
		t.Errorf("persist failure should be WARN, got: %s", output)
	}
	if !strings.Contains(output, "error=disk full") || !strings.Contains(output, "key=todos.v1") {
		t.Errorf("missing fields, got: %s", output)
	}
}

func TestLogger_RecordsDropped(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)

	logger.RecordsDropped("todos.v1", 2, "invalid shape")

	if !strings.Contains(buf.String(), "dropped=2") {
		t.Errorf("expected dropped=2, got: %s", buf.String())
	}
}

func TestLogger_DebugEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := New()
	logger.SetOutput(&buf)
	logger.SetLevel(LevelDebug)

	logger.Loaded("todos.v1", 4, 2*time.Millisecond)
	logger.TaskChanged("toggle", "abc", 4)
	logger.TaskChanged("clear", "", 1)

	output := buf.String()
	if !strings.Contains(output, "list_loaded") || !strings.Contains(output, "duration=2ms") {
		t.Errorf("expected list_loaded line, got: %s", output)
	}
	if !strings.Contains(output, "op=toggle") || !strings.Contains(output, "id=abc") {
		t.Errorf("expected toggle line, got: %s", output)
	}
	if strings.Count(output, "id=") != 1 {
		t.Errorf("empty id should be omitted, got: %s", output)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
}
