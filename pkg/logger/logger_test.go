package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, level := range levels {
		Init(level)
		if Log == nil {
			t.Errorf("Init(%s) should set Log", level)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("solved", "method", "jacobi")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "solved" || entry["method"] != "jacobi" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "text"}, &buf)

	l.Debug("sweep", "k", 3)
	if !strings.Contains(buf.String(), "msg=sweep") || !strings.Contains(buf.String(), "k=3") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}

func TestInitWithConfig_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "test.log")

	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})

	Log.Info("test message")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "test message") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestInitWithConfig_FileOutputInvalidDir(t *testing.T) {
	// Недоступная директория - откат на stdout
	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: "/proc/nonexistent/dir/test.log",
	})

	if Log == nil {
		t.Error("Log should not be nil even with invalid path")
	}
}

func TestLoggingFunctions(t *testing.T) {
	Init("debug")

	Debug("debug message", "key", "value")
	Info("info message", "key", "value")
	Warn("warn message", "key", "value")
	Error("error message", "key", "value")
}

func TestWithContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	Log = New(Config{Level: "info"}, &buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Fatalf("RequestIDFromContext = %q", got)
	}

	WithContext(ctx, "key1", "value1").Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"key1":"value1"`) {
		t.Errorf("missing context attrs: %s", out)
	}

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context must have no request id")
	}
}

func TestWithSolve(t *testing.T) {
	var buf bytes.Buffer
	Log = New(Config{Level: "info"}, &buf)

	WithSolve("gauss_seidel", 4, 5).Info("done")

	var entry struct {
		Solve struct {
			Method string `json:"method"`
			Nodes  int    `json:"nodes"`
			Edges  int    `json:"edges"`
		} `json:"solve"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if entry.Solve.Method != "gauss_seidel" || entry.Solve.Nodes != 4 || entry.Solve.Edges != 5 {
		t.Errorf("unexpected solve group: %+v", entry.Solve)
	}
}

func TestWithRequestIDAndService(t *testing.T) {
	Init("info")

	if WithRequestID("req-123") == nil {
		t.Error("WithRequestID should return logger")
	}
	if WithService("solver-svc") == nil {
		t.Error("WithService should return logger")
	}
}
