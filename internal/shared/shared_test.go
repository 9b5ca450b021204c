package shared

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "value") {
		t.Errorf("log output = %q", out)
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "run.log")
		logger, closeLog := NewFileLogger(path)

		logger.Info("file message")
		if err := closeLog(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("log file not written: %v", err)
		}
		if !strings.Contains(string(data), "file message") {
			t.Errorf("log file = %q", data)
		}
	})

	t.Run("empty path falls back to stderr", func(t *testing.T) {
		logger, closeLog := NewFileLogger("")
		if logger == nil {
			t.Fatal("expected a logger")
		}
		if err := closeLog(); err != nil {
			t.Errorf("closer error: %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("consecutive IDs should differ")
	}
	if len(a) != 36 {
		t.Errorf("ID %q is not a UUID string", a)
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != 32 {
		t.Errorf("state %q should be 32 hex characters", a)
	}
	if a == b {
		t.Error("consecutive state tokens should differ")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"a": 1}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatal(err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("compact = %s", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("pretty output should be indented: %s", pretty)
	}

	var decoded map[string]int
	if err := json.Unmarshal(pretty, &decoded); err != nil {
		t.Errorf("pretty output is not valid JSON: %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Road Trip", "road_trip"},
		{"Liked Songs", "liked_songs"},
		{"Mix!!! 2024", "mix_2024"},
		{"  spaced  out  ", "spaced_out"},
		{"---", ""},
		{"already_fine", "already_fine"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
