package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fileRequest struct {
	Prompt     string `json:"prompt" yaml:"prompt"`
	Duration   int    `json:"duration" yaml:"duration"`
	Resolution string `json:"resolution" yaml:"resolution"`
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{"yaml", "req.yaml", "prompt: a red kite\nduration: 8\nresolution: 1280x720\n"},
		{"yml", "req.YML", "prompt: a red kite\nduration: 8\nresolution: 1280x720\n"},
		{"json", "req.json", `{"prompt":"a red kite","duration":8,"resolution":"1280x720"}`},
		{"sniffed", "req.txt", `{"prompt":"a red kite","duration":8,"resolution":"1280x720"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req fileRequest
			if err := ParseRequest([]byte(tt.data), tt.filename, &req); err != nil {
				t.Fatalf("ParseRequest error: %v", err)
			}
			if req.Prompt != "a red kite" || req.Duration != 8 || req.Resolution != "1280x720" {
				t.Errorf("request = %+v", req)
			}
		})
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	var req fileRequest
	if err := ParseRequest([]byte("{not json"), "req.json", &req); err == nil {
		t.Error("expected JSON error")
	}
	if err := ParseRequest([]byte("prompt: [unclosed"), "req.yaml", &req); err == nil {
		t.Error("expected YAML error")
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	if err := os.WriteFile(path, []byte("prompt: from file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var req fileRequest
	if err := LoadRequest(path, nil, &req); err != nil {
		t.Fatal(err)
	}
	if req.Prompt != "from file" {
		t.Errorf("Prompt = %q", req.Prompt)
	}

	var fromStdin fileRequest
	if err := LoadRequest("-", strings.NewReader(`{"prompt":"from stdin"}`), &fromStdin); err != nil {
		t.Fatal(err)
	}
	if fromStdin.Prompt != "from stdin" {
		t.Errorf("Prompt = %q", fromStdin.Prompt)
	}

	if err := LoadRequest(filepath.Join(t.TempDir(), "missing.yaml"), nil, &req); err == nil {
		t.Error("expected error for missing file")
	}
}
