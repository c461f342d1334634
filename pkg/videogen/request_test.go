package videogen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{"1280x720", Resolution{1280, 720}, false},
		{"720X1280", Resolution{720, 1280}, false},
		{" 640x360 ", Resolution{640, 360}, false},
		{"1280", Resolution{}, true},
		{"x720", Resolution{}, true},
		{"1280x", Resolution{}, true},
		{"0x720", Resolution{}, true},
		{"+5x5", Resolution{}, true},
		{"1280x720x3", Resolution{}, true},
	}
	for _, tt := range tests {
		got, err := ParseResolution(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseResolution(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseResolution(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBucketSeconds(t *testing.T) {
	tests := map[int]int{
		-1: 4, 0: 4, 1: 4, 4: 4, 5: 4, 6: 4, 7: 8, 8: 8, 10: 8, 11: 12, 12: 12, 60: 12,
	}
	for in, want := range tests {
		if got := BucketSeconds(in); got != want {
			t.Errorf("BucketSeconds(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSizeFor(t *testing.T) {
	tests := []struct {
		in   Resolution
		want string
	}{
		{Resolution{1280, 720}, "1280x720"},
		{Resolution{720, 1280}, "720x1280"},
		{Resolution{1792, 1024}, "1280x720"},
		{Resolution{1024, 1792}, "720x1280"},
		{Resolution{1920, 1080}, "1280x720"},
		{Resolution{640, 640}, "1280x720"},
		{Resolution{1080, 1920}, "720x1280"},
	}
	for _, tt := range tests {
		if got := SizeFor(tt.in); got != tt.want {
			t.Errorf("SizeFor(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := Request{Prompt: "p", DurationSeconds: 8, Resolution: "1280x720", OutputPath: "o.mp4"}

	tests := []struct {
		name  string
		edit  func(*Request)
		field string
	}{
		{"ok", func(*Request) {}, ""},
		{"blank prompt", func(r *Request) { r.Prompt = "\t\n" }, "prompt"},
		{"zero duration", func(r *Request) { r.DurationSeconds = 0 }, "duration"},
		{"long duration", func(r *Request) { r.DurationSeconds = 61 }, "duration"},
		{"bad resolution", func(r *Request) { r.Resolution = "hd" }, "resolution"},
		{"no output", func(r *Request) { r.OutputPath = "" }, "output_path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.edit(&r)
			err := r.Validate(0)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var valErr *ValidationError
			if !errors.As(err, &valErr) || valErr.Field != tt.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tt.field)
			}
		})
	}
}

func TestValidateCustomMaxDuration(t *testing.T) {
	r := Request{Prompt: "p", DurationSeconds: 20, Resolution: "1280x720", OutputPath: "o.mp4"}
	if err := r.Validate(12); err == nil {
		t.Fatal("expected duration error")
	}
	if err := r.Validate(30); err != nil {
		t.Fatal(err)
	}
}

func TestNewParams(t *testing.T) {
	req := &Request{Prompt: "  a fox  ", DurationSeconds: 10, Resolution: "1080x1920", OutputPath: "o.mp4"}
	p, err := NewParams(req, "sora-2-pro", 0)
	if err != nil {
		t.Fatal(err)
	}
	want := Params{
		Model:           "sora-2-pro",
		Prompt:          "a fox",
		DurationSeconds: 10,
		Resolution:      Resolution{1080, 1920},
		Seconds:         8,
		Size:            "720x1280",
	}
	if *p != want {
		t.Errorf("got %+v, want %+v", *p, want)
	}

	req.Model = "custom"
	p, _ = NewParams(req, "", 0)
	if p.Model != "custom" {
		t.Errorf("model = %q", p.Model)
	}
	req.Model = ""
	p, _ = NewParams(req, "", 0)
	if p.Model != DefaultModel {
		t.Errorf("model = %q, want %q", p.Model, DefaultModel)
	}

	if _, err := NewParams(nil, "", 0); Category(err) != CategoryValidation {
		t.Errorf("nil request err = %v", err)
	}
}

func TestNewParamsLoadsInputImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "first.png")
	if err := os.WriteFile(path, testPNG, 0o644); err != nil {
		t.Fatal(err)
	}
	req := &Request{Prompt: "a fox", DurationSeconds: 8, Resolution: "1280x720", OutputPath: "o.mp4", InputImage: path}
	p, err := NewParams(req, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Image == nil || p.Image.MIMEType != "image/png" || p.Image.Name != "first.png" {
		t.Fatalf("image = %+v", p.Image)
	}

	req.InputImage = filepath.Join(dir, "missing.png")
	_, err = NewParams(req, "", 0)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "input_image" {
		t.Errorf("err = %v, want input_image validation error", err)
	}
}
