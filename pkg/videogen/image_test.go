package videogen

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

var testPNG = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestNewImage(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantErr  bool
		wantName string
		wantType string
	}{
		{"png", "dir/first.png", testPNG, false, "first.png", "image/png"},
		{"default name", "", testPNG, false, "reference.png", "image/png"},
		{"jpeg", "", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), false, "reference.jpg", "image/jpeg"},
		{"empty", "", nil, true, "", ""},
		{"text", "", []byte("hello there"), true, "", ""},
		{"too large", "", append(append([]byte{}, testPNG...), make([]byte, MaxImageBytes)...), true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewImage(tt.file, tt.data)
			if tt.wantErr {
				if Category(err) != CategoryValidation {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if img.Name != tt.wantName || img.MIMEType != tt.wantType {
				t.Errorf("image = %s %s, want %s %s", img.Name, img.MIMEType, tt.wantName, tt.wantType)
			}
		})
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(path, testPNG, 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := LoadImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Name != "frame.png" || len(img.Data) != len(testPNG) {
		t.Errorf("image = %+v", img)
	}

	if _, err := LoadImage(filepath.Join(dir, "missing.png")); Category(err) != CategoryValidation {
		t.Errorf("missing file err = %v, want validation error", err)
	}
}

func TestDecodeImageDataURL(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(testPNG)
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"data url", "data:image/png;base64," + b64, false},
		{"bare", b64, false},
		{"no comma", "data:image/png;base64", true},
		{"bad base64", "data:image/png;base64,!!!", true},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("plain text")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImageDataURL(tt.in)
			if tt.wantErr {
				if Category(err) != CategoryValidation {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if img.MIMEType != "image/png" {
				t.Errorf("type = %s", img.MIMEType)
			}
		})
	}
}
