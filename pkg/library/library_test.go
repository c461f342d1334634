package library

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/haivivi/vidgen/pkg/storage"
	"github.com/haivivi/vidgen/pkg/videogen"
)

func newTestLibrary(t *testing.T, records Store) *Library {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { records.Close() })
	return New(records, files)
}

func newBadgerLibrary(t *testing.T) *Library {
	t.Helper()
	s, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	return newTestLibrary(t, s)
}

func writeVideo(t *testing.T, l *Library, name, data string) {
	t.Helper()
	w, err := l.Files().Write(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "video_1700000000.mp4", false},
		{"  ", "video_1700000000.mp4", false},
		{"sunset", "sunset.mp4", false},
		{"sunset.mp4", "sunset.mp4", false},
		{"Sunset.MP4", "Sunset.MP4", false},
		{"clips/sunset", "", true},
		{`..\evil`, "", true},
		{"..", "", true},
		{".hidden", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeName(tt.in, now)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeName(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func testLibraryCRUD(t *testing.T, l *Library) {
	ctx := context.Background()
	clock := time.Unix(1700000000, 0)
	l.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	req := &videogen.Request{Prompt: "first", DurationSeconds: 4, Resolution: "1280x720"}
	res := &videogen.Result{
		Job:     &videogen.Job{ID: "video_1", Backend: "sdk"},
		Backend: "sdk",
		Bytes:   5,
		Params:  &videogen.Params{Model: "sora-2"},
	}
	writeVideo(t, l, "first.mp4", "first")
	first, err := l.Record(ctx, "first.mp4", req, res)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || first.Model != "sora-2" || first.JobID != "video_1" || first.Size != 5 {
		t.Errorf("record = %+v", first)
	}

	writeVideo(t, l, "second.mp4", "second")
	if _, err := l.Record(ctx, "second.mp4", &videogen.Request{Prompt: "second", Model: "sora-2-pro"}, nil); err != nil {
		t.Fatal(err)
	}

	list, err := l.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "second.mp4" || list[1].Name != "first.mp4" {
		t.Fatalf("list = %+v", list)
	}
	if !list[1].Created.Equal(first.Created) || list[1].Prompt != "first" {
		t.Errorf("round trip lost fields: %+v vs %+v", list[1], first)
	}

	rc, err := l.Open(ctx, "first.mp4")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "first" {
		t.Errorf("data = %q", data)
	}

	if err := l.Delete(ctx, "first.mp4"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Get(ctx, "first.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
	if _, err := l.Open(ctx, "first.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open after delete = %v", err)
	}
	if err := l.Delete(ctx, "first.mp4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := l.Delete(ctx, "../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete traversal = %v, want ErrNotFound", err)
	}
}

func TestLibraryMemory(t *testing.T) {
	testLibraryCRUD(t, newTestLibrary(t, NewMemory()))
}

func TestLibraryBadger(t *testing.T) {
	testLibraryCRUD(t, newBadgerLibrary(t))
}

func TestDeleteFileWithoutRecord(t *testing.T) {
	l := newTestLibrary(t, NewMemory())
	writeVideo(t, l, "orphan.mp4", "x")
	if err := l.Delete(context.Background(), "orphan.mp4"); err != nil {
		t.Fatal(err)
	}
	ok, _ := l.Files().Exists(context.Background(), "orphan.mp4")
	if ok {
		t.Error("file still exists")
	}
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := OpenBadger(BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}
