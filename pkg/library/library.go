package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haivivi/vidgen/pkg/storage"
	"github.com/haivivi/vidgen/pkg/videogen"
)

// Library pairs video records with the stored files.
type Library struct {
	records Store
	files   storage.FileStore
	now     func() time.Time
}

// New creates a Library over records and files.
func New(records Store, files storage.FileStore) *Library {
	return &Library{records: records, files: files, now: time.Now}
}

// Files returns the store the videos live in. Generators writing into the
// library use it with videogen.WithStore.
func (l *Library) Files() storage.FileStore {
	return l.files
}

// Close closes the record store.
func (l *Library) Close() error {
	return l.records.Close()
}

// NormalizeName turns a user-supplied name into a file name in the
// library: empty becomes "video_<unix>.mp4" and ".mp4" is appended when
// missing. Names with path separators or leading dots are rejected.
func NormalizeName(name string, now time.Time) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("video_%d", now.Unix())
	}
	if !strings.HasSuffix(strings.ToLower(name), ".mp4") {
		name += ".mp4"
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", &videogen.ValidationError{Field: "name", Message: fmt.Sprintf("%q must be a plain file name", name)}
	}
	return name, nil
}

// Name normalizes name with the library clock.
func (l *Library) Name(name string) (string, error) {
	return NormalizeName(name, l.now())
}

// Record stores the metadata of a video generated by res into the library
// under name.
func (l *Library) Record(ctx context.Context, name string, req *videogen.Request, res *videogen.Result) (*Record, error) {
	rec := &Record{
		Name:            name,
		ID:              uuid.NewString(),
		Prompt:          req.Prompt,
		DurationSeconds: req.DurationSeconds,
		Resolution:      req.Resolution,
		Model:           req.Model,
		Created:         l.now().UTC(),
	}
	if res != nil {
		rec.Backend = res.Backend
		rec.Size = res.Bytes
		if res.Job != nil {
			rec.JobID = res.Job.ID
		}
		if res.Params != nil {
			rec.Model = res.Params.Model
		}
	}
	if err := l.records.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("library: put %s: %w", name, err)
	}
	return rec, nil
}

// Get returns the record for name.
func (l *Library) Get(ctx context.Context, name string) (*Record, error) {
	return l.records.Get(ctx, name)
}

// List returns all records, newest first.
func (l *Library) List(ctx context.Context) ([]*Record, error) {
	var out []*Record
	for rec, err := range l.records.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b *Record) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// Open opens the video file for name. The caller closes it.
func (l *Library) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if _, err := NormalizeName(name, l.now()); err != nil {
		return nil, ErrNotFound
	}
	rc, err := l.files.Read(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return rc, err
}

// Delete removes the video file and its record. It returns ErrNotFound
// when neither exists.
func (l *Library) Delete(ctx context.Context, name string) error {
	if _, err := NormalizeName(name, l.now()); err != nil {
		return ErrNotFound
	}
	fileExists, err := l.files.Exists(ctx, name)
	if err != nil {
		return err
	}
	_, err = l.records.Get(ctx, name)
	recordExists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if !fileExists && !recordExists {
		return ErrNotFound
	}
	if fileExists {
		if err := l.files.Delete(ctx, name); err != nil {
			return err
		}
	}
	return l.records.Delete(ctx, name)
}
