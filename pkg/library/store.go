// Package library keeps track of generated videos: a record per video in a
// key-value store (BadgerDB or memory) and the video files in a
// storage.FileStore.
package library

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no video has the given name.
var ErrNotFound = errors.New("library: video not found")

// Record describes one generated video.
type Record struct {
	Name            string    `json:"name" msgpack:"name"`
	ID              string    `json:"id" msgpack:"id"`
	Prompt          string    `json:"prompt" msgpack:"prompt"`
	DurationSeconds int       `json:"duration" msgpack:"duration"`
	Resolution      string    `json:"resolution" msgpack:"resolution"`
	Model           string    `json:"model" msgpack:"model"`
	Backend         string    `json:"backend,omitempty" msgpack:"backend,omitempty"`
	JobID           string    `json:"job_id,omitempty" msgpack:"job_id,omitempty"`
	Size            int64     `json:"size" msgpack:"size"`
	Created         time.Time `json:"created" msgpack:"created"`
}

// Store persists records by name.
type Store interface {
	// Get returns the record for name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Record, error)

	// Put stores rec under rec.Name, replacing any previous record.
	Put(ctx context.Context, rec *Record) error

	// Delete removes the record. Missing names are not an error.
	Delete(ctx context.Context, name string) error

	// All iterates over every record in name order.
	All(ctx context.Context) iter.Seq2[*Record, error]

	// Close releases the store.
	Close() error
}

const keyPrefix = "video:"

func recordKey(name string) []byte {
	return []byte(keyPrefix + name)
}

func encodeRecord(rec *Record) ([]byte, error) {
	return msgpack.Marshal(rec)
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
