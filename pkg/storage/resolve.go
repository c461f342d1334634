package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const s3Scheme = "s3://"

// Resolve maps an output location to a store and the path inside it.
//
// "s3://bucket/dir/clip.mp4" resolves to an S3Store for bucket with path
// "dir/clip.mp4"; s3c must then be non-nil. Anything else is a local path,
// resolved to a Local store rooted at its directory.
func Resolve(location string, s3c S3Client) (FileStore, string, error) {
	if location == "" {
		return nil, "", errors.New("storage: empty location")
	}
	if strings.HasPrefix(location, s3Scheme) {
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
		if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return nil, "", fmt.Errorf("storage: %q is not s3://bucket/key", location)
		}
		if s3c == nil {
			return nil, "", fmt.Errorf("storage: no S3 client configured for %s", location)
		}
		return NewS3(s3c, bucket, ""), key, nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, "", err
	}
	local, err := NewLocal(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	return local, filepath.Base(abs), nil
}
