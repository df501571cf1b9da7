// Package storage holds the pieces shared by the media store backends.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Object is a local temp file opened for upload. Close removes the file.
type Object struct {
	*os.File
	Key         string
	Size        int64
	ContentType string
}

// Open prepares the file at localPath for upload under a fresh random key
// that keeps the original extension. On failure the file is removed.
func Open(localPath string) (*Object, error) {
	if localPath == "" {
		return nil, errors.New("local path is empty")
	}

	f, err := os.Open(localPath)
	if err != nil {
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("failed to open local file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("failed to stat local file: %w", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("failed to rewind local file: %w", err)
	}

	return &Object{
		File:        f,
		Key:         uuid.NewString() + strings.ToLower(filepath.Ext(localPath)),
		Size:        info.Size(),
		ContentType: mt.String(),
	}, nil
}

// Close closes and removes the local file.
func (o *Object) Close() error {
	closeErr := o.File.Close()
	if err := os.Remove(o.File.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove local file: %w", err)
	}
	return closeErr
}

// PublicURL builds the address an uploaded object is served from.
func PublicURL(base, bucket, key string) (string, error) {
	u, err := url.JoinPath(base, bucket, key)
	if err != nil {
		return "", fmt.Errorf("failed to build public url: %w", err)
	}
	return u, nil
}

// RemoveTemp deletes local uploads that will never reach a media store.
// Empty paths are skipped and errors are ignored.
func RemoveTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
