// Package storage defines where uploaded video bytes live.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	// ErrObjectNotFound is returned by GetStream when nothing was committed under the key
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that are empty, absolute or escape the store root
	ErrInvalidKey = errors.New("invalid storage key")
)

// ArtifactStore is durable key to bytes storage. PutObject must be atomic: a
// concurrent GetStream sees either nothing or the complete object, never a
// partial write.
type ArtifactStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)
}

// CleanKey normalizes a slash separated key and rejects keys that could
// address anything outside the store.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// ContentTypeForKey infers the MIME type of a stored video from the key extension
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".webm":
		return "video/webm"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
