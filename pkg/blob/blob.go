// Package blob provides audio payload storage for the meeting pipeline.
// Payloads are stored under a generated unique key and retrieved back by
// the URL recorded on the meeting.
package blob

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts blob storage: store-by-generated-key, retrieve-by-URL.
type Store interface {
	// Put stores the payload under key and returns the URL it will be
	// served from.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error)

	// Open retrieves a previously stored payload by its URL.
	Open(ctx context.Context, url string) (io.ReadCloser, error)

	// Delete removes a previously stored payload by its URL.
	Delete(ctx context.Context, url string) error
}

// KeyPrefix groups meeting audio under one directory in the store.
const KeyPrefix = "meetings"

// NewKey generates a unique storage key for an uploaded file, preserving
// the original extension so content type survives round trips.
func NewKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return KeyPrefix + "/" + uuid.NewString() + ext
}
