package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// ServePath is the URL path prefix the API server mounts blob files under.
const ServePath = "/files/"

// FSStore is a filesystem-backed blob store. Files live under a base
// directory and are served by the API server under ServePath, so the URLs
// it returns are fetchable by the transcription stage and by clients.
type FSStore struct {
	dir     string
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

// NewFSStore creates a filesystem store rooted at dir. baseURL is the
// externally reachable server address used to build blob URLs
// (e.g. "http://localhost:8080").
func NewFSStore(dir, baseURL string, logger logging.Logger) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory %s: %w", dir, err)
	}
	return &FSStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
		logger:  logger.With(logging.F("component", "blob_store")),
	}, nil
}

// Dir returns the base directory; the API server mounts it under ServePath.
func (s *FSStore) Dir() string {
	return s.dir
}

// Put stores the payload under key and returns its serving URL.
func (s *FSStore) Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	dest := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating blob subdirectory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating blob file: %w", err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing blob %s: %w", key, err)
	}

	s.logger.Debug("Blob stored",
		logging.F("key", key),
		logging.F("content_type", contentType),
		logging.F("bytes", written))

	return s.baseURL + ServePath + key, nil
}

// Open retrieves a stored payload. URLs under this store's base resolve to
// the local file directly; any other http(s) URL is fetched over the network.
func (s *FSStore) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if key, ok := s.localKey(rawURL); ok {
		f, err := os.Open(filepath.Join(s.dir, filepath.FromSlash(key)))
		if err != nil {
			return nil, fmt.Errorf("opening blob %s: %w", key, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching blob %s: HTTP %d", rawURL, resp.StatusCode)
	}

	return resp.Body, nil
}

// Delete removes a stored payload. Only URLs pointing at this store can be
// deleted.
func (s *FSStore) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.localKey(rawURL)
	if !ok {
		return fmt.Errorf("deleting blob %s: not stored here", rawURL)
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key))); err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	s.logger.Debug("Blob deleted", logging.F("key", key))
	return nil
}

// localKey extracts the storage key when rawURL points at this store.
func (s *FSStore) localKey(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Scheme == "" && strings.HasPrefix(u.Path, ServePath) {
		return s.keyFromPath(u.Path)
	}
	if s.baseURL != "" && strings.HasPrefix(rawURL, s.baseURL+ServePath) {
		return s.keyFromPath(u.Path)
	}
	return "", false
}

func (s *FSStore) keyFromPath(p string) (string, bool) {
	key := strings.TrimPrefix(p, ServePath)
	if validKey(key) != nil {
		return "", false
	}
	return key, true
}

// validKey rejects empty keys and path traversal.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty blob key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
