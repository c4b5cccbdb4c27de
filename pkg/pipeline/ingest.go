package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/blob"
	mserrors "github.com/Rahulrocknov18/meetingsummarizer/pkg/errors"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
)

// MaxUploadBytes is the audio payload size ceiling (50 MiB).
const MaxUploadBytes = 50 << 20

// allowedAudioTypes is the upload media-type allow-list.
var allowedAudioTypes = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/mp3":   {},
	"audio/wav":   {},
	"audio/wave":  {},
	"audio/x-wav": {},
	"audio/m4a":   {},
	"audio/mp4":   {},
	"audio/x-m4a": {},
	"audio/aac":   {},
	"audio/webm":  {},
	"audio/ogg":   {},
	"audio/flac":  {},
}

// AllowedAudioType reports whether the declared media type is accepted.
// Parameters such as "codecs=opus" are ignored.
func AllowedAudioType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	_, ok := allowedAudioTypes[strings.ToLower(strings.TrimSpace(mediaType))]
	return ok
}

// Upload describes an incoming audio payload. Size is the declared length;
// zero means unknown (the HTTP layer still enforces the ceiling on the body).
type Upload struct {
	Title       string
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Ingestor validates uploads, stores the audio blob, and creates the
// meeting record in the uploaded state.
type Ingestor struct {
	store   Store
	blobs   blob.Store
	logger  logging.Logger
	metrics *Metrics
}

// NewIngestor creates an ingestor. metrics may be nil.
func NewIngestor(store Store, blobs blob.Store, logger logging.Logger, metrics *Metrics) *Ingestor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Ingestor{store: store, blobs: blobs, logger: logger, metrics: metrics}
}

// Ingest validates and persists an upload. Validation failures reject the
// payload before any blob or record is written.
func (i *Ingestor) Ingest(ctx context.Context, up Upload) (*meetings.Meeting, error) {
	if up.Data == nil || up.Filename == "" {
		return nil, fmt.Errorf("%w: no audio file provided", mserrors.ErrValidation)
	}
	if !AllowedAudioType(up.ContentType) {
		return nil, fmt.Errorf("%w: invalid file type %q, please upload an audio file", mserrors.ErrValidation, up.ContentType)
	}
	if up.Size > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file size %d exceeds the %d byte limit", mserrors.ErrPayloadTooLarge, up.Size, MaxUploadBytes)
	}

	key := blob.NewKey(up.Filename)
	// The declared size is advisory; count the bytes actually streamed so
	// an unknown-length payload is rejected rather than truncated.
	counted := &countingReader{r: io.LimitReader(up.Data, MaxUploadBytes+1)}
	url, err := i.blobs.Put(ctx, key, up.ContentType, counted)
	if err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}
	if counted.n > MaxUploadBytes {
		if err := i.blobs.Delete(ctx, url); err != nil {
			i.logger.Warn("removing oversize blob", logging.F("key", key), logging.Err(err))
		}
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", mserrors.ErrPayloadTooLarge, MaxUploadBytes)
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = up.Filename
	}

	m, err := i.store.CreateMeeting(ctx, meetings.NewMeeting{
		Title:         title,
		AudioURL:      url,
		AudioFilename: up.Filename,
	})
	if err != nil {
		return nil, err
	}

	i.metrics.ObserveUpload(up.Size)
	i.logger.Info("meeting ingested",
		logging.F("meeting_id", m.ID),
		logging.F("filename", up.Filename),
		logging.F("content_type", up.ContentType))

	return m, nil
}

// countingReader tracks how many bytes passed through.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
