// Package api exposes the meeting pipeline over HTTP: upload, listing,
// detail, stage triggers, stored-audio serving, health, and metrics.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/blob"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/pipeline"
)

// Default server settings.
const (
	DefaultListenAddr      = ":8080"
	DefaultShutdownTimeout = 10 * time.Second

	// readHeaderTimeout bounds slow-header clients.
	readHeaderTimeout = 10 * time.Second
)

// Store is the read surface the handlers need beyond the pipeline stages.
type Store interface {
	ListMeetings(ctx context.Context) ([]*meetings.Meeting, error)
	GetDetail(ctx context.Context, meetingID string) (*meetings.Detail, error)
}

// Ingestor accepts validated uploads. *pipeline.Ingestor satisfies it.
type Ingestor interface {
	Ingest(ctx context.Context, up pipeline.Upload) (*meetings.Meeting, error)
}

// TranscriptionRunner runs the transcription stage for one meeting.
type TranscriptionRunner interface {
	Run(ctx context.Context, meetingID string) (*pipeline.TranscriptionResult, error)
}

// SummarizationRunner runs the summarization stage for one meeting.
type SummarizationRunner interface {
	Run(ctx context.Context, meetingID string) (*pipeline.SummarizationResult, error)
}

// Pinger reports backing-store liveness for the health endpoint.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP server settings.
type Config struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// Server wires the pipeline components behind the HTTP surface.
type Server struct {
	cfg           Config
	store         Store
	ingestor      Ingestor
	transcription TranscriptionRunner
	summarization SummarizationRunner
	files         *blob.FSStore
	pinger        Pinger
	registry      *prometheus.Registry
	logger        logging.Logger
}

// NewServer creates the server. files, pinger, and registry may be nil;
// the corresponding endpoints degrade gracefully.
func NewServer(cfg Config, store Store, ingestor Ingestor, transcription TranscriptionRunner, summarization SummarizationRunner, files *blob.FSStore, pinger Pinger, registry *prometheus.Registry, logger logging.Logger) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		cfg:           cfg,
		store:         store,
		ingestor:      ingestor,
		transcription: transcription,
		summarization: summarization,
		files:         files,
		pinger:        pinger,
		registry:      registry,
		logger:        logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/meetings", s.handleUpload)
	mux.HandleFunc("GET /api/meetings", s.handleList)
	mux.HandleFunc("GET /api/meetings/{id}", s.handleDetail)
	mux.HandleFunc("POST /api/meetings/{id}/transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /api/meetings/{id}/summarize", s.handleSummarize)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.files != nil {
		mux.Handle("GET "+blob.ServePath, http.StripPrefix(blob.ServePath, http.FileServer(http.Dir(s.files.Dir()))))
	}
	if s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return s.withRequestLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.F("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), logging.RequestIDKey, requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.WithContext(ctx).Info("request handled",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", rec.status),
			logging.F("duration_ms", time.Since(start).Milliseconds()))
	})
}
