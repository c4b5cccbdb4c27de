package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Rahulrocknov18/meetingsummarizer/config"
	"github.com/Rahulrocknov18/meetingsummarizer/credentials"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/analysis"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/blob"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/db"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/meetings"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/pipeline"
	"github.com/Rahulrocknov18/meetingsummarizer/pkg/speech"
	"github.com/Rahulrocknov18/meetingsummarizer/services/api"
)

// metricsNamespace prefixes every metric the server exports.
const metricsNamespace = "meetsum"

// NewServeCommand creates the serve command.
func NewServeCommand(deps *Deps) *cobra.Command {
	var (
		listenAddr string
		blobDir    string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the meeting summarizer API server",
		Long: `Run the meeting summarizer API server.

The server needs a Postgres database (the server.database config section,
overridable via DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD) and a Groq
API key (GROQ_API_KEY or the
system keyring via 'meetsum auth set-key'). Audio files are stored on the
local filesystem under the blob directory and served back at /files/.

Examples:
  # Serve on the default port with local blob storage
  meetsum serve

  # Custom bind address and storage location
  meetsum serve --listen :9090 --blob-dir /var/lib/meetsum/audio`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.load()
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.Server.ListenAddr = listenAddr
			}
			if blobDir != "" {
				cfg.Server.BlobDir = blobDir
			}
			if baseURL != "" {
				cfg.Server.BaseURL = baseURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, deps.newLogger(cfg, true))
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "address to bind the HTTP server to")
	cmd.Flags().StringVar(&blobDir, "blob-dir", "", "directory for stored audio files")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "externally reachable URL for serving audio")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	apiKey, err := credentials.NewStore().APIKey()
	if errors.Is(err, credentials.ErrNoAPIKey) {
		// The server still starts; stage triggers report the missing key.
		logger.Warn("no Groq API key configured, transcription and summarization will fail")
	} else if err != nil {
		return err
	}

	pool, err := db.Open(ctx, cfg.Server.Database, 5, 2*time.Second, logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	if _, err := db.RegisterPoolStatsCollector(pool, metricsNamespace, registry); err != nil {
		return err
	}
	metrics := pipeline.NewMetrics(metricsNamespace, registry)

	serveBase := cfg.Server.BaseURL
	if serveBase == "" {
		serveBase = deriveBaseURL(cfg.Server.ListenAddr)
	}
	blobs, err := blob.NewFSStore(cfg.Server.BlobDir, serveBase, logger)
	if err != nil {
		return fmt.Errorf("preparing blob storage: %w", err)
	}

	transcriber := speech.NewGroqTranscriber(speech.GroqConfig{
		APIKey:  apiKey,
		BaseURL: cfg.Server.GroqBaseURL,
		Model:   cfg.Server.SpeechModel,
	}, logger)
	analyzer := analysis.NewGroqAnalyzer(analysis.GroqConfig{
		APIKey:  apiKey,
		BaseURL: cfg.Server.GroqBaseURL,
		Model:   cfg.Server.ChatModel,
	}, logger)

	repo := meetings.NewRepository(pool, logger)
	ingestor := pipeline.NewIngestor(repo, blobs, logger, metrics)
	transcription := pipeline.NewTranscriptionStage(repo, blobs, transcriber, logger, metrics)
	summarization := pipeline.NewSummarizationStage(repo, analyzer, logger, metrics)

	server := api.NewServer(api.Config{ListenAddr: cfg.Server.ListenAddr},
		repo, ingestor, transcription, summarization, blobs, pool, registry, logger)

	return server.Run(ctx)
}

// deriveBaseURL turns a bind address into a client-reachable URL.
func deriveBaseURL(listenAddr string) string {
	if strings.HasPrefix(listenAddr, ":") {
		return "http://localhost" + listenAddr
	}
	return "http://" + listenAddr
}
