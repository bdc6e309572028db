package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/lectern/internal/cli"
	"github.com/cloo-solutions/lectern/internal/config"
	"github.com/cloo-solutions/lectern/internal/domain"
	"github.com/cloo-solutions/lectern/internal/gemini"
	"github.com/cloo-solutions/lectern/internal/openai"
	"github.com/cloo-solutions/lectern/internal/server"
	"github.com/cloo-solutions/lectern/internal/service"
	"github.com/cloo-solutions/lectern/internal/storage"
	"github.com/cloo-solutions/lectern/internal/telemetry"
	"github.com/cloo-solutions/lectern/internal/vectorstore"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lectern API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cli.BindEnv(cmd, "port", "PORT")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", defaultMigrationsSource, "Migration source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: telemetry.DefaultSampleRate(cfg.Environment),
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasModel() {
		return fmt.Errorf("no credentials for model provider %q", cfg.ModelProvider)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if err := runMigrations(cfg.DatabaseURL, source); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	model, err := newModelClient(ctx, cfg)
	if err != nil {
		return err
	}
	log.Printf("model provider: %s", cfg.ModelProvider)

	deps := server.Dependencies{
		Pool:                pool,
		Model:               model,
		Language:            cfg.Language,
		QueryTask:           domain.EmbeddingTask(cfg.QueryEmbeddingTask),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		MaxAudioBytes:       cfg.MaxAudioBytes,
	}

	if cfg.VectorBackend == config.VectorBackendChromem {
		store, err := vectorstore.NewChromemStore(cfg.ChromemPath)
		if err != nil {
			return fmt.Errorf("failed to open chromem store: %w", err)
		}
		deps.Store = store
		log.Printf("vector backend: chromem mirror of postgres (path %q)", cfg.ChromemPath)
	} else {
		log.Println("vector backend: postgres")
	}

	if cfg.ArchiveAudio {
		archiver, err := newArchiver(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Archiver = archiver
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func newModelClient(ctx context.Context, cfg *config.Config) (server.ModelClient, error) {
	switch cfg.ModelProvider {
	case config.ProviderOpenAI:
		return openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			ChatModel:           cfg.OpenAIChatModel,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			RequestsPerSecond:   cfg.ModelRPS,
		}), nil
	default:
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:              cfg.GeminiAPIKey,
			Model:               cfg.GeminiModel,
			EmbeddingModel:      cfg.GeminiEmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			RequestsPerSecond:   cfg.ModelRPS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil
	}
}

func newArchiver(ctx context.Context, cfg *config.Config) (service.AudioArchiver, error) {
	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready, archiving audio", s3Client.Bucket())
	return s3Client, nil
}
