package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	openaiembed "github.com/retolabs/docqa/internal/adapters/driven/embedding/openai"
	"github.com/retolabs/docqa/internal/adapters/driven/langdetect"
	openaillm "github.com/retolabs/docqa/internal/adapters/driven/llm/openai"
	"github.com/retolabs/docqa/internal/adapters/driven/loader/pdf"
	"github.com/retolabs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/retolabs/docqa/internal/adapters/driving/httpapi"
	"github.com/retolabs/docqa/internal/chunker"
	"github.com/retolabs/docqa/internal/config"
	"github.com/retolabs/docqa/internal/core/services"
	"github.com/retolabs/docqa/internal/logger"
)

var (
	serveAddr       string
	serveConfigPath string
	serveDataDir    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the docqa HTTP server. Requires OPENAI_API_KEY in the
environment (a .env file in the working directory is honoured) and
pdftotext on PATH for document extraction.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to config.toml")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "index storage directory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	if err := pdf.CheckAvailable(); err != nil {
		return fmt.Errorf("%w\n\n%s", err, pdf.InstallInstructions())
	}

	embedder, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.EmbeddingModel,
		Timeout:           cfg.OpenAI.Timeout.Std(),
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
	})
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	defer embedder.Close()

	llm, err := openaillm.NewLLMService(openaillm.Config{
		APIKey:  apiKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Timeout: cfg.OpenAI.Timeout.Std(),
	})
	if err != nil {
		return fmt.Errorf("creating llm service: %w", err)
	}
	defer llm.Close()

	store, err := sqlite.NewStore(cfg.Storage.IndexDir)
	if err != nil {
		return fmt.Errorf("creating index store: %w", err)
	}

	registry := services.NewRegistry(store)
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	var ingestOpts []services.IngestorOption
	if cfg.Storage.ScratchDir != "" {
		ingestOpts = append(ingestOpts, services.WithScratchDir(cfg.Storage.ScratchDir))
	}
	ingestor := services.NewIngestor(registry, pdf.New(), embedder, splitter, ingestOpts...)
	answerer := services.NewAnswerer(registry, embedder, llm, langdetect.New(),
		services.WithTopK(cfg.Retrieval.TopK))
	cache := services.NewCache(registry)

	server := httpapi.NewServer(ingestor, answerer, cache,
		httpapi.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		httpapi.WithTimeouts(cfg.Server.ReadTimeout.Std(), cfg.Server.WriteTimeout.Std()),
	)
	if err := server.Start(cfg.Server.Addr); err != nil {
		return err
	}
	fmt.Printf("docqa listening on %s\n", server.Addr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info("received %s, shutting down", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadServeConfig loads the config file and applies flag overrides.
func loadServeConfig() (config.Config, error) {
	path := serveConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDataDir != "" {
		cfg.Storage.IndexDir = serveDataDir
	}
	return cfg, nil
}
