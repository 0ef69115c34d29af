// Command pano_backend serves the 360° panorama generation demo: a web
// form that enriches a text prompt through an LLM backend and renders an
// equirectangular image through a diffusion backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pano_backend/core"
	"pano_backend/db"
	"pano_backend/diffusion"
	"pano_backend/enrich"
	"pano_backend/generator"
	"pano_backend/logging"
	"pano_backend/webui"
	"pano_backend/webui/auth"
)

const logFilePath = "app.log"

func main() {
	os.Exit(run())
}

func run() int {
	describe := flag.String("describe", "", "enrich the given prompt and print the description, without generating an image")
	flag.Parse()

	color.Cyan("=== 360° Panorama Generator ===")

	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	isDev := core.ParseBoolEnv("DEBUG", false)
	level := logging.ParseLevel(core.GetEnvOrDefault("LOG_LEVEL", core.DefaultLogLevel))
	logger, err := logging.NewLoggerAtLevel(level, isDev, logFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Sync()

	resolver := core.NewResolver()
	cfg, err := resolver.Resolve()
	if err != nil {
		logger.Error("configuration error", zap.Error(err))
		printConfigError(err)
		return core.ExitCodeError
	}

	enrichClient := enrich.NewClient(cfg.Enrich, logger)

	if *describe != "" {
		return runDescribe(enrichClient, *describe, logger)
	}

	// Optional adapter registry resolves the style trigger word for the
	// configured adapter.
	var registry *diffusion.AdapterRegistry
	if cfg.ImageGen.AdapterRegistry != "" {
		registry, err = diffusion.LoadAdapterRegistry(cfg.ImageGen.AdapterRegistry)
		if err != nil {
			logger.Warn("adapter registry unavailable, using configured trigger word",
				zap.String("path", cfg.ImageGen.AdapterRegistry), zap.Error(err))
		}
	}
	triggerWord := registry.TriggerWordFor(cfg.ImageGen.LoRAModelID, cfg.ImageGen.TriggerWord)

	client := diffusion.NewHTTPClient(cfg.ImageGen.APIURL)
	manager := diffusion.NewManager(client, cfg.ImageGen, registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the pipeline up front so a dead backend fails at startup, not
	// on the first request.
	if _, err := manager.Get(ctx); err != nil {
		logger.Error("pipeline initialization failed", zap.Error(err))
		color.Red("✗ Pipeline initialization error: %v", err)
		color.Yellow("  Check that the diffusion backend at %s is running (SD_API_URL).", cfg.ImageGen.APIURL)
		return core.ExitCodeError
	}

	recorder, lister, closeDB := openHistory(cfg.DBPath, logger)
	if closeDB != nil {
		defer closeDB()
	}

	opts := []generator.Option{generator.WithTriggerWord(triggerWord)}
	if recorder != nil {
		opts = append(opts, generator.WithHistory(recorder))
	}
	orchestrator := generator.NewOrchestrator(resolver, enrichClient,
		generator.NewPipelineSource(manager), logger, opts...)

	serverConfig := webui.DefaultServerConfig(cfg.Port)
	if cfg.UIPassword != "" {
		hash, err := auth.HashPassword(cfg.UIPassword)
		if err != nil {
			logger.Error("failed to hash UI password", zap.Error(err))
			return core.ExitCodeError
		}
		serverConfig.PasswordHash = hash
	}

	server, err := webui.NewServer(serverConfig, orchestrator, lister, logger)
	if err != nil {
		logger.Error("failed to create web server", zap.Error(err))
		return core.ExitCodeError
	}

	color.Green("✓ Configuration loaded")
	color.Green("✓ Pipeline ready")
	color.Cyan("Serving on http://localhost:%d", cfg.Port)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		color.Yellow("\nShutting down...")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown did not complete cleanly", zap.Error(err))
		}
		return core.ExitCodeSuccess
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			color.Red("✗ Server error: %v", err)
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	}
}

// runDescribe runs enrichment only and prints the result. Useful for
// checking credentials and prompt quality without a diffusion backend.
func runDescribe(client *enrich.Client, prompt string, logger *logging.Logger) int {
	text, err := client.Enrich(context.Background(), prompt)
	if err != nil {
		logger.Error("enrichment failed", zap.Error(err))
		color.Red("✗ Enrichment failed: %v", err)
		return core.ExitCodeError
	}
	fmt.Println(text)
	return core.ExitCodeSuccess
}

// openHistory opens the history store. History is supplementary: any
// failure is logged and the app runs without it.
func openHistory(dbPath string, logger *logging.Logger) (generator.HistoryRecorder, webui.HistoryLister, func()) {
	if dbPath == "" {
		return nil, nil, nil
	}

	if err := db.RunMigrationsFromPath(dbPath, "file://db/migrations"); err != nil {
		logger.Warn("history disabled: migrations failed", zap.Error(err))
		return nil, nil, nil
	}

	database, err := db.NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		logger.Warn("history disabled: cannot open database", zap.Error(err))
		return nil, nil, nil
	}

	repo := db.NewRepository(database)
	return &historyStore{repo: repo}, repo, func() { database.Close() }
}

// historyStore adapts db.Repository to the orchestrator's recorder.
type historyStore struct {
	repo *db.Repository
}

func (h *historyStore) Record(ctx context.Context, entry generator.HistoryEntry) error {
	return h.repo.Insert(ctx, db.GenerationRecord{
		ID:             entry.ID,
		Prompt:         entry.Prompt,
		EnrichedPrompt: entry.EnrichedPrompt,
		Steps:          entry.Steps,
		Guidance:       entry.Guidance,
		Status:         entry.Status,
		Enriched:       entry.Enriched,
		CreatedAt:      entry.CreatedAt,
	})
}

// printConfigError prints a configuration failure with remediation hints.
func printConfigError(err error) {
	color.Red("✗ Configuration error: %v", err)
	if configErr, ok := core.IsConfigError(err); ok && configErr.Action != "" {
		color.Yellow("  → %s", configErr.Action)
	}
	fmt.Println()
	fmt.Println("Required settings (.env file or environment):")
	fmt.Println("  API_KEY     - API key for the enrichment backend")
	fmt.Println("  PROJECT_ID  - project identifier for the enrichment backend")
}
