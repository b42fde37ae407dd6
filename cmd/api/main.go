package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stickerprint/internal/adapter/repo"
	"stickerprint/internal/archive"
	"stickerprint/internal/events"
	"stickerprint/internal/generation"
	"stickerprint/internal/http/handlers"
	"stickerprint/internal/http/httpapi"
	"stickerprint/internal/infra"
	"stickerprint/internal/promptgen"
	"stickerprint/internal/storage"
	"stickerprint/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open data directory")
	}

	promptSets := repo.NewPromptSetRepo(runner)
	jobs := repo.NewJobRepo(runner)
	images := repo.NewImageRepo(runner)
	settings := repo.NewSettingsRepo(runner)

	hub := events.NewHub(logger)
	defer hub.Close()

	generator := generation.NewClient(generation.Options{
		BaseURL:    cfg.OpenAIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GenerationTimeout},
		Logger:     &logger,
	})

	archives := archive.NewBuilder(jobs, images, settings, store, hub, logger)
	promptGen := promptgen.NewService(promptSets, settings, store, generator, hub, logger)

	batchWorker := worker.New(worker.Options{
		PromptSets:        promptSets,
		Jobs:              jobs,
		Images:            images,
		Settings:          settings,
		Store:             store,
		Generator:         generator,
		Archives:          archives,
		Hub:               hub,
		Logger:            logger,
		PollInterval:      cfg.WorkerPoll,
		GenerationTimeout: cfg.GenerationTimeout,
	})

	app := &handlers.App{
		Logger:     logger,
		PromptSets: promptSets,
		Jobs:       jobs,
		Images:     images,
		Settings:   settings,
		Store:      store,
		Hub:        hub,
		Archives:   archives,
		Worker:     batchWorker,
		PromptGen:  promptGen,
	}

	router := httpapi.NewRouter(app, cfg.CORSOrigins)
	server := infra.NewHTTPServer(cfg, router)

	workerCtx, stopWorker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		batchWorker.Run(workerCtx)
	}()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	stopWorker()
	wg.Wait()
	logger.Info().Msg("server stopped")
}
