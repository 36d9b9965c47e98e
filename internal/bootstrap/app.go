// Package bootstrap assembles shared dependencies for the API server and
// the analysis worker.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/logs"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/storage/object"
	localstore "resume-matcher/internal/shared/storage/object/local"
	s3store "resume-matcher/internal/shared/storage/object/s3"
	"resume-matcher/internal/submissions"
)

const (
	localQueueBuffer   = 64
	localQueueAttempts = 3
	ocrTimeout         = 120 * time.Second
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	// LocalQueue is set only when no SQS queue is configured; the API
	// process then runs an in-process consumer.
	LocalQueue *queue.LocalQueue

	LogsRepo    logs.Repo
	LogsService *logs.Service
	Strategy    matching.Strategy
	Analyzer    *analyzer.Analyzer
	Extractor   *extract.Extractor
	Task        *analysis.Task

	SubmissionsService *submissions.Service
}

// Build prepares shared dependencies and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildQueue(ctx, app); err != nil {
		return nil, err
	}
	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		LogsHandler:        logs.NewHandler(app.LogsService),
		SubmissionsHandler: submissions.NewHandler(app.SubmissionsService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory log repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory log repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, app *App) error {
	if queue.QueueURLFromEnv() != "" {
		client, err := queue.NewSQSClient(ctx, app.Config.AWSRegion)
		if err != nil {
			return fmt.Errorf("init sqs client: %w", err)
		}
		app.Queue = client
		return nil
	}

	if !isDevLike(app.Config.Env) {
		return fmt.Errorf("RM_SQS_QUEUE_URL is required outside dev")
	}
	local := queue.NewLocalQueue(localQueueBuffer, localQueueAttempts)
	app.Queue = local
	app.LocalQueue = local
	return nil
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.LogsRepo = &logs.PGRepo{DB: app.DB}
	} else {
		app.LogsRepo = logs.NewMemoryRepo()
	}
	app.LogsService = &logs.Service{Repo: app.LogsRepo}

	strategy, err := matching.New(ctx, matching.Config{
		Strategy:         app.Config.MatcherStrategy,
		OllamaBaseURL:    app.Config.OllamaBaseURL,
		OllamaChatModel:  app.Config.OllamaChatModel,
		OllamaEmbedModel: app.Config.OllamaEmbedModel,
		GeminiAPIKey:     app.Config.GeminiAPIKey,
		GeminiModel:      app.Config.GeminiModel,
		GeminiEmbedModel: app.Config.GeminiEmbedModel,
		Rank: matching.RankConfig{
			TopK:      app.Config.RankTopK,
			Threshold: app.Config.RankThreshold,
		},
	})
	if err != nil {
		return err
	}
	app.Strategy = strategy
	app.Analyzer = analyzer.New(strategy)

	var ocr *extract.OCRClient
	if strings.TrimSpace(app.Config.OCRServiceURL) != "" {
		ocr = extract.NewOCRClient(app.Config.OCRServiceURL, ocrTimeout)
	}
	app.Extractor = &extract.Extractor{Store: app.Store, OCR: ocr}

	app.Task = &analysis.Task{
		Logs:      app.LogsRepo,
		Extractor: app.Extractor,
		Analyzer:  app.Analyzer,
	}
	app.SubmissionsService = submissions.NewService(app.LogsService, app.Store, app.Queue)

	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
