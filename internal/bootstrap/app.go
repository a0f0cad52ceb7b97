package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/documents"
	"dossier-backend/internal/files"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/render"
	"dossier-backend/internal/sections"
	"dossier-backend/internal/shared/config"
	"dossier-backend/internal/shared/server"
	"dossier-backend/internal/shared/storage/db"
	"dossier-backend/internal/shared/storage/object"
	localstore "dossier-backend/internal/shared/storage/object/local"
	s3store "dossier-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	DocumentsRepo documents.DocumentsRepo
	SectionsRepo  sections.Repo
	FilesRepo     files.FilesRepo

	DocumentsService *documents.Service
	SectionsService  *sections.Service
	FilesService     *files.Service

	DocumentsHandler *documents.Handler
	SectionsHandler  *sections.Handler
	FilesHandler     *files.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		SectionHandler:  app.SectionsHandler,
		FileHandler:     app.FilesHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.RenderQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.RenderQueueURL, cfg.AWSRegion)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var docRepo documents.DocumentsRepo
	var secRepo sections.Repo
	var fileRepo files.FilesRepo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		secRepo = &sections.PGRepo{DB: app.DB}
		fileRepo = &files.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		secRepo = sections.NewMemoryRepo()
		fileRepo = files.NewMemoryRepo()
	}

	docSvc := &documents.Service{Repo: docRepo}
	fileSvc := &files.Service{Store: app.Store, Repo: fileRepo}
	secSvc := sections.NewService(secRepo, docRepo, fileSvc, render.NewMarkdownRenderer(), app.Queue)

	app.DocumentsRepo = docRepo
	app.SectionsRepo = secRepo
	app.FilesRepo = fileRepo
	app.DocumentsService = docSvc
	app.SectionsService = secSvc
	app.FilesService = fileSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.SectionsHandler = sections.NewHandler(secSvc)
	app.FilesHandler = files.NewHandler(fileSvc)
}
