package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"record-ingest-backend/config"
	_ "record-ingest-backend/docs"
	"record-ingest-backend/internal/controller"
	"record-ingest-backend/internal/elasticsearch"
	"record-ingest-backend/internal/filestate"
	"record-ingest-backend/internal/kafka"
	"record-ingest-backend/internal/mongodb"
	"record-ingest-backend/internal/mysql"
	"record-ingest-backend/internal/parser"
	"record-ingest-backend/internal/postgres"
	"record-ingest-backend/internal/repository"
	"record-ingest-backend/internal/scheduler"
	"record-ingest-backend/internal/service"
	"record-ingest-backend/internal/store"
)

// @title           Record Ingest API
// @version         1.0
// @description     Accepts JSON records over HTTP or from a line-delimited file, stores them in a document store and exposes an in-memory log of operation outcomes.

// @host      localhost:3000
// @BasePath  /
// @schemes   http

// @tag.name         logs
// @tag.description  In-memory operation outcome log

// @tag.name         data
// @tag.description  Record ingestion

// @tag.name         health
// @tag.description  API health check operations

func main() {
	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewRecordStore,
			NewFileStateManager,
			store.NewInMemoryLogBuffer,
			kafka.NewKafkaOutcomePublisher,
			parser.NewJSONRecordParser,
			service.NewOutcomeService,
			service.NewRecordService,
			service.NewIngestService,
			controller.NewLogController,
			controller.NewDataController,
			controller.NewHealthController,
			NewStaticController,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			RegisterScheduler,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Logging)
	return cfg, nil
}

func setupLogger(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(controller.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logController *controller.LogController,
	dataController *controller.DataController,
	healthController *controller.HealthController,
	staticController *controller.StaticController,
) {
	controller.RegisterLogRoutes(router, logController)
	controller.RegisterDataRoutes(router, dataController)
	controller.RegisterHealthRoutes(router, healthController)
	controller.RegisterStaticRoutes(router, staticController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Server is running on http://localhost:%s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

// NewRecordStore builds the configured backend and registers its Close hook.
// fx runs OnStop hooks in reverse order, and this hook is appended before the
// HTTP server's, so the store closes only after in-flight requests drain.
func NewRecordStore(lc fx.Lifecycle, cfg *config.Config) (repository.RecordStore, error) {
	recordStore, err := newRecordStore(cfg)
	if err != nil {
		return nil, err
	}
	registerStoreClose(lc, recordStore)
	return recordStore, nil
}

func registerStoreClose(lc fx.Lifecycle, recordStore repository.RecordStore) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := recordStore.Close(ctx); err != nil {
				log.Error().Err(err).Str("store", recordStore.Name()).Msg("Error closing store")
			}
			return nil
		},
	})
}

func newRecordStore(cfg *config.Config) (repository.RecordStore, error) {
	switch cfg.Store.Driver {
	case "", "mongodb", "mongo":
		return mongodb.NewMongoRecordStore(cfg), nil
	case "elasticsearch":
		return elasticsearch.NewElasticRecordStore(cfg), nil
	case "postgres", "postgresql":
		return postgres.NewPostgresRecordStore(cfg)
	case "mysql":
		return mysql.NewMySQLRecordStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}

func NewFileStateManager(cfg *config.Config) filestate.Manager {
	return filestate.NewManager(cfg.FileState.FilePath)
}

func NewStaticController(cfg *config.Config) *controller.StaticController {
	return controller.NewStaticController(cfg.Server.StaticDir)
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, recordStore repository.RecordStore, ingestSvc service.IngestService) error {
	_, err := scheduler.NewScheduler(lc, cfg, recordStore, ingestSvc)
	return err
}
