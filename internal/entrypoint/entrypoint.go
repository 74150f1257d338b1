package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/config"
	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/documents"
	"github.com/arkivist/heritage/internal/exporters"
	"github.com/arkivist/heritage/internal/graph"
	http_controllers "github.com/arkivist/heritage/internal/http"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/perf"
	"github.com/arkivist/heritage/internal/resolver"
	"github.com/arkivist/heritage/internal/scheduler"
	"github.com/arkivist/heritage/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the reconcile scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.Infof("Starting Heritage v%s", version)

	ctx := context.Background()

	// Initialize the relational database, the source of truth for record IDs
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Error closing database")
		}
	}()

	// Connect the document store
	docStore, err := documents.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect document store: %v", err)
	}
	if err := docStore.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to ensure document indexes")
	}

	// Connect the graph store
	graphStore, err := graph.Connect(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, logger)
	if err != nil {
		log.Fatalf("Failed to connect graph store: %v", err)
	}

	// A redis-backed resolver lets parallel batch workers of the optimized
	// strategy share xref mappings; without redis each run keeps them in memory.
	var newResolver func(runID string) resolver.Resolver
	if cfg.Redis.Addr != "" {
		logger.Infof("Using redis resolver at %s", cfg.Redis.Addr)
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		newResolver = func(runID string) resolver.Resolver {
			return resolver.NewRedis(redisClient, runID)
		}
	}

	pipeline := importers.NewPipeline(db.DB, docStore, graphStore, newResolver, logger, importers.Options{
		BatchSize:       cfg.Import.BatchSize,
		Workers:         cfg.Import.Workers,
		MemoryCeilingMB: cfg.Import.MemoryCeilingMB,
	})

	treeRepo := trees.NewRepository(db.DB)
	tracker := perf.NewDBTracker(db.DB, logger)
	exporter := exporters.NewGedcomExporter(db.DB, logger)

	importService := services.NewImportService(treeRepo, pipeline, tracker, cfg.Import.MaxFileSizeMB, logger)
	exportService := services.NewExportService(exporter)
	treeService := services.NewTreeService(treeRepo)

	// Periodic cross-store reconciliation sweep
	var reconciler *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		reconciler = scheduler.NewReconcileScheduler(treeRepo, docStore, graphStore, cfg.Reconcile.Schedule, logger)
		if err := reconciler.Start(); err != nil {
			log.Fatalf("Failed to start reconcile scheduler: %v", err)
		}
		logger.Infof("Reconcile sweep scheduled: %s", cfg.Reconcile.Schedule)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Version:       version,
		ImportService: importService,
		ExportService: exportService,
		TreeService:   treeService,
		DocumentPing:  docStore,
		GraphPing:     graphStore,
		Log:           logger,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if reconciler != nil {
			reconciler.Stop()
		}
		if err := graphStore.Close(ctx); err != nil {
			logger.WithError(err).Error("Error closing graph store")
		}
		if err := docStore.Close(ctx); err != nil {
			logger.WithError(err).Error("Error closing document store")
		}
	}

	Serve(router, cfg, onShutdown)
}
