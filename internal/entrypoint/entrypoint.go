// Package entrypoint wires the application together and owns process
// lifecycle: startup order, signal handling and graceful teardown.
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

	"github.com/hardbound/bookshelf/internal/catalogue"
	"github.com/hardbound/bookshelf/internal/config"
	"github.com/hardbound/bookshelf/internal/database"
	"github.com/hardbound/bookshelf/internal/database/books"
	"github.com/hardbound/bookshelf/internal/database/readers"
	http_controllers "github.com/hardbound/bookshelf/internal/http"
	"github.com/hardbound/bookshelf/internal/metadata"
	"github.com/hardbound/bookshelf/internal/scheduler"
	"github.com/hardbound/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout, calling onShutdown first so background workers
// stop before the listener closes.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run starts the full application: catalogue store, repositories, metadata
// provider, resolver, task queue, scheduler and HTTP server.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	booksRepo := books.NewRepository(db.DB)
	readersRepo := readers.NewRepository(db.DB)

	provider := metadata.NewOpenLibraryClientWithBaseURL(cfg.OpenLibrary.BaseURL)
	resolver := catalogue.NewResolver(booksRepo, provider)

	// Task queue for background metadata refresh (optional)
	var taskClient *tasks.Client
	var taskCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		taskClient.Register(tasks.NewRefreshBookQueue(booksRepo, provider))

		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("Task queue disabled; metadata refresh endpoints will not be registered")
	}

	// Periodic sweep for books with metadata gaps (needs the task queue)
	var metadataScheduler *scheduler.MetadataSyncScheduler
	if cfg.MetadataSync.Enabled && taskClient != nil {
		metadataScheduler = scheduler.NewMetadataSyncScheduler(booksRepo, taskClient, cfg.MetadataSync.Schedule)
		if err := metadataScheduler.Start(); err != nil {
			log.Fatalf("Failed to start metadata sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:  db,
		Catalogue: booksRepo,
		Gaps:      booksRepo,
		Resolver:  resolver,
		Readers:   readersRepo,
		Version:   version,
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}
	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if metadataScheduler != nil {
			metadataScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			if taskCancel != nil {
				taskCancel()
			}
			if err := taskClient.Close(); err != nil {
				log.Printf("Failed to close task queue: %v", err)
			}
		}
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	})
}

// RunSweep performs one synchronous metadata refresh pass over every book
// with blank bibliographic fields. Used by the sweep CLI command.
func RunSweep(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	booksRepo := books.NewRepository(db.DB)
	provider := metadata.NewOpenLibraryClientWithBaseURL(cfg.OpenLibrary.BaseURL)

	ctx := context.Background()
	candidates, err := booksRepo.GetBooksMissingMetadata(ctx)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	log.Printf("Sweeping %d books with metadata gaps", len(candidates))

	process := tasks.RefreshBookProcessor(booksRepo, provider)
	failures := 0
	for _, book := range candidates {
		if err := process(ctx, tasks.RefreshBookTask{BookID: book.ID}); err != nil {
			log.Printf("Refresh failed for book %d (%s): %v", book.ID, book.ISBN, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d refreshes failed", failures, len(candidates))
	}
	return nil
}
