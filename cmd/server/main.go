// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"educycle_backend/internal/book"
	"educycle_backend/internal/config"
	"educycle_backend/internal/platform/database"
	platformElasticsearch "educycle_backend/internal/platform/elasticsearch"
	"educycle_backend/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "sync-books" {
		syncBooksCmd := flag.NewFlagSet("sync-books", flag.ExitOnError)
		batchSize := syncBooksCmd.Int("batch-size", 100, "Batch size for syncing books")
		esRefresh := syncBooksCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")
		_ = syncBooksCmd.Parse(os.Args[2:])
		runBookSync(*batchSize, *esRefresh)
		return
	}
	startServer()
}

// runBookSync re-indexes every book from the database into Elasticsearch.
func runBookSync(batchSize int, esRefresh string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
	}
	db, err := database.NewGORM(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database for sync", zap.Error(err))
	}
	defer database.CloseGORMDB(db, appLogger)

	esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Elasticsearch client for sync", zap.Error(err))
	}
	if esClient == nil {
		appLogger.Fatal("ELASTICSEARCH_URL must be set to sync books.")
	}

	svc := book.NewService(book.NewGORMRepository(db), nil, esClient, appLogger)
	synced, err := svc.SyncIndex(context.Background(), batchSize, esRefresh)
	if err != nil {
		appLogger.Fatal("Book synchronization failed", zap.Error(err), zap.Int("synced", synced))
	}
	appLogger.Info("Book synchronization completed successfully.", zap.Int("synced", synced))
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	instance, cleanup, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if instance.ES != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := platformElasticsearch.CreateIndexIfNotExists(ctx, instance.ES, platformElasticsearch.BooksIndexName, platformElasticsearch.BooksMapping(), instance.Logger)
		cancel()
		if err != nil {
			instance.Logger.Error("Failed to create Elasticsearch books index; search falls back to the database.", zap.Error(err))
		}
	}

	go func() {
		if err := instance.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	instance.Logger.Info("Received signal; shutting down server", zap.String("signal", sig.String()))

	timeout := cfg.ServerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := instance.Server.Shutdown(shutdownCtx); err != nil {
		instance.Logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		instance.Logger.Info("Server shutdown complete.")
	}
}
