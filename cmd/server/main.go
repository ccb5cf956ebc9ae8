package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/db"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/httpapi"
	"github.com/docvault/docvault/internal/httpapi/handlers"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/remote"
	"github.com/docvault/docvault/internal/store/rabbitmq"
	"github.com/docvault/docvault/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	db.Migrate(gdb)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()

	docRepo := document.NewRepo(gdb)
	docSvc := document.NewService(docRepo)

	ingestRepo := ingest.NewRepo(gdb)
	remoteClient := remote.NewClient(cfg.IngestBaseURL, cfg.IngestTimeout)

	var (
		dispatcher ingest.Dispatcher
		pool       *ingest.Pool
		publisher  *rabbitmq.Publisher
	)
	switch cfg.DispatchMode {
	case "rabbitmq":
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit publisher: %v", err)
		}
		defer publisher.Close()
		dispatcher = publisher
	case "pool":
		pool = ingest.NewPool(cfg.IngestQueueSize)
		dispatcher = pool
	default:
		log.Fatalf("unsupported DISPATCH_MODE=%q", cfg.DispatchMode)
	}

	ingestSvc := ingest.NewService(ingestRepo, docRepo, remoteClient, dispatcher)
	if pool != nil {
		pool.Start(cfg.WorkerConcurrency, ingestSvc.Reconcile)
	}

	h := handlers.NewHandler(gdb, cfg, rds, docSvc, ingestSvc, remoteClient)
	router := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on %s dispatch=%s", cfg.HTTPAddr, cfg.DispatchMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	// Drain in-flight reconciliation before exiting; remote calls already
	// started run to completion.
	if pool != nil {
		pool.Stop()
	}
}
