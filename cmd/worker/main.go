package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/db"
	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/remote"
	"github.com/docvault/docvault/internal/store/rabbitmq"
)

type jobMsg struct {
	JobID string `json:"job_id"`
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	docRepo := document.NewRepo(gdb)
	ingestRepo := ingest.NewRepo(gdb)
	remoteClient := remote.NewClient(cfg.IngestBaseURL, cfg.IngestTimeout)

	// The worker only reconciles; triggering happens in the API server.
	svc := ingest.NewService(ingestRepo, docRepo, remoteClient, nil)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	// Declare with the same args as the publisher; an inequivalent
	// redeclaration is a channel error.
	_, err = ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false,
		rabbitmq.MainQueueArgs(cfg.RabbitQueue))
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m jobMsg
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				// Reconciliation runs to completion even during shutdown;
				// the remote call has its own timeout.
				if err := svc.Reconcile(context.Background(), m.JobID); err != nil {
					log.Printf("worker=%d job %s failed cost=%s err=%v", workerID, m.JobID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}
