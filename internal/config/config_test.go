package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.DispatchMode != "pool" {
		t.Fatalf("dispatch mode = %q", cfg.DispatchMode)
	}
	if cfg.IngestTimeout != 120*time.Second {
		t.Fatalf("ingest timeout = %s", cfg.IngestTimeout)
	}
	if cfg.WorkerConcurrency != 2 {
		t.Fatalf("concurrency = %d", cfg.WorkerConcurrency)
	}
	if cfg.RabbitQueue != "ingestion_jobs" {
		t.Fatalf("rabbit queue = %q", cfg.RabbitQueue)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DISPATCH_MODE", "rabbitmq")
	t.Setenv("WORKER_CONCURRENCY", "200")
	t.Setenv("INGEST_TIMEOUT_SECONDS", "30")
	t.Setenv("INGEST_QUEUE_SIZE", "5")

	cfg := Load()

	if cfg.DispatchMode != "rabbitmq" {
		t.Fatalf("dispatch mode = %q", cfg.DispatchMode)
	}
	if cfg.WorkerConcurrency != 50 {
		t.Fatalf("concurrency = %d, want capped at 50", cfg.WorkerConcurrency)
	}
	if cfg.IngestTimeout != 30*time.Second {
		t.Fatalf("ingest timeout = %s", cfg.IngestTimeout)
	}
	if cfg.IngestQueueSize != 5 {
		t.Fatalf("queue size = %d", cfg.IngestQueueSize)
	}
}
