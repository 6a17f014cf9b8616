package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/platform/config"
	"github.com/light-bringer/provenance-ledger/internal/platform/logger"
	"github.com/light-bringer/provenance-ledger/internal/platform/metrics"
	"github.com/light-bringer/provenance-ledger/internal/relay"
	"github.com/light-bringer/provenance-ledger/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&cfg.Relay.Sink, "sink", cfg.Relay.Sink, "Sink to publish to (redis or kafka)")
	flag.Uint64Var(&cfg.Relay.StartTxID, "from", cfg.Relay.StartTxID, "First transaction id to publish")
	once := flag.Bool("once", false, "Publish pending entries and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *once); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Relay failed: %v", err)
	}
	log.Println("Relay stopped")
}

func run(ctx context.Context, cfg *config.Config, once bool) error {
	slogger := logger.New(os.Stdout, cfg.LogLevel, cfg.ServiceName+"-relay")

	l, err := services.OpenLedger(ctx, cfg, clock.NewRealClock())
	if err != nil {
		return fmt.Errorf("failed to open %s ledger: %w", cfg.Backend, err)
	}
	defer l.Close()

	sink, err := openSink(ctx, cfg.Relay)
	if err != nil {
		return err
	}
	defer sink.Close()

	log.Printf("Relaying audit entries to %s from tx %d", sink.Name(), cfg.Relay.StartTxID)

	r := relay.New(list_audit_entries.NewQuery(l), sink, slogger,
		relay.WithInterval(cfg.Relay.PollInterval),
		relay.WithBatchSize(cfg.Relay.BatchSize),
		relay.WithStart(cfg.Relay.StartTxID),
		relay.WithRecorder(metrics.New(prometheus.DefaultRegisterer)),
	)

	if once {
		n, err := r.Drain(ctx)
		log.Printf("Published %d entries, next tx %d", n, r.Cursor())
		return err
	}
	return r.Run(ctx)
}

func openSink(ctx context.Context, cfg config.RelayConfig) (relay.Sink, error) {
	switch cfg.Sink {
	case "redis":
		return relay.NewRedisSink(ctx, cfg.RedisAddr, cfg.RedisStream)
	case "kafka":
		return relay.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown relay sink %q", cfg.Sink)
	}
}
