package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
	"github.com/light-bringer/provenance-ledger/internal/archive"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/platform/config"
	"github.com/light-bringer/provenance-ledger/internal/platform/logger"
	"github.com/light-bringer/provenance-ledger/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&cfg.Export.Target, "target", cfg.Export.Target, "Export target (file or s3)")
	from := flag.Uint64("from", 0, "First transaction id to export")
	flag.Parse()

	ctx := context.Background()
	if err := run(ctx, cfg, *from); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, from uint64) error {
	slogger := logger.New(os.Stdout, cfg.LogLevel, cfg.ServiceName+"-export")

	l, err := services.OpenLedger(ctx, cfg, clock.NewRealClock())
	if err != nil {
		return fmt.Errorf("failed to open %s ledger: %w", cfg.Backend, err)
	}
	defer l.Close()

	writer, err := openWriter(ctx, cfg.Export)
	if err != nil {
		return err
	}

	exporter := archive.NewExporter(list_audit_entries.NewQuery(l), writer, cfg.Export.S3Prefix, slogger)
	result, err := exporter.Export(ctx, from)
	if err != nil {
		return err
	}

	if result.Count == 0 {
		log.Printf("Nothing to export from tx %d", from)
		return nil
	}
	log.Printf("Exported %d entries to %s (next tx %d)", result.Count, result.Key, result.Next)
	return nil
}

func openWriter(ctx context.Context, cfg config.ExportConfig) (archive.BlobWriter, error) {
	switch cfg.Target {
	case "file":
		return archive.NewFSWriter(cfg.Dir)
	case "s3":
		return archive.NewS3Writer(ctx, archive.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown export target %q", cfg.Target)
	}
}
