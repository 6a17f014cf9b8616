package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/platform/config"
	"github.com/light-bringer/provenance-ledger/internal/platform/logger"
	"github.com/light-bringer/provenance-ledger/internal/platform/tracing"
	"github.com/light-bringer/provenance-ledger/internal/services"
	"github.com/light-bringer/provenance-ledger/internal/transport/grpc/ledger"
	httphandler "github.com/light-bringer/provenance-ledger/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Starting Provenance Ledger...")
	log.Printf("Backend: %s", cfg.Backend)
	log.Printf("gRPC Port: %s", cfg.GRPCPort)
	log.Printf("HTTP Port: %s", cfg.HTTPPort)

	slogger := logger.New(os.Stdout, cfg.LogLevel, cfg.ServiceName)

	// 2. Tracing
	shutdownTracing, err := tracing.Setup(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	// 3. Initialize service dependencies (DI container)
	serviceOpts, err := services.NewServiceOptions(ctx, cfg, slogger)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer serviceOpts.Close()

	// 4. Create gRPC server
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			ledger.LoggingInterceptor(slogger),
			ledger.AuthInterceptor(serviceOpts.Tokens),
		),
	)
	pb.RegisterLedgerServiceServer(grpcServer, serviceOpts.LedgerHandler)

	// 5. Enable reflection (for grpcurl and debugging)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	// 6. Create HTTP server over the same handler
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httphandler.NewRouter(serviceOpts.LedgerHandler, serviceOpts.Tokens, serviceOpts.Registry, slogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("gRPC server listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// 7. Graceful shutdown handling
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
