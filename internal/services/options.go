package services

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/spanner"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_audit_entry"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/repo"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/assign_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/register_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/update_status"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
	"github.com/light-bringer/provenance-ledger/internal/platform/config"
	"github.com/light-bringer/provenance-ledger/internal/platform/metrics"
	"github.com/light-bringer/provenance-ledger/internal/transport/grpc/ledger"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	Ledger        contracts.Ledger
	LedgerHandler *ledger.Handler
	Tokens        *auth.TokenService
	Metrics       *metrics.Metrics
	Registry      *prometheus.Registry
}

// OpenLedger opens the storage backend selected by cfg.
func OpenLedger(ctx context.Context, cfg *config.Config, clk clock.Clock) (contracts.Ledger, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return repo.NewMemoryLedger(clk), nil
	case config.BackendSQLite:
		return repo.OpenSQLLedger(ctx, repo.DriverSQLite, cfg.SQLiteDSN, clk)
	case config.BackendPostgres:
		return repo.OpenSQLLedger(ctx, repo.DriverPostgres, cfg.PostgresDSN, clk)
	case config.BackendSpanner:
		client, err := spanner.NewClient(ctx, cfg.SpannerDB)
		if err != nil {
			return nil, fmt.Errorf("failed to create Spanner client: %w", err)
		}
		l, err := repo.NewSpannerLedger(ctx, client, clk)
		if err != nil {
			client.Close()
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ServiceOptions, error) {
	// 1. Open the ledger host
	clk := clock.NewRealClock()
	l, err := OpenLedger(ctx, cfg, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s ledger: %w", cfg.Backend, err)
	}

	// 2. Record the system owner
	if cfg.Owner != "" {
		owner, err := l.Bootstrap(ctx, domain.Identity(cfg.Owner))
		if err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("failed to bootstrap owner %q (recorded %q): %w", cfg.Owner, owner, err)
		}
		logger.Info("ledger owner recorded", slog.String("owner", string(owner)))
	}

	// 3. Identity and observability
	tokens, err := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer)
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	return &ServiceOptions{
		Ledger:        l,
		LedgerHandler: NewLedgerHandler(l, m, logger),
		Tokens:        tokens,
		Metrics:       m,
		Registry:      registry,
	}, nil
}

// NewLedgerHandler wires every use case and query over l into a gRPC handler.
func NewLedgerHandler(l contracts.Ledger, observer contracts.Observer, logger *slog.Logger) *ledger.Handler {
	// Command use cases (write operations)
	commands := ledger.Commands{
		RegisterProduct: register_product.NewInteractor(l, observer, logger),
		UpdateStatus:    update_status.NewInteractor(l, observer, logger),
		AssignRole:      assign_role.NewInteractor(l, observer, logger),
	}

	// Query use cases (read operations)
	queries := ledger.Queries{
		GetProduct:        get_product.NewQuery(l),
		GetStatusHistory:  get_status_history.NewQuery(l),
		ListStatusHistory: list_status_history.NewQuery(l),
		GetAuditEntry:     get_audit_entry.NewQuery(l),
		ListAuditEntries:  list_audit_entries.NewQuery(l),
		GetRole:           get_role.NewQuery(l),
	}

	return ledger.NewHandler(commands, queries)
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.Ledger != nil {
		_ = s.Ledger.Close()
	}
}
