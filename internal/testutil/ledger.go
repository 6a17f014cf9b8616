// Package testutil provides ledger fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/repo"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
)

// Owner is the identity every test ledger is bootstrapped with.
const Owner domain.Identity = "owner"

// Backend opens an empty ledger host.
type Backend struct {
	Name string
	Open func(t *testing.T, clk clock.Clock) contracts.Ledger
}

// Backends lists the hosts that run without external services.
func Backends() []Backend {
	return []Backend{
		{Name: "memory", Open: func(t *testing.T, clk clock.Clock) contracts.Ledger { return OpenMemory(t, clk) }},
		{Name: "sqlite", Open: func(t *testing.T, clk clock.Clock) contracts.Ledger { return OpenSQLite(t, clk) }},
	}
}

// OpenMemory returns an empty in-memory ledger.
func OpenMemory(t *testing.T, clk clock.Clock) *repo.MemoryLedger {
	t.Helper()
	return repo.NewMemoryLedger(clk)
}

// OpenSQLite returns an empty ledger on a private in-memory SQLite database.
func OpenSQLite(t *testing.T, clk clock.Clock) *repo.SQLLedger {
	t.Helper()

	l, err := repo.OpenSQLLedger(context.Background(), repo.DriverSQLite, ":memory:", clk)
	require.NoError(t, err, "failed to open sqlite ledger")
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// Bootstrap records Owner as the system owner.
func Bootstrap(t *testing.T, l contracts.Ledger) {
	t.Helper()

	owner, err := l.Bootstrap(context.Background(), Owner)
	require.NoError(t, err, "failed to bootstrap ledger")
	require.Equal(t, Owner, owner)
}

// GrantRole assigns role to identity as Owner, writing the audit entry an
// AssignRole call would.
func GrantRole(t *testing.T, l contracts.Ledger, identity domain.Identity, role domain.Role) {
	t.Helper()

	err := l.Update(context.Background(), func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		current, err := contracts.CurrentRole(ctx, tx, identity)
		if err != nil {
			return nil, err
		}
		assignment, event, err := domain.AssignRole(Owner, Owner, identity, role, current, tx.Now())
		if err != nil {
			return nil, err
		}
		audit, err := contracts.AuditEntryFor(ctx, tx, event)
		if err != nil {
			return nil, err
		}
		return &contracts.WriteSet{Role: assignment, Audit: audit}, nil
	})
	require.NoError(t, err, "failed to grant %s to %s", role, identity)
}

// Register commits a product registered by manufacturer, bypassing authorization.
func Register(t *testing.T, l contracts.Ledger, productID domain.ProductID, manufacturer domain.Identity) {
	t.Helper()

	err := l.Update(context.Background(), func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		product, entry, err := domain.RegisterProduct(productID, manufacturer, "Factory A", tx.Now())
		if err != nil {
			return nil, err
		}
		audit, err := contracts.AuditEntryFor(ctx, tx, product.DomainEvents()[0].(domain.AuditableEvent))
		if err != nil {
			return nil, err
		}
		return &contracts.WriteSet{Product: product, History: entry, Audit: audit}, nil
	})
	require.NoError(t, err, "failed to register %s", productID)
}

// Snapshot is the full visible state of a ledger, for before/after comparisons.
type Snapshot struct {
	Products   map[domain.ProductID]domain.ProductRecord
	History    map[domain.ProductID][]*domain.StatusHistoryEntry
	Roles      map[domain.Identity]domain.Role
	Audit      []*domain.AuditEntry
	AuditCount uint64
}

// TakeSnapshot reads the given products and identities plus the whole audit trail.
func TakeSnapshot(t *testing.T, l contracts.Ledger, products []domain.ProductID, identities []domain.Identity) *Snapshot {
	t.Helper()

	s := &Snapshot{
		Products: make(map[domain.ProductID]domain.ProductRecord),
		History:  make(map[domain.ProductID][]*domain.StatusHistoryEntry),
		Roles:    make(map[domain.Identity]domain.Role),
	}
	err := l.View(context.Background(), func(ctx context.Context, r contracts.Reader) error {
		for _, id := range products {
			p, err := r.GetProduct(ctx, id)
			if err == nil {
				s.Products[id] = p.Record()
			}
			history, err := r.ListStatusHistory(ctx, id)
			if err != nil {
				return err
			}
			s.History[id] = history
		}
		for _, id := range identities {
			role, err := contracts.CurrentRole(ctx, r, id)
			if err != nil {
				return err
			}
			s.Roles[id] = role
		}
		var err error
		if s.AuditCount, err = r.AuditCount(ctx); err != nil {
			return err
		}
		s.Audit, err = r.ListAuditEntries(ctx, 0, int(s.AuditCount)+1)
		return err
	})
	require.NoError(t, err, "failed to snapshot ledger")
	return s
}
