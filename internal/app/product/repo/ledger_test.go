package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/repo"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/testutil"
)

// LedgerSuite runs the host contract against one backend.
type LedgerSuite struct {
	suite.Suite
	backend testutil.Backend

	ctx    context.Context
	clock  *clock.MockClock
	ledger contracts.Ledger
}

func TestLedgerHosts(t *testing.T) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			suite.Run(t, &LedgerSuite{backend: backend})
		})
	}
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = testutil.NewMockClock()
	s.ledger = s.backend.Open(s.T(), s.clock)
}

func (s *LedgerSuite) bootstrap() {
	testutil.Bootstrap(s.T(), s.ledger)
}

// registerFn builds the write set of a registration.
func registerFn(productID domain.ProductID, manufacturer domain.Identity) contracts.UpdateFunc {
	return func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		product, entry, err := domain.RegisterProduct(productID, manufacturer, "Factory A", tx.Now())
		if err != nil {
			return nil, err
		}
		audit, err := contracts.AuditEntryFor(ctx, tx, product.DomainEvents()[0].(domain.AuditableEvent))
		if err != nil {
			return nil, err
		}
		return &contracts.WriteSet{Product: product, History: entry, Audit: audit}, nil
	}
}

// updateFn builds the write set of a status change on a stored product.
func updateFn(productID domain.ProductID, next domain.Status, transferTo domain.Identity) contracts.UpdateFunc {
	return func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		entry, err := product.UpdateStatus("acme", next, "Moved", "Dock 4", transferTo, tx.Now())
		if err != nil {
			return nil, err
		}
		audit, err := contracts.AuditEntryFor(ctx, tx, product.DomainEvents()[0].(domain.AuditableEvent))
		if err != nil {
			return nil, err
		}
		return &contracts.WriteSet{Product: product, History: entry, Audit: audit}, nil
	}
}

func (s *LedgerSuite) TestBootstrap() {
	owner, err := s.ledger.Bootstrap(s.ctx, "root")
	s.Require().NoError(err)
	s.Equal(domain.Identity("root"), owner)

	// Same owner is idempotent.
	owner, err = s.ledger.Bootstrap(s.ctx, "root")
	s.Require().NoError(err)
	s.Equal(domain.Identity("root"), owner)

	// A different owner is refused and the recorded one is kept.
	_, err = s.ledger.Bootstrap(s.ctx, "intruder")
	s.ErrorIs(err, domain.ErrInvalidOwner)

	err = s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		owner, err := r.Owner(ctx)
		s.Require().NoError(err)
		s.Equal(domain.Identity("root"), owner)

		role, err := r.GetRole(ctx, "root")
		s.Require().NoError(err)
		s.Equal(domain.RoleAdmin, role)

		count, err := r.AuditCount(ctx)
		s.Require().NoError(err)
		s.Zero(count, "bootstrap is not audited")
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestBootstrap_EmptyOwner() {
	_, err := s.ledger.Bootstrap(s.ctx, "")
	s.ErrorIs(err, domain.ErrInvalidOwner)
}

func (s *LedgerSuite) TestUpdate_BeforeBootstrap() {
	err := s.ledger.Update(s.ctx, registerFn("P1", "acme"))
	s.ErrorIs(err, domain.ErrOwnerNotSet)

	err = s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		_, err := r.Owner(ctx)
		s.ErrorIs(err, domain.ErrOwnerNotSet)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestRegisterAndUpdate() {
	s.bootstrap()

	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("PROD123ABC", "acme")))
	s.clock.Advance(time.Minute)
	s.Require().NoError(s.ledger.Update(s.ctx, updateFn("PROD123ABC", domain.StatusInTransit, "")))
	s.clock.Advance(time.Minute)
	s.Require().NoError(s.ledger.Update(s.ctx, updateFn("PROD123ABC", domain.StatusDelivered, "")))

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		p, err := r.GetProduct(ctx, "PROD123ABC")
		s.Require().NoError(err)
		s.Equal(domain.ProductRecord{
			ProductID:     "PROD123ABC",
			Manufacturer:  "acme",
			CreatedAt:     testutil.Epoch,
			CurrentOwner:  "acme",
			CurrentStatus: domain.StatusDelivered,
			Verified:      true,
			UpdateCount:   3,
		}, p.Record())

		history, err := r.ListStatusHistory(ctx, "PROD123ABC")
		s.Require().NoError(err)
		s.Require().Len(history, 3)
		for i, entry := range history {
			s.Equal(uint64(i), entry.Sequence)
		}
		s.Equal(domain.StatusRegistered, history[0].Status)
		s.Equal(domain.InitialRegistrationReason, history[0].Reason)
		s.Equal(testutil.Epoch.Add(2*time.Minute), history[2].Timestamp)

		entry, err := r.GetStatusHistory(ctx, "PROD123ABC", 1)
		s.Require().NoError(err)
		s.Equal(domain.StatusInTransit, entry.Status)
		s.Equal(domain.Location("Dock 4"), entry.Location)

		count, err := r.AuditCount(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(3), count)

		audit, err := r.ListAuditEntries(ctx, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(audit, 3)
		s.Equal(domain.ActionRegister, audit[0].Action)
		s.Equal("Product registered", audit[0].Details)
		s.Equal("Status: delivered", audit[2].Details)
		for i, e := range audit {
			s.Equal(uint64(i), e.TxID)
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestTransferPersistsOwner() {
	s.bootstrap()
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P1", "acme")))
	s.Require().NoError(s.ledger.Update(s.ctx, updateFn("P1", domain.StatusTransferred, "shop")))

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		p, err := r.GetProduct(ctx, "P1")
		s.Require().NoError(err)
		s.Equal(domain.Identity("shop"), p.CurrentOwner())
		s.Equal(domain.Identity("acme"), p.Manufacturer())

		audit, err := r.GetAuditEntry(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.Identity("shop"), audit.Subject)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestUpdate_RejectedFnWritesNothing() {
	s.bootstrap()
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P1", "acme")))
	before := testutil.TakeSnapshot(s.T(), s.ledger, []domain.ProductID{"P1"}, nil)

	boom := errors.New("boom")
	err := s.ledger.Update(s.ctx, func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		if _, err := updateFn("P1", domain.StatusInTransit, "")(ctx, tx); err != nil {
			return nil, err
		}
		return nil, boom
	})
	s.ErrorIs(err, boom)

	s.Equal(before, testutil.TakeSnapshot(s.T(), s.ledger, []domain.ProductID{"P1"}, nil))
}

func (s *LedgerSuite) TestUpdate_DuplicateRegistration() {
	s.bootstrap()
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P1", "acme")))

	err := s.ledger.Update(s.ctx, registerFn("P1", "other"))
	s.ErrorIs(err, domain.ErrProductExists)

	err = s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		p, err := r.GetProduct(ctx, "P1")
		s.Require().NoError(err)
		s.Equal(domain.Identity("acme"), p.Manufacturer())
		count, err := r.AuditCount(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(1), count)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestUpdate_InconsistentWriteSet() {
	s.bootstrap()

	tests := map[string]contracts.UpdateFunc{
		"missing audit": func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
			ws, err := registerFn("P1", "acme")(ctx, tx)
			if err != nil {
				return nil, err
			}
			ws.Audit = nil
			return ws, nil
		},
		"audit tx ahead of counter": func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
			ws, err := registerFn("P1", "acme")(ctx, tx)
			if err != nil {
				return nil, err
			}
			ws.Audit.TxID = 5
			return ws, nil
		},
		"new product without history": func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
			ws, err := registerFn("P1", "acme")(ctx, tx)
			if err != nil {
				return nil, err
			}
			ws.History = nil
			return ws, nil
		},
	}

	for name, fn := range tests {
		s.Run(name, func() {
			err := s.ledger.Update(s.ctx, fn)
			s.ErrorIs(err, contracts.ErrWriteSetMismatch)

			err = s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
				_, err := r.GetProduct(ctx, "P1")
				s.ErrorIs(err, domain.ErrProductNotFound)
				return nil
			})
			s.Require().NoError(err)
		})
	}
}

func (s *LedgerSuite) TestRoleUpsert() {
	s.bootstrap()

	testutil.GrantRole(s.T(), s.ledger, "acme", domain.RoleManufacturer)
	testutil.GrantRole(s.T(), s.ledger, "acme", domain.RoleRetailer)

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		role, err := r.GetRole(ctx, "acme")
		s.Require().NoError(err)
		s.Equal(domain.RoleRetailer, role)

		_, err = r.GetRole(ctx, "nobody")
		s.ErrorIs(err, domain.ErrRoleNotAssigned)

		count, err := r.AuditCount(ctx)
		s.Require().NoError(err)
		s.Equal(uint64(2), count)

		entry, err := r.GetAuditEntry(ctx, 1)
		s.Require().NoError(err)
		s.Equal(domain.ActionAssignRole, entry.Action)
		s.Equal(domain.Identity("acme"), entry.Subject)
		s.Equal("Role: retailer", entry.Details)
		s.Empty(entry.ProductID)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestLookupMisses() {
	s.bootstrap()
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P1", "acme")))

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		_, err := r.GetProduct(ctx, "P2")
		s.ErrorIs(err, domain.ErrProductNotFound)

		_, err = r.GetStatusHistory(ctx, "P1", 1)
		s.ErrorIs(err, domain.ErrHistoryEntryNotFound)

		_, err = r.GetAuditEntry(ctx, 1)
		s.ErrorIs(err, domain.ErrAuditEntryNotFound)

		history, err := r.ListStatusHistory(ctx, "P2")
		s.Require().NoError(err)
		s.Empty(history)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestListAuditEntries_Window() {
	s.bootstrap()
	for _, id := range []domain.ProductID{"P0", "P1", "P2", "P3", "P4"} {
		s.Require().NoError(s.ledger.Update(s.ctx, registerFn(id, "acme")))
	}

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		entries, err := r.ListAuditEntries(ctx, 1, 2)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(uint64(1), entries[0].TxID)
		s.Equal(domain.ProductID("P2"), entries[1].ProductID)

		entries, err = r.ListAuditEntries(ctx, 3, 100)
		s.Require().NoError(err)
		s.Len(entries, 2)

		entries, err = r.ListAuditEntries(ctx, 5, 100)
		s.Require().NoError(err)
		s.Empty(entries)

		entries, err = r.ListAuditEntries(ctx, 0, 0)
		s.Require().NoError(err)
		s.Empty(entries)
		return nil
	})
	s.Require().NoError(err)
}

func (s *LedgerSuite) TestTimestampsNeverGoBackwards() {
	s.bootstrap()
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P1", "acme")))

	s.clock.Set(testutil.Epoch.Add(-time.Hour))
	s.Require().NoError(s.ledger.Update(s.ctx, registerFn("P2", "acme")))

	err := s.ledger.View(s.ctx, func(ctx context.Context, r contracts.Reader) error {
		entries, err := r.ListAuditEntries(ctx, 0, 10)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.False(entries[1].RecordedAt.Before(entries[0].RecordedAt))
		return nil
	})
	s.Require().NoError(err)
}

func TestSQLLedger_RestoresClockOnOpen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + t.TempDir() + "/ledger.db"

	clk := testutil.NewMockClock()
	l, err := repo.OpenSQLLedger(ctx, repo.DriverSQLite, dsn, clk)
	require.NoError(t, err)
	testutil.Bootstrap(t, l)
	require.NoError(t, l.Update(ctx, registerFn("P1", "acme")))
	require.NoError(t, l.Close())

	// A host reopened with a clock behind the stored trail keeps the trail ordered.
	clk.Set(testutil.Epoch.Add(-24 * time.Hour))
	l, err = repo.OpenSQLLedger(ctx, repo.DriverSQLite, dsn, clk)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Update(ctx, registerFn("P2", "acme")))
	err = l.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		entry, err := r.GetAuditEntry(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, testutil.Epoch, entry.RecordedAt)

		owner, err := r.Owner(ctx)
		require.NoError(t, err)
		assert.Equal(t, testutil.Owner, owner)
		return nil
	})
	require.NoError(t, err)
}
