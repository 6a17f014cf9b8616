package product_test

import (
	"context"
	"testing"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_audit_entry"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/assign_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/register_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/update_status"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/platform/logger"
	"github.com/light-bringer/provenance-ledger/internal/testutil"
)

// Services holds all use cases and queries wired to one ledger host.
type Services struct {
	// Commands
	RegisterProduct *register_product.Interactor
	UpdateStatus    *update_status.Interactor
	AssignRole      *assign_role.Interactor

	// Queries
	GetProduct        *get_product.Query
	GetStatusHistory  *get_status_history.Query
	ListStatusHistory *list_status_history.Query
	GetAuditEntry     *get_audit_entry.Query
	ListAuditEntries  *list_audit_entries.Query
	GetRole           *get_role.Query

	// Infrastructure
	Ledger contracts.Ledger
	Clock  *clock.MockClock
}

// forEachBackend runs fn once per ledger host that needs no external service.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Services)) {
	for _, backend := range testutil.Backends() {
		t.Run(backend.Name, func(t *testing.T) {
			fn(t, setupTest(t, backend))
		})
	}
}

// setupTest wires every use case to a freshly bootstrapped ledger.
func setupTest(t *testing.T, backend testutil.Backend) *Services {
	t.Helper()

	clk := testutil.NewMockClock()
	ledger := backend.Open(t, clk)
	testutil.Bootstrap(t, ledger)

	observer := contracts.NopObserver{}
	log := logger.Discard()

	return &Services{
		RegisterProduct:   register_product.NewInteractor(ledger, observer, log),
		UpdateStatus:      update_status.NewInteractor(ledger, observer, log),
		AssignRole:        assign_role.NewInteractor(ledger, observer, log),
		GetProduct:        get_product.NewQuery(ledger),
		GetStatusHistory:  get_status_history.NewQuery(ledger),
		ListStatusHistory: list_status_history.NewQuery(ledger),
		GetAuditEntry:     get_audit_entry.NewQuery(ledger),
		ListAuditEntries:  list_audit_entries.NewQuery(ledger),
		GetRole:           get_role.NewQuery(ledger),
		Ledger:            ledger,
		Clock:             clk,
	}
}

// grant assigns role to identity through the assign_role use case.
func (s *Services) grant(t *testing.T, identity domain.Identity, role domain.Role) {
	t.Helper()

	_, err := s.AssignRole.Execute(ctx(), &assign_role.Request{
		Caller:   string(testutil.Owner),
		Identity: string(identity),
		Role:     string(role),
	})
	if err != nil {
		t.Fatalf("failed to grant %s to %s: %v", role, identity, err)
	}
}

// snapshot captures the state touched by the given products and identities.
func (s *Services) snapshot(t *testing.T, products []domain.ProductID, identities ...domain.Identity) *testutil.Snapshot {
	t.Helper()
	return testutil.TakeSnapshot(t, s.Ledger, products, identities)
}

// ctx returns a context for testing.
func ctx() context.Context {
	return context.Background()
}
