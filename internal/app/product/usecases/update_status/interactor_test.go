package update_status

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/platform/logger"
	"github.com/light-bringer/provenance-ledger/internal/testutil"
)

func setup(t *testing.T) (*Interactor, contracts.Ledger, *clock.MockClock) {
	t.Helper()

	clk := testutil.NewMockClock()
	l := testutil.OpenMemory(t, clk)
	testutil.Bootstrap(t, l)
	testutil.GrantRole(t, l, "M", domain.RoleManufacturer)
	testutil.GrantRole(t, l, "D", domain.RoleDistributor)
	testutil.GrantRole(t, l, "R", domain.RoleRetailer)
	testutil.Register(t, l, "PROD-1", "M")
	return NewInteractor(l, contracts.NopObserver{}, logger.Discard()), l, clk
}

func ship() *Request {
	return &Request{Caller: "M", ProductID: "PROD-1", NewStatus: "in-transit", Reason: "ship", Location: "DC-B"}
}

func TestExecute_UpdatesStatus(t *testing.T) {
	interactor, _, clk := setup(t)
	clk.Advance(time.Hour)

	resp, err := interactor.Execute(context.Background(), ship())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInTransit, resp.Product.CurrentStatus)
	assert.Equal(t, uint64(2), resp.Product.UpdateCount)
	assert.Equal(t, domain.Identity("M"), resp.Product.CurrentOwner)
	assert.Equal(t, uint64(1), resp.History.Sequence)
	assert.Equal(t, domain.Identity("M"), resp.History.ChangedBy)
	assert.True(t, testutil.Epoch.Add(time.Hour).Equal(resp.History.Timestamp))
	assert.Equal(t, uint64(4), resp.TxID)
}

func TestExecute_CheckOrder(t *testing.T) {
	long := strings.Repeat("z", domain.MaxReasonLength+1)

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{
			name:    "existence first",
			mutate:  func(r *Request) { r.ProductID = "MISSING"; r.NewStatus = "bogus"; r.Caller = "X"; r.Reason = "" },
			wantErr: domain.ErrProductNotFound,
		},
		{
			name:    "malformed id is not found",
			mutate:  func(r *Request) { r.ProductID = strings.Repeat("p", domain.MaxProductIDLength+1) },
			wantErr: domain.ErrProductNotFound,
		},
		{
			name:    "status before transition",
			mutate:  func(r *Request) { r.NewStatus = "bogus"; r.Caller = "X" },
			wantErr: domain.ErrInvalidStatus,
		},
		{
			name:    "status is case sensitive",
			mutate:  func(r *Request) { r.NewStatus = "In-Transit" },
			wantErr: domain.ErrInvalidStatus,
		},
		{
			name:    "transition before role",
			mutate:  func(r *Request) { r.NewStatus = "verified"; r.Caller = "D" },
			wantErr: domain.ErrInvalidStatusTransition,
		},
		{
			name:    "role before reason",
			mutate:  func(r *Request) { r.Caller = "R"; r.Reason = "" },
			wantErr: domain.ErrNotAuthorized,
		},
		{
			name:    "retailer cannot ship",
			mutate:  func(r *Request) { r.Caller = "R" },
			wantErr: domain.ErrNotAuthorized,
		},
		{
			name:    "reason before location",
			mutate:  func(r *Request) { r.Reason = long; r.Location = "" },
			wantErr: domain.ErrInvalidReason,
		},
		{
			name:    "empty reason",
			mutate:  func(r *Request) { r.Reason = "" },
			wantErr: domain.ErrInvalidReason,
		},
		{
			name:    "location before recipient",
			mutate:  func(r *Request) { r.Location = ""; r.TransferTo = "D" },
			wantErr: domain.ErrInvalidLocation,
		},
		{
			name:    "recipient on a non-transfer",
			mutate:  func(r *Request) { r.TransferTo = "D" },
			wantErr: domain.ErrInvalidOwner,
		},
		{
			name:    "recipient without a role",
			mutate:  func(r *Request) { r.NewStatus = "transferred"; r.TransferTo = "X" },
			wantErr: domain.ErrInvalidOwner,
		},
		{
			name:    "recipient is a manufacturer",
			mutate:  func(r *Request) { r.NewStatus = "transferred"; r.TransferTo = "M" },
			wantErr: domain.ErrInvalidOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interactor, l, _ := setup(t)
			before := testutil.TakeSnapshot(t, l, []domain.ProductID{"PROD-1"}, nil)

			req := ship()
			tt.mutate(req)
			_, err := interactor.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, before, testutil.TakeSnapshot(t, l, []domain.ProductID{"PROD-1"}, nil))
		})
	}
}

func TestExecute_TransferToRetailer(t *testing.T) {
	interactor, _, _ := setup(t)

	resp, err := interactor.Execute(context.Background(), &Request{
		Caller:     "M",
		ProductID:  "PROD-1",
		NewStatus:  "transferred",
		Reason:     "consignment",
		Location:   "Store 9",
		TransferTo: "R",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("R"), resp.Product.CurrentOwner)
	assert.Equal(t, domain.StatusTransferred, resp.History.Status)
}

func TestExecute_TransferWithoutRecipient(t *testing.T) {
	interactor, l, _ := setup(t)

	resp, err := interactor.Execute(context.Background(), &Request{
		Caller:    "M",
		ProductID: "PROD-1",
		NewStatus: "transferred",
		Reason:    "handoff",
		Location:  "DC-B",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTransferred, resp.Product.CurrentStatus)
	assert.Equal(t, domain.Identity("M"), resp.Product.CurrentOwner)
	assert.Equal(t, uint64(2), resp.Product.UpdateCount)

	var entry *domain.AuditEntry
	require.NoError(t, l.View(context.Background(), func(ctx context.Context, r contracts.Reader) error {
		entry, err = r.GetAuditEntry(ctx, resp.TxID)
		return err
	}))
	assert.Empty(t, entry.Subject)
	assert.Equal(t, "Status: transferred", entry.Details)
}

func TestExecute_NonManufacturerHitsTransitionTable(t *testing.T) {
	interactor, _, _ := setup(t)

	for _, caller := range []string{"D", "R", "X"} {
		for _, next := range []domain.Status{domain.StatusVerified, domain.StatusDelivered, domain.StatusRegistered} {
			req := ship()
			req.Caller = caller
			req.NewStatus = string(next)
			_, err := interactor.Execute(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "%s -> %s", caller, next)
		}
	}
}

func TestExecute_TerminalStatusRejectsEverything(t *testing.T) {
	interactor, l, _ := setup(t)

	for _, next := range []string{"in-transit", "returned"} {
		req := ship()
		req.NewStatus = next
		_, err := interactor.Execute(context.Background(), req)
		require.NoError(t, err)
	}

	before := testutil.TakeSnapshot(t, l, []domain.ProductID{"PROD-1"}, nil)
	for _, next := range domain.AllStatuses() {
		req := ship()
		req.NewStatus = string(next)
		_, err := interactor.Execute(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, string(next))
	}
	assert.Equal(t, before, testutil.TakeSnapshot(t, l, []domain.ProductID{"PROD-1"}, nil))
}
