package product_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"github.com/light-bringer/provenance-ledger/internal/testutil"
)

const (
	manufacturer domain.Identity = "M"
	distributor  domain.Identity = "D"
	retailer     domain.Identity = "R"
	stranger     domain.Identity = "X"
)

// withParties grants the standard supply-chain roles.
func withParties(t *testing.T, s *Services) {
	t.Helper()
	s.grant(t, manufacturer, domain.RoleManufacturer)
	s.grant(t, distributor, domain.RoleDistributor)
	s.grant(t, retailer, domain.RoleRetailer)
}

func register(t *testing.T, s *Services, productID string) *register_product.Response {
	t.Helper()

	resp, err := s.RegisterProduct.Execute(ctx(), &register_product.Request{
		Caller:    string(manufacturer),
		ProductID: productID,
		Location:  "Plant A",
	})
	require.NoError(t, err, "failed to register %s", productID)
	return resp
}

// walk applies each status in order as the manufacturer. Transfers go to the distributor.
func walk(t *testing.T, s *Services, productID string, statuses ...domain.Status) {
	t.Helper()

	for _, next := range statuses {
		req := &update_status.Request{
			Caller:    string(manufacturer),
			ProductID: productID,
			NewStatus: string(next),
			Reason:    "step",
			Location:  "Hub",
		}
		if next == domain.StatusTransferred {
			req.TransferTo = string(distributor)
		}
		_, err := s.UpdateStatus.Execute(ctx(), req)
		require.NoError(t, err, "failed to move %s to %s", productID, next)
	}
}

// pathTo lists the updates that take a freshly registered product to each status.
var pathTo = map[domain.Status][]domain.Status{
	domain.StatusRegistered:  nil,
	domain.StatusInTransit:   {domain.StatusInTransit},
	domain.StatusDelivered:   {domain.StatusInTransit, domain.StatusDelivered},
	domain.StatusReturned:    {domain.StatusInTransit, domain.StatusReturned},
	domain.StatusVerified:    {domain.StatusInTransit, domain.StatusDelivered, domain.StatusVerified},
	domain.StatusRejected:    {domain.StatusInTransit, domain.StatusDelivered, domain.StatusRejected},
	domain.StatusTransferred: {domain.StatusTransferred},
}

func TestRegistrationIsReadableImmediately(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)

		resp := register(t, s, "PROD-1")
		assert.Equal(t, uint64(3), resp.TxID)

		record, err := s.GetProduct.Execute(ctx(), &get_product.Request{ProductID: "PROD-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.ProductID("PROD-1"), record.ProductID)
		assert.Equal(t, manufacturer, record.Manufacturer)
		assert.Equal(t, manufacturer, record.CurrentOwner)
		assert.Equal(t, domain.StatusRegistered, record.CurrentStatus)
		assert.True(t, record.Verified)
		assert.Equal(t, uint64(1), record.UpdateCount)
		assert.True(t, testutil.Epoch.Equal(record.CreatedAt))

		entry, err := s.GetStatusHistory.Execute(ctx(), &get_status_history.Request{ProductID: "PROD-1", Sequence: 0})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), entry.Sequence)
		assert.Equal(t, domain.StatusRegistered, entry.Status)
		assert.Equal(t, manufacturer, entry.ChangedBy)
		assert.Equal(t, domain.InitialRegistrationReason, entry.Reason)
		assert.Equal(t, domain.Location("Plant A"), entry.Location)
		assert.True(t, record.CreatedAt.Equal(entry.Timestamp))

		_, err = s.GetStatusHistory.Execute(ctx(), &get_status_history.Request{ProductID: "PROD-1", Sequence: 1})
		assert.ErrorIs(t, err, domain.ErrHistoryEntryNotFound)

		audit, err := s.GetAuditEntry.Execute(ctx(), &get_audit_entry.Request{TxID: resp.TxID})
		require.NoError(t, err)
		assert.Equal(t, domain.ActionRegister, audit.Action)
		assert.Equal(t, manufacturer, audit.Actor)
		assert.Equal(t, domain.ProductID("PROD-1"), audit.ProductID)
		assert.Equal(t, "Product registered", audit.Details)
	})
}

func TestDuplicateRegistrationLeavesStateUnchanged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		register(t, s, "PROD-1")
		walk(t, s, "PROD-1", domain.StatusInTransit)

		products := []domain.ProductID{"PROD-1"}
		before := s.snapshot(t, products)

		s.Clock.Advance(time.Minute)
		_, err := s.RegisterProduct.Execute(ctx(), &register_product.Request{
			Caller:    string(manufacturer),
			ProductID: "PROD-1",
			Location:  "Plant B",
		})
		assert.ErrorIs(t, err, domain.ErrProductExists)

		assert.Equal(t, before, s.snapshot(t, products))
	})
}

func TestIllegalTransitionsAreRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)

		for from, path := range pathTo {
			productID := "P-" + string(from)
			register(t, s, productID)
			walk(t, s, productID, path...)

			for _, to := range domain.AllStatuses() {
				if domain.IsValidTransition(from, to) {
					continue
				}
				products := []domain.ProductID{domain.ProductID(productID)}
				before := s.snapshot(t, products)

				// The transition table is consulted before the caller's role.
				for _, caller := range []domain.Identity{manufacturer, distributor, stranger} {
					_, err := s.UpdateStatus.Execute(ctx(), &update_status.Request{
						Caller:    string(caller),
						ProductID: productID,
						NewStatus: string(to),
						Reason:    "try",
						Location:  "Hub",
					})
					assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition, "%s: %s -> %s", caller, from, to)
				}
				assert.Equal(t, before, s.snapshot(t, products), "%s -> %s wrote state", from, to)
			}
		}
	})
}

func TestHistoryIsContiguous(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)

		for status, path := range pathTo {
			productID := "H-" + string(status)
			register(t, s, productID)
			walk(t, s, productID, path...)

			record, err := s.GetProduct.Execute(ctx(), &get_product.Request{ProductID: productID})
			require.NoError(t, err)
			assert.Equal(t, uint64(len(path)+1), record.UpdateCount)
			assert.Equal(t, status, record.CurrentStatus)

			history, err := s.ListStatusHistory.Execute(ctx(), &list_status_history.Request{ProductID: productID})
			require.NoError(t, err)
			require.Len(t, history, len(path)+1)
			for i, entry := range history {
				assert.Equal(t, uint64(i), entry.Sequence)
				if i > 0 {
					assert.Equal(t, path[i-1], entry.Status)
				}
			}
		}
	})
}

func TestAuditCounterCountsAcceptedOperations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		var accepted []domain.AuditAction

		s.grant(t, manufacturer, domain.RoleManufacturer)
		accepted = append(accepted, domain.ActionAssignRole)
		s.grant(t, distributor, domain.RoleDistributor)
		accepted = append(accepted, domain.ActionAssignRole)

		register(t, s, "A")
		accepted = append(accepted, domain.ActionRegister)

		// Rejected: wrong role, duplicate, bad transition, non-owner assignment.
		_, err := s.RegisterProduct.Execute(ctx(), &register_product.Request{Caller: string(distributor), ProductID: "B", Location: "L"})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
		_, err = s.RegisterProduct.Execute(ctx(), &register_product.Request{Caller: string(manufacturer), ProductID: "A", Location: "L"})
		assert.ErrorIs(t, err, domain.ErrProductExists)
		_, err = s.UpdateStatus.Execute(ctx(), &update_status.Request{
			Caller: string(manufacturer), ProductID: "A", NewStatus: "verified", Reason: "r", Location: "L",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		_, err = s.AssignRole.Execute(ctx(), &assign_role.Request{Caller: string(manufacturer), Identity: string(retailer), Role: "retailer"})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)

		walk(t, s, "A", domain.StatusInTransit, domain.StatusDelivered)
		accepted = append(accepted, domain.ActionUpdate, domain.ActionUpdate)

		s.grant(t, distributor, domain.RoleRetailer)
		accepted = append(accepted, domain.ActionAssignRole)

		page, err := s.ListAuditEntries.Execute(ctx(), &list_audit_entries.Request{})
		require.NoError(t, err)
		assert.Equal(t, uint64(len(accepted)), page.Total)
		require.Len(t, page.Entries, len(accepted))
		for i, entry := range page.Entries {
			assert.Equal(t, uint64(i), entry.TxID)
			assert.Equal(t, accepted[i], entry.Action, "entry %d", i)
		}

		_, err = s.GetAuditEntry.Execute(ctx(), &get_audit_entry.Request{TxID: page.Total})
		assert.ErrorIs(t, err, domain.ErrAuditEntryNotFound)
	})
}

func TestOnlyOwnerAssignsRoles(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		identities := []domain.Identity{manufacturer, distributor, retailer, stranger}
		before := s.snapshot(t, nil, identities...)

		for _, caller := range []domain.Identity{manufacturer, distributor, stranger, ""} {
			for _, role := range []string{"manufacturer", "retailer", "admin", "bogus"} {
				_, err := s.AssignRole.Execute(ctx(), &assign_role.Request{
					Caller:   string(caller),
					Identity: string(stranger),
					Role:     role,
				})
				assert.ErrorIs(t, err, domain.ErrNotAuthorized, "caller %q role %q", caller, role)
			}
		}

		assert.Equal(t, before, s.snapshot(t, nil, identities...))
	})
}

func TestRoleReassignment(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		s.grant(t, distributor, domain.RoleDistributor)

		_, err := s.AssignRole.Execute(ctx(), &assign_role.Request{
			Caller: string(testutil.Owner), Identity: string(distributor), Role: "distributor",
		})
		assert.ErrorIs(t, err, domain.ErrRoleExists)

		resp, err := s.AssignRole.Execute(ctx(), &assign_role.Request{
			Caller: string(testutil.Owner), Identity: string(distributor), Role: "retailer",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleRetailer, resp.Assignment.Role)
		assert.Equal(t, testutil.Owner, resp.Assignment.AssignedBy)

		role, err := s.GetRole.Execute(ctx(), &get_role.Request{Identity: string(distributor)})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleRetailer, role)

		owner, err := s.GetRole.Execute(ctx(), &get_role.Request{Identity: string(testutil.Owner)})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, owner)

		_, err = s.GetRole.Execute(ctx(), &get_role.Request{Identity: string(stranger)})
		assert.ErrorIs(t, err, domain.ErrRoleNotAssigned)
	})
}

func TestTransferChangesOwner(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		register(t, s, "T-1")

		transfer := func(to domain.Identity) error {
			_, err := s.UpdateStatus.Execute(ctx(), &update_status.Request{
				Caller:     string(manufacturer),
				ProductID:  "T-1",
				NewStatus:  string(domain.StatusTransferred),
				Reason:     "sold",
				Location:   "Dock 4",
				TransferTo: string(to),
			})
			return err
		}

		assert.ErrorIs(t, transfer(manufacturer), domain.ErrInvalidOwner)
		assert.ErrorIs(t, transfer(stranger), domain.ErrInvalidOwner)
		assert.ErrorIs(t, transfer(testutil.Owner), domain.ErrInvalidOwner)

		require.NoError(t, transfer(retailer))

		record, err := s.GetProduct.Execute(ctx(), &get_product.Request{ProductID: "T-1"})
		require.NoError(t, err)
		assert.Equal(t, retailer, record.CurrentOwner)
		assert.Equal(t, manufacturer, record.Manufacturer)
		assert.Equal(t, domain.StatusTransferred, record.CurrentStatus)

		page, err := s.ListAuditEntries.Execute(ctx(), &list_audit_entries.Request{From: 4})
		require.NoError(t, err)
		require.Len(t, page.Entries, 1)
		assert.Equal(t, retailer, page.Entries[0].Subject)
		assert.Equal(t, "Status: transferred", page.Entries[0].Details)
	})
}

func TestTransferWithoutRecipientKeepsOwner(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		register(t, s, "T-3")

		resp, err := s.UpdateStatus.Execute(ctx(), &update_status.Request{
			Caller:    string(manufacturer),
			ProductID: "T-3",
			NewStatus: string(domain.StatusTransferred),
			Reason:    "handoff",
			Location:  "DC-B",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), resp.History.Sequence)

		record, err := s.GetProduct.Execute(ctx(), &get_product.Request{ProductID: "T-3"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTransferred, record.CurrentStatus)
		assert.Equal(t, manufacturer, record.CurrentOwner)
		assert.Equal(t, uint64(2), record.UpdateCount)

		audit, err := s.GetAuditEntry.Execute(ctx(), &get_audit_entry.Request{TxID: resp.TxID})
		require.NoError(t, err)
		assert.Empty(t, audit.Subject)

		// The only way on from transferred is verified.
		walk(t, s, "T-3", domain.StatusVerified)
	})
}

func TestTransferRecipientOnlyOnTransfers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		register(t, s, "T-2")

		_, err := s.UpdateStatus.Execute(ctx(), &update_status.Request{
			Caller:     string(manufacturer),
			ProductID:  "T-2",
			NewStatus:  string(domain.StatusInTransit),
			Reason:     "ship",
			Location:   "DC-B",
			TransferTo: string(distributor),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidOwner)
	})
}

func TestConcreteScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		s.grant(t, manufacturer, domain.RoleManufacturer)

		resp := register(t, s, "PROD123ABC")
		assert.Equal(t, domain.StatusRegistered, resp.Product.CurrentStatus)
		assert.Equal(t, uint64(1), resp.Product.UpdateCount)

		s.Clock.Advance(time.Hour)
		updated, err := s.UpdateStatus.Execute(ctx(), &update_status.Request{
			Caller:    string(manufacturer),
			ProductID: "PROD123ABC",
			NewStatus: "in-transit",
			Reason:    "ship",
			Location:  "DC-B",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), updated.Product.UpdateCount)
		assert.Equal(t, uint64(1), updated.History.Sequence)

		entry, err := s.GetStatusHistory.Execute(ctx(), &get_status_history.Request{ProductID: "PROD123ABC", Sequence: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInTransit, entry.Status)
		assert.Equal(t, domain.Reason("ship"), entry.Reason)
		assert.Equal(t, domain.Location("DC-B"), entry.Location)
		assert.True(t, testutil.Epoch.Add(time.Hour).Equal(entry.Timestamp))

		products := []domain.ProductID{"PROD123ABC"}
		before := s.snapshot(t, products)

		_, err = s.UpdateStatus.Execute(ctx(), &update_status.Request{
			Caller:    string(manufacturer),
			ProductID: "PROD123ABC",
			NewStatus: "verified",
			Reason:    "check",
			Location:  "DC-B",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

		after := s.snapshot(t, products)
		assert.Equal(t, before, after)
		assert.Equal(t, uint64(2), after.Products["PROD123ABC"].UpdateCount)
	})
}

func TestConcurrentRegistrations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		s.grant(t, manufacturer, domain.RoleManufacturer)

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.RegisterProduct.Execute(ctx(), &register_product.Request{
					Caller:    string(manufacturer),
					ProductID: fmt.Sprintf("C-%d", i),
					Location:  "Plant A",
				})
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			assert.NoError(t, err, "worker %d", i)
		}

		page, err := s.ListAuditEntries.Execute(ctx(), &list_audit_entries.Request{})
		require.NoError(t, err)
		assert.Equal(t, uint64(workers+1), page.Total)
		seen := make(map[domain.ProductID]bool)
		for i, entry := range page.Entries {
			assert.Equal(t, uint64(i), entry.TxID)
			if entry.Action == domain.ActionRegister {
				seen[entry.ProductID] = true
			}
		}
		assert.Len(t, seen, workers)
	})
}

func TestConcurrentUpdatesOnOneProduct(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s *Services) {
		withParties(t, s)
		register(t, s, "RACE")

		// Both shipments race from registered; exactly one wins.
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = s.UpdateStatus.Execute(ctx(), &update_status.Request{
					Caller:    string(manufacturer),
					ProductID: "RACE",
					NewStatus: "in-transit",
					Reason:    fmt.Sprintf("ship %d", i),
					Location:  "Dock",
				})
			}(i)
		}
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
				failures++
			}
		}
		assert.Equal(t, 1, failures)

		history, err := s.ListStatusHistory.Execute(ctx(), &list_status_history.Request{ProductID: "RACE"})
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})
}
