package contracts

import (
	"context"
	"errors"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// RequireRole fails with domain.ErrNotAuthorized unless identity holds exactly required.
// An identity with no role is unauthorized, never an error.
func RequireRole(ctx context.Context, r Reader, identity domain.Identity, required domain.Role) error {
	if identity.IsZero() {
		return domain.ErrNotAuthorized
	}
	role, err := r.GetRole(ctx, identity)
	if errors.Is(err, domain.ErrRoleNotAssigned) {
		return domain.ErrNotAuthorized
	}
	if err != nil {
		return err
	}
	if !domain.IsAuthorized(role, required) {
		return domain.ErrNotAuthorized
	}
	return nil
}

// CurrentRole returns the identity's role, or the zero Role when it holds none.
func CurrentRole(ctx context.Context, r Reader, identity domain.Identity) (domain.Role, error) {
	role, err := r.GetRole(ctx, identity)
	if errors.Is(err, domain.ErrRoleNotAssigned) {
		return "", nil
	}
	return role, err
}

// AuditEntryFor places event at the end of the audit trail visible through tx.
func AuditEntryFor(ctx context.Context, tx Tx, event domain.AuditableEvent) (*domain.AuditEntry, error) {
	count, err := tx.AuditCount(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewAuditEntry(count, event.AuditRecord(), tx.Now())
}
