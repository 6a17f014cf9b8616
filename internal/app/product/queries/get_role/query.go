package get_role

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Request contains the identity to look up.
type Request struct {
	Identity string
}

// Query handles the get role query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new get role query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns the identity's role, or domain.ErrRoleNotAssigned.
func (q *Query) Execute(ctx context.Context, req *Request) (domain.Role, error) {
	var role domain.Role
	err := q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		var err error
		role, err = r.GetRole(ctx, domain.Identity(req.Identity))
		return err
	})
	return role, err
}
