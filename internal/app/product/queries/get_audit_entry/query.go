package get_audit_entry

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Request identifies one audit entry by its transaction id.
type Request struct {
	TxID uint64
}

// Query handles the get audit entry query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new get audit entry query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns the audit entry, or domain.ErrAuditEntryNotFound.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.AuditEntry, error) {
	var entry *domain.AuditEntry
	err := q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		var err error
		entry, err = r.GetAuditEntry(ctx, req.TxID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
