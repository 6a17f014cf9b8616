package list_audit_entries

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Request selects a window of the audit trail.
type Request struct {
	From  uint64 // First transaction id to return
	Limit int    // Max number of entries to return (default: 100)
}

// Response is one page of the audit trail.
type Response struct {
	Entries []*domain.AuditEntry
	// Total is the audit counter: the number of entries ever written.
	Total uint64
}

// Query handles the list audit entries query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new list audit entries query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns entries with TxID >= From in TxID order.
func (q *Query) Execute(ctx context.Context, req *Request) (*Response, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	resp := &Response{}
	err := q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		var err error
		if resp.Total, err = r.AuditCount(ctx); err != nil {
			return err
		}
		resp.Entries, err = r.ListAuditEntries(ctx, req.From, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
