package get_status_history

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Request identifies one history entry.
type Request struct {
	ProductID string
	Sequence  uint64
}

// Query handles the get status history query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new get status history query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns the entry at the requested sequence number.
// Any request that names no stored entry yields domain.ErrHistoryEntryNotFound,
// malformed ids included.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.StatusHistoryEntry, error) {
	productID, err := domain.NewProductID(req.ProductID)
	if err != nil {
		return nil, domain.ErrHistoryEntryNotFound
	}

	var entry *domain.StatusHistoryEntry
	err = q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		entry, err = r.GetStatusHistory(ctx, productID, req.Sequence)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
