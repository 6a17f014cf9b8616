package list_status_history

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Request contains the product whose history is listed.
type Request struct {
	ProductID string
}

// Query handles the list status history query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new list status history query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns every history entry of the product in sequence order.
// Unknown products yield domain.ErrProductNotFound rather than an empty list.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*domain.StatusHistoryEntry, error) {
	productID, err := domain.NewProductID(req.ProductID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var entries []*domain.StatusHistoryEntry
	err = q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		if _, err := r.GetProduct(ctx, productID); err != nil {
			return err
		}
		entries, err = r.ListStatusHistory(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
