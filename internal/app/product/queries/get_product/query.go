package get_product

import (
	"context"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Request contains the product ID to retrieve.
type Request struct {
	ProductID string
}

// Query handles the get product details query.
type Query struct {
	ledger contracts.Ledger
}

// NewQuery creates a new get product query.
func NewQuery(ledger contracts.Ledger) *Query {
	return &Query{
		ledger: ledger,
	}
}

// Execute returns the product's current record, or domain.ErrProductNotFound.
// A malformed id cannot name a stored product and is reported the same way.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.ProductRecord, error) {
	productID, err := domain.NewProductID(req.ProductID)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var record domain.ProductRecord
	err = q.ledger.View(ctx, func(ctx context.Context, r contracts.Reader) error {
		product, err := r.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		record = product.Record()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
