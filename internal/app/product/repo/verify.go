package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// verifyWriteSet checks ws against the state visible through r before anything is written.
// Every host calls it inside the same serialized section that will apply ws.
func verifyWriteSet(ctx context.Context, r contracts.Reader, ws *contracts.WriteSet) error {
	if _, err := r.Owner(ctx); err != nil {
		return err
	}

	count, err := r.AuditCount(ctx)
	if err != nil {
		return err
	}
	if err := ws.Validate(count); err != nil {
		return err
	}

	if ws.Product == nil {
		return nil
	}

	stored, err := r.GetProduct(ctx, ws.Product.ID())
	switch {
	case ws.Product.IsNew():
		if err == nil {
			return domain.ErrProductExists
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		if ws.History == nil || ws.History.Sequence != 0 {
			return fmt.Errorf("%w: new product without history entry 0", contracts.ErrWriteSetMismatch)
		}
	case err != nil:
		return err
	case ws.History != nil && stored.UpdateCount() != ws.History.Sequence:
		return fmt.Errorf("%w: product %s has %d updates, history sequence %d",
			contracts.ErrWriteSetMismatch, stored.ID(), stored.UpdateCount(), ws.History.Sequence)
	}

	return nil
}
