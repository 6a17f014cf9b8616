package register_product

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/platform/tracing"
)

// Operation names this use case in logs, metrics and spans.
const Operation = "register_product"

// Request contains the data needed to register a product.
type Request struct {
	Caller    string // Identity supplied by the transport
	ProductID string
	Location  string
}

// Response describes the accepted registration.
type Response struct {
	Product domain.ProductRecord
	History domain.StatusHistoryEntry
	TxID    uint64
}

// Interactor handles the register product use case.
type Interactor struct {
	ledger   contracts.Ledger
	observer contracts.Observer
	logger   *slog.Logger
}

// NewInteractor creates a new register product interactor.
func NewInteractor(ledger contracts.Ledger, observer contracts.Observer, logger *slog.Logger) *Interactor {
	return &Interactor{
		ledger:   ledger,
		observer: observer,
		logger:   logger,
	}
}

// Execute registers a new product owned by its manufacturer.
// Checks run in order: caller role, product id, location, uniqueness.
func (i *Interactor) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, done := tracing.Track(ctx, Operation, i.observer, attribute.String("product_id", req.ProductID))
	defer func() { done(err) }()

	caller := domain.Identity(req.Caller)

	// 1. Run inside the host's serialized section
	err = i.ledger.Update(ctx, func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		if err := contracts.RequireRole(ctx, tx, caller, domain.RegistrationRole); err != nil {
			return nil, err
		}

		// 2. Validate request
		productID, err := domain.NewProductID(req.ProductID)
		if err != nil {
			return nil, err
		}
		location, err := domain.NewLocation(req.Location)
		if err != nil {
			return nil, err
		}
		if _, err := tx.GetProduct(ctx, productID); err == nil {
			return nil, domain.ErrProductExists
		} else if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}

		// 3. Call domain method
		product, entry, err := domain.RegisterProduct(productID, caller, location, tx.Now())
		if err != nil {
			return nil, err
		}

		// 4. Audit entry is written last
		event, ok := product.DomainEvents()[0].(domain.AuditableEvent)
		if !ok {
			return nil, errors.New("registration produced no auditable event")
		}
		audit, err := contracts.AuditEntryFor(ctx, tx, event)
		if err != nil {
			return nil, err
		}

		resp = &Response{
			Product: product.Record(),
			History: *entry,
			TxID:    audit.TxID,
		}
		return &contracts.WriteSet{Product: product, History: entry, Audit: audit}, nil
	})
	if err != nil {
		return nil, i.reject(ctx, req, err)
	}

	i.logger.InfoContext(ctx, "product registered",
		slog.String("op", Operation),
		slog.String("product_id", req.ProductID),
		slog.String("caller", string(caller)),
		slog.Uint64("tx_id", resp.TxID),
	)
	return resp, nil
}

func (i *Interactor) reject(ctx context.Context, req *Request, err error) error {
	attrs := []any{
		slog.String("op", Operation),
		slog.String("product_id", req.ProductID),
		slog.String("caller", req.Caller),
		slog.String("error", err.Error()),
	}
	if code, ok := domain.CodeOf(err); ok {
		attrs = append(attrs, slog.Int("code", int(code)))
		i.logger.DebugContext(ctx, "operation rejected", attrs...)
	} else {
		i.logger.ErrorContext(ctx, "operation failed", attrs...)
	}
	return err
}
