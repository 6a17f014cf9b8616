package update_status

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
const Operation = "update_status"

// Request contains the data needed to move a product along its lifecycle.
type Request struct {
	Caller     string // Identity supplied by the transport
	ProductID  string
	NewStatus  string
	Reason     string
	Location   string
	TransferTo string // Optional new owner; only valid with "transferred"
}

// Response describes the accepted status change.
type Response struct {
	Product domain.ProductRecord
	History domain.StatusHistoryEntry
	TxID    uint64
}

// Interactor handles the update status use case.
type Interactor struct {
	ledger   contracts.Ledger
	observer contracts.Observer
	logger   *slog.Logger
}

// NewInteractor creates a new update status interactor.
func NewInteractor(ledger contracts.Ledger, observer contracts.Observer, logger *slog.Logger) *Interactor {
	return &Interactor{
		ledger:   ledger,
		observer: observer,
		logger:   logger,
	}
}

// Execute applies one status transition.
// Checks run in order: product exists, status known, transition legal, caller role,
// reason, location, then the optional transfer recipient.
func (i *Interactor) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, done := tracing.Track(ctx, Operation, i.observer,
		attribute.String("product_id", req.ProductID),
		attribute.String("status", req.NewStatus),
	)
	defer func() { done(err) }()

	// 1. A malformed id names no stored product
	productID, err := domain.NewProductID(req.ProductID)
	if err != nil {
		return nil, i.reject(ctx, req, domain.ErrProductNotFound)
	}
	next := domain.Status(req.NewStatus)
	caller := domain.Identity(req.Caller)
	transferTo := domain.Identity(req.TransferTo)

	// 2. Run inside the host's serialized section
	err = i.ledger.Update(ctx, func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := product.CheckTransition(next); err != nil {
			return nil, err
		}
		if err := contracts.RequireRole(ctx, tx, caller, domain.RequiredRole(product.Status(), next)); err != nil {
			return nil, err
		}

		// 3. Input bounds and recipient checks
		reason, err := domain.NewReason(req.Reason)
		if err != nil {
			return nil, err
		}
		location, err := domain.NewLocation(req.Location)
		if err != nil {
			return nil, err
		}
		if err := product.CheckRecipient(next, transferTo); err != nil {
			return nil, err
		}
		if !transferTo.IsZero() {
			role, err := contracts.CurrentRole(ctx, tx, transferTo)
			if err != nil {
				return nil, err
			}
			if !domain.CanReceiveTransfer(role) {
				return nil, domain.ErrInvalidOwner
			}
		}

		// 4. Call domain method
		entry, err := product.UpdateStatus(caller, next, reason, location, transferTo, tx.Now())
		if err != nil {
			return nil, err
		}

		// 5. Audit entry is written last
		events := product.DomainEvents()
		event, ok := events[len(events)-1].(domain.AuditableEvent)
		if !ok {
			return nil, errors.New("status update produced no auditable event")
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

	i.logger.InfoContext(ctx, "product status updated",
		slog.String("op", Operation),
		slog.String("product_id", string(productID)),
		slog.String("status", string(next)),
		slog.Uint64("sequence", resp.History.Sequence),
		slog.Uint64("tx_id", resp.TxID),
	)
	return resp, nil
}

func (i *Interactor) reject(ctx context.Context, req *Request, err error) error {
	attrs := []any{
		slog.String("op", Operation),
		slog.String("product_id", req.ProductID),
		slog.String("status", req.NewStatus),
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
