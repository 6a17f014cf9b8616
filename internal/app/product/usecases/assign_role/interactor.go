package assign_role

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
const Operation = "assign_role"

// Request contains the data needed to assign a role.
type Request struct {
	Caller   string // Identity supplied by the transport
	Identity string // Target of the assignment
	Role     string
}

// Response describes the accepted assignment.
type Response struct {
	Assignment domain.RoleAssignment
	TxID       uint64
}

// Interactor handles the assign role use case.
type Interactor struct {
	ledger   contracts.Ledger
	observer contracts.Observer
	logger   *slog.Logger
}

// NewInteractor creates a new assign role interactor.
func NewInteractor(ledger contracts.Ledger, observer contracts.Observer, logger *slog.Logger) *Interactor {
	return &Interactor{
		ledger:   ledger,
		observer: observer,
		logger:   logger,
	}
}

// Execute overwrites the target's role. Only the system owner may call it.
func (i *Interactor) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, done := tracing.Track(ctx, Operation, i.observer, attribute.String("role", req.Role))
	defer func() { done(err) }()

	caller := domain.Identity(req.Caller)
	target := domain.Identity(req.Identity)

	err = i.ledger.Update(ctx, func(ctx context.Context, tx contracts.Tx) (*contracts.WriteSet, error) {
		owner, err := tx.Owner(ctx)
		if errors.Is(err, domain.ErrOwnerNotSet) {
			return nil, domain.ErrNotAuthorized
		}
		if err != nil {
			return nil, err
		}
		if caller != owner {
			return nil, domain.ErrNotAuthorized
		}

		// Unknown role strings are rejected before the registry is read.
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}

		current, err := contracts.CurrentRole(ctx, tx, target)
		if err != nil {
			return nil, err
		}

		assignment, event, err := domain.AssignRole(owner, caller, target, role, current, tx.Now())
		if err != nil {
			return nil, err
		}

		audit, err := contracts.AuditEntryFor(ctx, tx, event)
		if err != nil {
			return nil, err
		}

		resp = &Response{Assignment: *assignment, TxID: audit.TxID}
		return &contracts.WriteSet{Role: assignment, Audit: audit}, nil
	})
	if err != nil {
		return nil, i.reject(ctx, req, err)
	}

	i.logger.InfoContext(ctx, "role assigned",
		slog.String("op", Operation),
		slog.String("identity", req.Identity),
		slog.String("role", req.Role),
		slog.Uint64("tx_id", resp.TxID),
	)
	return resp, nil
}

func (i *Interactor) reject(ctx context.Context, req *Request, err error) error {
	attrs := []any{
		slog.String("op", Operation),
		slog.String("identity", req.Identity),
		slog.String("role", req.Role),
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
