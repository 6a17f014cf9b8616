package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// Reader exposes the ledger's tables to use cases. Every method is read-only.
type Reader interface {
	// Owner returns the system owner set at bootstrap, or domain.ErrOwnerNotSet.
	Owner(ctx context.Context) (domain.Identity, error)

	// GetRole returns the identity's role, or domain.ErrRoleNotAssigned.
	GetRole(ctx context.Context, identity domain.Identity) (domain.Role, error)

	// GetProduct reconstructs the product aggregate, or returns domain.ErrProductNotFound.
	GetProduct(ctx context.Context, productID domain.ProductID) (*domain.Product, error)

	// GetStatusHistory returns one history row, or domain.ErrHistoryEntryNotFound.
	GetStatusHistory(ctx context.Context, productID domain.ProductID, sequence uint64) (*domain.StatusHistoryEntry, error)

	// ListStatusHistory returns a product's history rows in sequence order.
	ListStatusHistory(ctx context.Context, productID domain.ProductID) ([]*domain.StatusHistoryEntry, error)

	// GetAuditEntry returns one audit row, or domain.ErrAuditEntryNotFound.
	GetAuditEntry(ctx context.Context, txID uint64) (*domain.AuditEntry, error)

	// ListAuditEntries returns up to limit audit rows with TxID >= from, in TxID order.
	ListAuditEntries(ctx context.Context, from uint64, limit int) ([]*domain.AuditEntry, error)

	// AuditCount returns the global audit counter: the TxID the next accepted operation will get.
	AuditCount(ctx context.Context) (uint64, error)
}

// Tx is the view an operation gets while the host executes it.
// Reads see a consistent snapshot that no other operation can change until the Tx ends.
type Tx interface {
	Reader

	// Now returns the host's logical time for this operation.
	Now() time.Time
}

// WriteSet is everything one accepted operation writes. The host commits all of it or none of it.
type WriteSet struct {
	// Product is inserted when IsNew, otherwise its dirty fields are updated.
	Product *domain.Product

	// History is appended to the product's status history.
	History *domain.StatusHistoryEntry

	// Role overwrites the identity's registry row.
	Role *domain.RoleAssignment

	// Audit is appended to the audit trail; its TxID must equal the counter read in the same Tx.
	Audit *domain.AuditEntry
}

// UpdateFunc computes the write set of one operation. Returning an error aborts with no writes.
type UpdateFunc func(ctx context.Context, tx Tx) (*WriteSet, error)

// Ledger is the host runtime: it serializes operations and commits each write set atomically.
type Ledger interface {
	// Bootstrap sets the system owner once and grants it the admin role.
	// It returns the recorded owner; a different owner yields domain.ErrInvalidOwner.
	Bootstrap(ctx context.Context, owner domain.Identity) (domain.Identity, error)

	// Update runs fn against a serialized snapshot and commits the returned write set.
	Update(ctx context.Context, fn UpdateFunc) error

	// View runs fn against a consistent read-only snapshot.
	View(ctx context.Context, fn func(ctx context.Context, r Reader) error) error

	// Close releases the host's resources.
	Close() error
}
