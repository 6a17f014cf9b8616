package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/models/m_audit"
	"github.com/light-bringer/provenance-ledger/internal/models/m_ledger_meta"
	"github.com/light-bringer/provenance-ledger/internal/models/m_product"
	"github.com/light-bringer/provenance-ledger/internal/models/m_role"
	"github.com/light-bringer/provenance-ledger/internal/models/m_status_history"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
)

// MemoryLedger implements contracts.Ledger in process memory.
// A single mutex serializes every operation; reads inside an Update see only committed rows.
type MemoryLedger struct {
	mu    sync.Mutex
	clock *clock.Monotonic

	meta     *m_ledger_meta.Data
	roles    map[string]m_role.Data
	products map[string]m_product.Data
	history  map[string][]m_status_history.Data
	audit    []m_audit.Data
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger(clk clock.Clock) *MemoryLedger {
	return &MemoryLedger{
		clock:    clock.NewMonotonic(clk),
		roles:    make(map[string]m_role.Data),
		products: make(map[string]m_product.Data),
		history:  make(map[string][]m_status_history.Data),
	}
}

// Bootstrap sets the system owner and grants it the admin role.
func (l *MemoryLedger) Bootstrap(_ context.Context, owner domain.Identity) (domain.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.meta != nil {
		if l.meta.Owner != string(owner) {
			return domain.Identity(l.meta.Owner), domain.ErrInvalidOwner
		}
		return owner, nil
	}

	assignment, err := domain.OwnerAssignment(owner, l.clock.Now())
	if err != nil {
		return "", err
	}

	l.meta = &m_ledger_meta.Data{MetaID: m_ledger_meta.RowID, Owner: string(owner)}
	l.roles[string(owner)] = *roleToData(assignment)
	return owner, nil
}

// Update runs fn under the ledger lock and applies its write set.
func (l *MemoryLedger) Update(ctx context.Context, fn contracts.UpdateFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &memoryTx{memoryReader: memoryReader{l: l}, now: l.clock.Now()}

	ws, err := fn(ctx, tx)
	if err != nil {
		return err
	}
	if err := verifyWriteSet(ctx, tx, ws); err != nil {
		return err
	}

	l.apply(ws)
	if ws.Product != nil {
		ws.Product.MarkPersisted()
	}
	return nil
}

// apply writes a verified write set. It cannot fail.
func (l *MemoryLedger) apply(ws *contracts.WriteSet) {
	if ws.Product != nil {
		data := productToData(ws.Product)
		if !ws.Product.IsNew() {
			// Only dirty columns change; the rest keep their stored values.
			stored := l.products[data.ProductID]
			for col := range productUpdates(ws.Product) {
				switch col {
				case m_product.CurrentOwner:
					stored.CurrentOwner = data.CurrentOwner
				case m_product.CurrentStatus:
					stored.CurrentStatus = data.CurrentStatus
				case m_product.UpdateCount:
					stored.UpdateCount = data.UpdateCount
				}
			}
			data = &stored
		}
		l.products[data.ProductID] = *data
	}

	if ws.History != nil {
		row := historyToData(ws.History)
		l.history[row.ProductID] = append(l.history[row.ProductID], *row)
	}

	if ws.Role != nil {
		row := roleToData(ws.Role)
		l.roles[row.Identity] = *row
	}

	l.audit = append(l.audit, *auditToData(ws.Audit))
	l.meta.AuditCount = int64(len(l.audit))
}

// View runs fn under the ledger lock.
func (l *MemoryLedger) View(ctx context.Context, fn func(ctx context.Context, r contracts.Reader) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx, memoryReader{l: l})
}

// Close is a no-op.
func (l *MemoryLedger) Close() error { return nil }

// memoryReader reads committed rows. Callers hold l.mu.
type memoryReader struct {
	l *MemoryLedger
}

func (r memoryReader) Owner(context.Context) (domain.Identity, error) {
	if r.l.meta == nil {
		return "", domain.ErrOwnerNotSet
	}
	return domain.Identity(r.l.meta.Owner), nil
}

func (r memoryReader) GetRole(_ context.Context, identity domain.Identity) (domain.Role, error) {
	row, ok := r.l.roles[string(identity)]
	if !ok {
		return "", domain.ErrRoleNotAssigned
	}
	return domain.Role(row.Role), nil
}

func (r memoryReader) GetProduct(_ context.Context, productID domain.ProductID) (*domain.Product, error) {
	row, ok := r.l.products[string(productID)]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return productFromData(&row), nil
}

func (r memoryReader) GetStatusHistory(_ context.Context, productID domain.ProductID, sequence uint64) (*domain.StatusHistoryEntry, error) {
	rows := r.l.history[string(productID)]
	if sequence >= uint64(len(rows)) {
		return nil, domain.ErrHistoryEntryNotFound
	}
	return historyFromData(&rows[sequence]), nil
}

func (r memoryReader) ListStatusHistory(_ context.Context, productID domain.ProductID) ([]*domain.StatusHistoryEntry, error) {
	rows := r.l.history[string(productID)]
	entries := make([]*domain.StatusHistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, historyFromData(&rows[i]))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

func (r memoryReader) GetAuditEntry(_ context.Context, txID uint64) (*domain.AuditEntry, error) {
	if txID >= uint64(len(r.l.audit)) {
		return nil, domain.ErrAuditEntryNotFound
	}
	return auditFromData(&r.l.audit[txID]), nil
}

func (r memoryReader) ListAuditEntries(_ context.Context, from uint64, limit int) ([]*domain.AuditEntry, error) {
	total := uint64(len(r.l.audit))
	if from >= total || limit <= 0 {
		return []*domain.AuditEntry{}, nil
	}
	end := total
	if uint64(limit) < end-from {
		end = from + uint64(limit)
	}
	entries := make([]*domain.AuditEntry, 0, end-from)
	for i := from; i < end; i++ {
		entries = append(entries, auditFromData(&r.l.audit[i]))
	}
	return entries, nil
}

func (r memoryReader) AuditCount(context.Context) (uint64, error) {
	return uint64(len(r.l.audit)), nil
}

type memoryTx struct {
	memoryReader
	now time.Time
}

func (t *memoryTx) Now() time.Time { return t.now }
