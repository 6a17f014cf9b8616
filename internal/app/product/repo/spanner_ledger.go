package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/models/m_audit"
	"github.com/light-bringer/provenance-ledger/internal/models/m_ledger_meta"
	"github.com/light-bringer/provenance-ledger/internal/models/m_product"
	"github.com/light-bringer/provenance-ledger/internal/models/m_role"
	"github.com/light-bringer/provenance-ledger/internal/models/m_status_history"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/pkg/committer"
	"github.com/light-bringer/provenance-ledger/internal/pkg/query"
)

// SpannerLedger implements contracts.Ledger on Cloud Spanner.
// Every Update is one read-write transaction whose write set is buffered as a CommitPlan.
type SpannerLedger struct {
	client    *spanner.Client
	committer *committer.Committer
	clock     *clock.Monotonic

	productModel *m_product.Model
	historyModel *m_status_history.Model
	auditModel   *m_audit.Model
	roleModel    *m_role.Model
	metaModel    *m_ledger_meta.Model
}

// NewSpannerLedger creates a ledger over an open client and restores the logical clock.
func NewSpannerLedger(ctx context.Context, client *spanner.Client, clk clock.Clock) (*SpannerLedger, error) {
	l := &SpannerLedger{
		client:       client,
		committer:    committer.NewCommitter(client),
		clock:        clock.NewMonotonic(clk),
		productModel: m_product.NewModel(),
		historyModel: m_status_history.NewModel(),
		auditModel:   m_audit.NewModel(),
		roleModel:    m_role.NewModel(),
		metaModel:    m_ledger_meta.NewModel(),
	}

	stmt := query.From(m_audit.TableName).Select("MAX(" + m_audit.RecordedAt + ")").Build()
	iter := client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("failed to read latest audit timestamp: %w", err)
	}
	if row != nil {
		var latest spanner.NullTime
		if err := row.Column(0, &latest); err != nil {
			return nil, fmt.Errorf("failed to parse latest audit timestamp: %w", err)
		}
		if latest.Valid {
			l.clock.Observe(latest.Time)
		}
	}

	return l, nil
}

// Bootstrap sets the system owner and grants it the admin role.
func (l *SpannerLedger) Bootstrap(ctx context.Context, owner domain.Identity) (domain.Identity, error) {
	var recorded domain.Identity
	err := l.committer.Run(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		r := spannerReader{rt: txn}
		current, err := r.Owner(ctx)
		switch {
		case err == nil:
			recorded = current
			if current != owner {
				return nil, domain.ErrInvalidOwner
			}
			return nil, nil
		case !errors.Is(err, domain.ErrOwnerNotSet):
			return nil, err
		}

		assignment, err := domain.OwnerAssignment(owner, l.clock.Now())
		if err != nil {
			return nil, err
		}

		plan := committer.NewPlan()
		plan.Add(l.metaModel.InsertMut(string(owner)))
		plan.Add(l.roleModel.UpsertMut(roleToData(assignment)))
		recorded = owner
		return plan, nil
	})
	return recorded, err
}

// Update runs fn inside a read-write transaction and commits its write set.
// Spanner may retry fn when the transaction aborts.
func (l *SpannerLedger) Update(ctx context.Context, fn contracts.UpdateFunc) error {
	var ws *contracts.WriteSet
	err := l.committer.Run(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
		tx := &spannerTx{spannerReader: spannerReader{rt: txn}, now: l.clock.Now()}

		var err error
		ws, err = fn(ctx, tx)
		if err != nil {
			return nil, err
		}
		if err := verifyWriteSet(ctx, tx, ws); err != nil {
			return nil, err
		}
		return l.plan(ws), nil
	})
	if err != nil {
		return err
	}
	if ws.Product != nil {
		ws.Product.MarkPersisted()
	}
	return nil
}

// plan turns a verified write set into mutations.
func (l *SpannerLedger) plan(ws *contracts.WriteSet) *committer.CommitPlan {
	plan := committer.NewPlan()

	if p := ws.Product; p != nil {
		if p.IsNew() {
			plan.Add(l.productModel.InsertMut(productToData(p)))
		} else {
			plan.Add(l.productModel.UpdateMut(string(p.ID()), productUpdates(p)))
		}
	}
	if ws.History != nil {
		plan.Add(l.historyModel.InsertMut(historyToData(ws.History)))
	}
	if ws.Role != nil {
		plan.Add(l.roleModel.UpsertMut(roleToData(ws.Role)))
	}

	audit := auditToData(ws.Audit)
	plan.Add(l.auditModel.InsertMut(audit))
	plan.Add(l.metaModel.AdvanceAuditMut(audit.TxID + 1))

	return plan
}

// View runs fn inside a read-only transaction.
func (l *SpannerLedger) View(ctx context.Context, fn func(ctx context.Context, r contracts.Reader) error) error {
	ro := l.client.ReadOnlyTransaction()
	defer ro.Close()
	return fn(ctx, spannerReader{rt: ro})
}

// Close closes the Spanner client.
func (l *SpannerLedger) Close() error {
	l.client.Close()
	return nil
}

// readTxn is satisfied by both read-write and read-only transactions.
type readTxn interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

type spannerReader struct {
	rt readTxn
}

func (r spannerReader) meta(ctx context.Context) (*m_ledger_meta.Data, error) {
	row, err := r.rt.ReadRow(ctx, m_ledger_meta.TableName, m_ledger_meta.Key(),
		[]string{m_ledger_meta.MetaID, m_ledger_meta.Owner, m_ledger_meta.AuditCount})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrOwnerNotSet
		}
		return nil, fmt.Errorf("failed to read ledger meta: %w", err)
	}

	var data m_ledger_meta.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse ledger meta: %w", err)
	}
	return &data, nil
}

func (r spannerReader) Owner(ctx context.Context) (domain.Identity, error) {
	data, err := r.meta(ctx)
	if err != nil {
		return "", err
	}
	return domain.Identity(data.Owner), nil
}

func (r spannerReader) AuditCount(ctx context.Context) (uint64, error) {
	data, err := r.meta(ctx)
	if errors.Is(err, domain.ErrOwnerNotSet) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(data.AuditCount), nil
}

func (r spannerReader) GetRole(ctx context.Context, identity domain.Identity) (domain.Role, error) {
	row, err := r.rt.ReadRow(ctx, m_role.TableName, spanner.Key{string(identity)}, []string{m_role.Role})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return "", domain.ErrRoleNotAssigned
		}
		return "", fmt.Errorf("failed to read role: %w", err)
	}

	var role string
	if err := row.Column(0, &role); err != nil {
		return "", fmt.Errorf("failed to parse role: %w", err)
	}
	return domain.Role(role), nil
}

func (r spannerReader) GetProduct(ctx context.Context, productID domain.ProductID) (*domain.Product, error) {
	row, err := r.rt.ReadRow(ctx, m_product.TableName, spanner.Key{string(productID)}, m_product.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return productFromData(&data), nil
}

func (r spannerReader) GetStatusHistory(ctx context.Context, productID domain.ProductID, sequence uint64) (*domain.StatusHistoryEntry, error) {
	row, err := r.rt.ReadRow(ctx, m_status_history.TableName,
		m_status_history.Key(string(productID), int64(sequence)), m_status_history.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrHistoryEntryNotFound
		}
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}

	var data m_status_history.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse status history: %w", err)
	}
	return historyFromData(&data), nil
}

func (r spannerReader) ListStatusHistory(ctx context.Context, productID domain.ProductID) ([]*domain.StatusHistoryEntry, error) {
	stmt := query.From(m_status_history.TableName).
		Select(m_status_history.Columns()...).
		Where(query.Eq(m_status_history.ProductID, string(productID))).
		OrderBy(m_status_history.Sequence, query.Asc).
		Build()

	iter := r.rt.Query(ctx, stmt)
	defer iter.Stop()

	entries := []*domain.StatusHistoryEntry{}
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query status history: %w", err)
		}

		var data m_status_history.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse status history: %w", err)
		}
		entries = append(entries, historyFromData(&data))
	}
	return entries, nil
}

func (r spannerReader) GetAuditEntry(ctx context.Context, txID uint64) (*domain.AuditEntry, error) {
	row, err := r.rt.ReadRow(ctx, m_audit.TableName, spanner.Key{int64(txID)}, m_audit.Columns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrAuditEntryNotFound
		}
		return nil, fmt.Errorf("failed to read audit entry: %w", err)
	}

	var data m_audit.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse audit entry: %w", err)
	}
	return auditFromData(&data), nil
}

func (r spannerReader) ListAuditEntries(ctx context.Context, from uint64, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		return []*domain.AuditEntry{}, nil
	}

	stmt := query.From(m_audit.TableName).
		Select(m_audit.Columns()...).
		Where(query.Gte(m_audit.TxID, int64(from))).
		OrderBy(m_audit.TxID, query.Asc).
		Limit(int64(limit)).
		Build()

	iter := r.rt.Query(ctx, stmt)
	defer iter.Stop()

	entries := []*domain.AuditEntry{}
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query audit entries: %w", err)
		}

		var data m_audit.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse audit entry: %w", err)
		}
		entries = append(entries, auditFromData(&data))
	}
	return entries, nil
}

type spannerTx struct {
	spannerReader
	now time.Time
}

func (t *spannerTx) Now() time.Time { return t.now }
