package repo

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/light-bringer/provenance-ledger/internal/app/product/contracts"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/models/m_audit"
	"github.com/light-bringer/provenance-ledger/internal/models/m_ledger_meta"
	"github.com/light-bringer/provenance-ledger/internal/models/m_product"
	"github.com/light-bringer/provenance-ledger/internal/models/m_role"
	"github.com/light-bringer/provenance-ledger/internal/models/m_status_history"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
	"github.com/light-bringer/provenance-ledger/internal/pkg/query"
)

// Driver names accepted by OpenSQLLedger.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// defaultMaxAttempts bounds retries of PostgreSQL serialization failures.
const defaultMaxAttempts = 5

//go:embed schema/*.sql
var schemaFS embed.FS

// SQLLedger implements contracts.Ledger on database/sql.
// SQLite is serialized through a single connection; PostgreSQL runs every
// operation at SERIALIZABLE isolation and retries serialization failures.
type SQLLedger struct {
	db          *sql.DB
	dialect     query.Dialect
	clock       *clock.Monotonic
	maxAttempts int
}

// OpenSQLLedger opens the database, creates the schema and returns the ledger.
func OpenSQLLedger(ctx context.Context, driverName, dsn string, clk clock.Clock) (*SQLLedger, error) {
	var dialect query.Dialect
	switch driverName {
	case DriverSQLite:
		dialect = query.SQLite
	case DriverPostgres:
		dialect = query.Postgres
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}
	if dialect == query.SQLite {
		db.SetMaxOpenConns(1)
	}

	l := NewSQLLedger(db, dialect, clk)
	if err := l.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := l.restoreClock(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLLedger wraps an open database. The schema must already exist.
func NewSQLLedger(db *sql.DB, dialect query.Dialect, clk clock.Clock) *SQLLedger {
	return &SQLLedger{
		db:          db,
		dialect:     dialect,
		clock:       clock.NewMonotonic(clk),
		maxAttempts: defaultMaxAttempts,
	}
}

// Migrate creates the ledger tables if they do not exist.
func (l *SQLLedger) Migrate(ctx context.Context) error {
	name := "schema/sqlite.sql"
	if l.dialect == query.Postgres {
		name = "schema/postgres.sql"
	}
	ddl, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// restoreClock raises the logical clock to the newest stored audit timestamp.
func (l *SQLLedger) restoreClock(ctx context.Context) error {
	stmt, args := query.From(m_audit.TableName).
		Select("MAX(" + m_audit.RecordedAt + ")").
		BuildSQL(l.dialect)

	var latest sql.NullInt64
	if err := l.db.QueryRowContext(ctx, stmt, args...).Scan(&latest); err != nil {
		return fmt.Errorf("failed to read latest audit timestamp: %w", err)
	}
	if latest.Valid {
		l.clock.Observe(fromUnixNanos(latest.Int64))
	}
	return nil
}

// Bootstrap sets the system owner and grants it the admin role.
func (l *SQLLedger) Bootstrap(ctx context.Context, owner domain.Identity) (domain.Identity, error) {
	var recorded domain.Identity
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		r := sqlReader{q: tx, dialect: l.dialect}
		current, err := r.Owner(ctx)
		switch {
		case err == nil:
			recorded = current
			if current != owner {
				return domain.ErrInvalidOwner
			}
			return nil
		case !errors.Is(err, domain.ErrOwnerNotSet):
			return err
		}

		assignment, err := domain.OwnerAssignment(owner, l.clock.Now())
		if err != nil {
			return err
		}

		stmt, args := query.InsertSQL(l.dialect, m_ledger_meta.TableName,
			[]string{m_ledger_meta.MetaID, m_ledger_meta.Owner, m_ledger_meta.AuditCount},
			[]interface{}{m_ledger_meta.RowID, string(owner), int64(0)})
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to insert ledger meta: %w", err)
		}
		if err := l.upsertRole(ctx, tx, assignment); err != nil {
			return err
		}
		recorded = owner
		return nil
	})
	return recorded, err
}

// Update runs fn inside a transaction and commits its write set.
func (l *SQLLedger) Update(ctx context.Context, fn contracts.UpdateFunc) error {
	var ws *contracts.WriteSet
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		st := &sqlTx{
			sqlReader: sqlReader{q: tx, dialect: l.dialect},
			now:       l.clock.Now(),
		}

		var err error
		ws, err = fn(ctx, st)
		if err != nil {
			return err
		}
		if err := verifyWriteSet(ctx, st, ws); err != nil {
			return err
		}
		return l.write(ctx, tx, ws)
	})
	if err != nil {
		return err
	}
	if ws.Product != nil {
		ws.Product.MarkPersisted()
	}
	return nil
}

// View runs fn inside a read-only transaction.
func (l *SQLLedger) View(ctx context.Context, fn func(ctx context.Context, r contracts.Reader) error) error {
	opts := &sql.TxOptions{ReadOnly: true}
	if l.dialect == query.SQLite {
		opts = nil
	}
	tx, err := l.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(ctx, sqlReader{q: tx, dialect: l.dialect})
}

// Close closes the database.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}

// inTx runs fn in a read-write transaction, retrying PostgreSQL serialization failures.
func (l *SQLLedger) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var opts *sql.TxOptions
	if l.dialect == query.Postgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	for attempt := 1; ; attempt++ {
		err := l.runTx(ctx, opts, fn)
		if err == nil || !isSerializationFailure(err) || attempt >= l.maxAttempts {
			return err
		}
	}
}

func (l *SQLLedger) runTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// write applies a verified write set within tx.
func (l *SQLLedger) write(ctx context.Context, tx *sql.Tx, ws *contracts.WriteSet) error {
	if p := ws.Product; p != nil {
		var stmt string
		var args []interface{}
		if p.IsNew() {
			data := productToData(p)
			stmt, args = query.InsertSQL(l.dialect, m_product.TableName, m_product.Columns(), sqlValues(data.Values()))
		} else {
			updates := productUpdates(p)
			if len(updates) > 0 {
				stmt, args = query.UpdateSQL(l.dialect, m_product.TableName, updates,
					query.Eq(m_product.ProductID, string(p.ID())))
			}
		}
		if stmt != "" {
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("failed to write product: %w", err)
			}
		}
	}

	if ws.History != nil {
		data := historyToData(ws.History)
		stmt, args := query.InsertSQL(l.dialect, m_status_history.TableName, m_status_history.Columns(), sqlValues(data.Values()))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to insert status history: %w", err)
		}
	}

	if ws.Role != nil {
		if err := l.upsertRole(ctx, tx, ws.Role); err != nil {
			return err
		}
	}

	data := auditToData(ws.Audit)
	stmt, args := query.InsertSQL(l.dialect, m_audit.TableName, m_audit.Columns(), sqlValues(data.Values()))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	stmt, args = query.UpdateSQL(l.dialect, m_ledger_meta.TableName,
		map[string]interface{}{m_ledger_meta.AuditCount: data.TxID + 1},
		query.Eq(m_ledger_meta.MetaID, m_ledger_meta.RowID))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to advance audit counter: %w", err)
	}

	return nil
}

func (l *SQLLedger) upsertRole(ctx context.Context, tx *sql.Tx, assignment *domain.RoleAssignment) error {
	data := roleToData(assignment)
	stmt, args := query.UpsertSQL(l.dialect, m_role.TableName,
		[]string{m_role.Identity}, m_role.Columns(), sqlValues(data.Values()))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to write role assignment: %w", err)
	}
	return nil
}

// sqlValues converts timestamps to the integer representation of the SQL schema.
func sqlValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if t, ok := v.(time.Time); ok {
			out[i] = toUnixNanos(t)
			continue
		}
		out[i] = v
	}
	return out
}

// queryer is the subset of *sql.Tx used for reads.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type sqlReader struct {
	q       queryer
	dialect query.Dialect
}

func (r sqlReader) Owner(ctx context.Context) (domain.Identity, error) {
	stmt, args := query.From(m_ledger_meta.TableName).
		Select(m_ledger_meta.Owner).
		Where(query.Eq(m_ledger_meta.MetaID, m_ledger_meta.RowID)).
		BuildSQL(r.dialect)

	var owner string
	if err := r.q.QueryRowContext(ctx, stmt, args...).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrOwnerNotSet
		}
		return "", fmt.Errorf("failed to read owner: %w", err)
	}
	return domain.Identity(owner), nil
}

func (r sqlReader) AuditCount(ctx context.Context) (uint64, error) {
	stmt, args := query.From(m_ledger_meta.TableName).
		Select(m_ledger_meta.AuditCount).
		Where(query.Eq(m_ledger_meta.MetaID, m_ledger_meta.RowID)).
		BuildSQL(r.dialect)

	var count int64
	if err := r.q.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read audit counter: %w", err)
	}
	return uint64(count), nil
}

func (r sqlReader) GetRole(ctx context.Context, identity domain.Identity) (domain.Role, error) {
	stmt, args := query.From(m_role.TableName).
		Select(m_role.Role).
		Where(query.Eq(m_role.Identity, string(identity))).
		BuildSQL(r.dialect)

	var role string
	if err := r.q.QueryRowContext(ctx, stmt, args...).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRoleNotAssigned
		}
		return "", fmt.Errorf("failed to read role: %w", err)
	}
	return domain.Role(role), nil
}

func (r sqlReader) GetProduct(ctx context.Context, productID domain.ProductID) (*domain.Product, error) {
	stmt, args := query.From(m_product.TableName).
		Select(m_product.Columns()...).
		Where(query.Eq(m_product.ProductID, string(productID))).
		BuildSQL(r.dialect)

	var data m_product.Data
	var createdAt int64
	err := r.q.QueryRowContext(ctx, stmt, args...).Scan(
		&data.ProductID,
		&data.Manufacturer,
		&createdAt,
		&data.CurrentOwner,
		&data.CurrentStatus,
		&data.Verified,
		&data.UpdateCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	data.CreatedAt = fromUnixNanos(createdAt)
	return productFromData(&data), nil
}

func (r sqlReader) GetStatusHistory(ctx context.Context, productID domain.ProductID, sequence uint64) (*domain.StatusHistoryEntry, error) {
	entries, err := r.queryHistory(ctx, query.From(m_status_history.TableName).
		Select(m_status_history.Columns()...).
		Where(query.Eq(m_status_history.ProductID, string(productID))).
		Where(query.Eq(m_status_history.Sequence, int64(sequence))))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrHistoryEntryNotFound
	}
	return entries[0], nil
}

func (r sqlReader) ListStatusHistory(ctx context.Context, productID domain.ProductID) ([]*domain.StatusHistoryEntry, error) {
	return r.queryHistory(ctx, query.From(m_status_history.TableName).
		Select(m_status_history.Columns()...).
		Where(query.Eq(m_status_history.ProductID, string(productID))).
		OrderBy(m_status_history.Sequence, query.Asc))
}

func (r sqlReader) queryHistory(ctx context.Context, b *query.Builder) ([]*domain.StatusHistoryEntry, error) {
	stmt, args := b.BuildSQL(r.dialect)
	rows, err := r.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.StatusHistoryEntry{}
	for rows.Next() {
		var data m_status_history.Data
		var changedAt int64
		if err := rows.Scan(
			&data.ProductID,
			&data.Sequence,
			&data.Status,
			&changedAt,
			&data.ChangedBy,
			&data.Reason,
			&data.Location,
		); err != nil {
			return nil, fmt.Errorf("failed to parse status history: %w", err)
		}
		data.ChangedAt = fromUnixNanos(changedAt)
		entries = append(entries, historyFromData(&data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status history: %w", err)
	}
	return entries, nil
}

func (r sqlReader) GetAuditEntry(ctx context.Context, txID uint64) (*domain.AuditEntry, error) {
	entries, err := r.queryAudit(ctx, query.From(m_audit.TableName).
		Select(m_audit.Columns()...).
		Where(query.Eq(m_audit.TxID, int64(txID))))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrAuditEntryNotFound
	}
	return entries[0], nil
}

func (r sqlReader) ListAuditEntries(ctx context.Context, from uint64, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		return []*domain.AuditEntry{}, nil
	}
	return r.queryAudit(ctx, query.From(m_audit.TableName).
		Select(m_audit.Columns()...).
		Where(query.Gte(m_audit.TxID, int64(from))).
		OrderBy(m_audit.TxID, query.Asc).
		Limit(int64(limit)))
}

func (r sqlReader) queryAudit(ctx context.Context, b *query.Builder) ([]*domain.AuditEntry, error) {
	stmt, args := b.BuildSQL(r.dialect)
	rows, err := r.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var data m_audit.Data
		var recordedAt int64
		if err := rows.Scan(
			&data.TxID,
			&data.Actor,
			&data.Action,
			&data.ProductID,
			&data.Subject,
			&data.Details,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to parse audit entry: %w", err)
		}
		data.RecordedAt = fromUnixNanos(recordedAt)
		entries = append(entries, auditFromData(&data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

type sqlTx struct {
	sqlReader
	now time.Time
}

func (t *sqlTx) Now() time.Time { return t.now }
