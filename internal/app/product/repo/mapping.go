package repo

import (
	"time"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/models/m_audit"
	"github.com/light-bringer/provenance-ledger/internal/models/m_product"
	"github.com/light-bringer/provenance-ledger/internal/models/m_role"
	"github.com/light-bringer/provenance-ledger/internal/models/m_status_history"
)

// productToData converts a domain Product to database Data.
func productToData(p *domain.Product) *m_product.Data {
	return &m_product.Data{
		ProductID:     string(p.ID()),
		Manufacturer:  string(p.Manufacturer()),
		CreatedAt:     p.CreatedAt().UTC(),
		CurrentOwner:  string(p.CurrentOwner()),
		CurrentStatus: string(p.Status()),
		Verified:      p.Verified(),
		UpdateCount:   int64(p.UpdateCount()),
	}
}

// productFromData converts database Data to a domain Product.
func productFromData(d *m_product.Data) *domain.Product {
	return domain.ReconstructProduct(
		domain.ProductID(d.ProductID),
		domain.Identity(d.Manufacturer),
		d.CreatedAt.UTC(),
		domain.Identity(d.CurrentOwner),
		domain.Status(d.CurrentStatus),
		d.Verified,
		uint64(d.UpdateCount),
	)
}

// productUpdates returns the dirty columns of an existing product.
func productUpdates(p *domain.Product) map[string]interface{} {
	changes := p.Changes()
	updates := make(map[string]interface{})

	if changes.Dirty(domain.FieldCurrentOwner) {
		updates[m_product.CurrentOwner] = string(p.CurrentOwner())
	}
	if changes.Dirty(domain.FieldCurrentStatus) {
		updates[m_product.CurrentStatus] = string(p.Status())
	}
	if changes.Dirty(domain.FieldUpdateCount) {
		updates[m_product.UpdateCount] = int64(p.UpdateCount())
	}

	return updates
}

func historyToData(e *domain.StatusHistoryEntry) *m_status_history.Data {
	return &m_status_history.Data{
		ProductID: string(e.ProductID),
		Sequence:  int64(e.Sequence),
		Status:    string(e.Status),
		ChangedAt: e.Timestamp.UTC(),
		ChangedBy: string(e.ChangedBy),
		Reason:    string(e.Reason),
		Location:  string(e.Location),
	}
}

func historyFromData(d *m_status_history.Data) *domain.StatusHistoryEntry {
	return &domain.StatusHistoryEntry{
		ProductID: domain.ProductID(d.ProductID),
		Sequence:  uint64(d.Sequence),
		Status:    domain.Status(d.Status),
		Timestamp: d.ChangedAt.UTC(),
		ChangedBy: domain.Identity(d.ChangedBy),
		Reason:    domain.Reason(d.Reason),
		Location:  domain.Location(d.Location),
	}
}

func auditToData(e *domain.AuditEntry) *m_audit.Data {
	return &m_audit.Data{
		TxID:       int64(e.TxID),
		Actor:      string(e.Actor),
		Action:     string(e.Action),
		ProductID:  string(e.ProductID),
		Subject:    string(e.Subject),
		Details:    e.Details,
		RecordedAt: e.RecordedAt.UTC(),
	}
}

func auditFromData(d *m_audit.Data) *domain.AuditEntry {
	return &domain.AuditEntry{
		TxID:       uint64(d.TxID),
		Actor:      domain.Identity(d.Actor),
		Action:     domain.AuditAction(d.Action),
		ProductID:  domain.ProductID(d.ProductID),
		Subject:    domain.Identity(d.Subject),
		Details:    d.Details,
		RecordedAt: d.RecordedAt.UTC(),
	}
}

func roleToData(a *domain.RoleAssignment) *m_role.Data {
	return &m_role.Data{
		Identity:   string(a.Identity),
		Role:       string(a.Role),
		AssignedBy: string(a.AssignedBy),
		AssignedAt: a.AssignedAt.UTC(),
	}
}

// fromUnixNanos and toUnixNanos map timestamps to the integer columns of the SQL schema.
func fromUnixNanos(ns int64) time.Time { return time.Unix(0, ns).UTC() }
func toUnixNanos(t time.Time) int64    { return t.UTC().UnixNano() }
