package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// StatusHistoryEntry is one immutable row of a product's status history,
// keyed by (ProductID, Sequence).
type StatusHistoryEntry struct {
	ProductID ProductID
	Sequence  uint64
	Status    Status
	Timestamp time.Time
	ChangedBy Identity
	Reason    Reason
	Location  Location
}

// AuditAction tags the kind of accepted mutation an audit entry records.
type AuditAction string

const (
	ActionRegister   AuditAction = "register"
	ActionUpdate     AuditAction = "update"
	ActionAssignRole AuditAction = "assign-role"
)

// AuditRecord is the content of an audit entry before it is placed in the global order.
type AuditRecord struct {
	Actor     Identity
	Action    AuditAction
	ProductID ProductID // empty for role assignments
	Subject   Identity  // role target or transfer recipient
	Details   string
}

// AuditEntry is one immutable row of the global audit trail, keyed by TxID.
type AuditEntry struct {
	TxID       uint64
	Actor      Identity
	Action     AuditAction
	ProductID  ProductID
	Subject    Identity
	Details    string
	RecordedAt time.Time
}

// NewAuditEntry places record at position txID of the audit trail.
func NewAuditEntry(txID uint64, record AuditRecord, recordedAt time.Time) (*AuditEntry, error) {
	if n := utf8.RuneCountInString(string(record.Action)); n == 0 || n > MaxActionLength {
		return nil, fmt.Errorf("audit action %q exceeds %d characters", record.Action, MaxActionLength)
	}
	if utf8.RuneCountInString(record.Details) > MaxDetailsLength {
		return nil, fmt.Errorf("audit details exceed %d characters", MaxDetailsLength)
	}
	return &AuditEntry{
		TxID:       txID,
		Actor:      record.Actor,
		Action:     record.Action,
		ProductID:  record.ProductID,
		Subject:    record.Subject,
		Details:    record.Details,
		RecordedAt: recordedAt,
	}, nil
}
