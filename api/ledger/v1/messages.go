// Package ledgerv1 defines the LedgerService wire contract: messages,
// service descriptor, client and error details.
package ledgerv1

import "time"

// Product is the current state of one product.
type Product struct {
	ProductID     string    `json:"product_id"`
	Manufacturer  string    `json:"manufacturer"`
	CreatedAt     time.Time `json:"created_at"`
	CurrentOwner  string    `json:"current_owner"`
	CurrentStatus string    `json:"current_status"`
	Verified      bool      `json:"verified"`
	UpdateCount   uint64    `json:"update_count"`
}

// StatusHistoryEntry is one row of a product's status history.
type StatusHistoryEntry struct {
	ProductID string    `json:"product_id"`
	Sequence  uint64    `json:"sequence"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	ChangedBy string    `json:"changed_by"`
	Reason    string    `json:"reason"`
	Location  string    `json:"location"`
}

// AuditEntry is one row of the global audit trail.
type AuditEntry struct {
	TxID       uint64    `json:"tx_id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	ProductID  string    `json:"product_id,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Details    string    `json:"details"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RoleAssignment is one registry row.
type RoleAssignment struct {
	Identity   string    `json:"identity"`
	Role       string    `json:"role"`
	AssignedBy string    `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

type RegisterProductRequest struct {
	ProductID string `json:"product_id"`
	Location  string `json:"location"`
}

type RegisterProductReply struct {
	Product *Product            `json:"product"`
	History *StatusHistoryEntry `json:"history"`
	TxID    uint64              `json:"tx_id"`
}

type UpdateProductStatusRequest struct {
	ProductID  string `json:"product_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
	Location   string `json:"location"`
	TransferTo string `json:"transfer_to,omitempty"`
}

type UpdateProductStatusReply struct {
	Product *Product            `json:"product"`
	History *StatusHistoryEntry `json:"history"`
	TxID    uint64              `json:"tx_id"`
}

type AssignRoleRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

type AssignRoleReply struct {
	Assignment *RoleAssignment `json:"assignment"`
	TxID       uint64          `json:"tx_id"`
}

type GetProductRequest struct {
	ProductID string `json:"product_id"`
}

type GetProductReply struct {
	Product *Product `json:"product"`
}

type GetStatusHistoryRequest struct {
	ProductID string `json:"product_id"`
	Sequence  uint64 `json:"sequence"`
}

type GetStatusHistoryReply struct {
	Entry *StatusHistoryEntry `json:"entry"`
}

type ListStatusHistoryRequest struct {
	ProductID string `json:"product_id"`
}

type ListStatusHistoryReply struct {
	Entries []*StatusHistoryEntry `json:"entries"`
}

type GetAuditEntryRequest struct {
	TxID uint64 `json:"tx_id"`
}

type GetAuditEntryReply struct {
	Entry *AuditEntry `json:"entry"`
}

type ListAuditEntriesRequest struct {
	From  uint64 `json:"from"`
	Limit int    `json:"limit,omitempty"`
}

type ListAuditEntriesReply struct {
	Entries []*AuditEntry `json:"entries"`
	Total   uint64        `json:"total"`
}

type GetRoleRequest struct {
	Identity string `json:"identity"`
}

type GetRoleReply struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}
