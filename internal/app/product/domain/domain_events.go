package domain

import "time"

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// AuditableEvent is a domain event that produces exactly one audit entry when committed.
type AuditableEvent interface {
	DomainEvent
	AuditRecord() AuditRecord
}

// ProductRegisteredEvent is emitted when a manufacturer registers a product.
type ProductRegisteredEvent struct {
	ProductID    ProductID
	Manufacturer Identity
	Location     Location
	RegisteredAt time.Time
}

func (e *ProductRegisteredEvent) EventType() string {
	return "product.registered"
}

func (e *ProductRegisteredEvent) AggregateID() string {
	return string(e.ProductID)
}

func (e *ProductRegisteredEvent) AuditRecord() AuditRecord {
	return AuditRecord{
		Actor:     e.Manufacturer,
		Action:    ActionRegister,
		ProductID: e.ProductID,
		Details:   "Product registered",
	}
}

// ProductStatusUpdatedEvent is emitted when a product moves along its lifecycle.
type ProductStatusUpdatedEvent struct {
	ProductID ProductID
	ChangedBy Identity
	From      Status
	To        Status
	Sequence  uint64
	NewOwner  Identity // set on transfers only
	Reason    Reason
	Location  Location
	UpdatedAt time.Time
}

func (e *ProductStatusUpdatedEvent) EventType() string {
	return "product.status_updated"
}

func (e *ProductStatusUpdatedEvent) AggregateID() string {
	return string(e.ProductID)
}

func (e *ProductStatusUpdatedEvent) AuditRecord() AuditRecord {
	return AuditRecord{
		Actor:     e.ChangedBy,
		Action:    ActionUpdate,
		ProductID: e.ProductID,
		Subject:   e.NewOwner,
		Details:   "Status: " + string(e.To),
	}
}

// RoleAssignedEvent is emitted when the owner grants a role.
type RoleAssignedEvent struct {
	Identity     Identity
	Role         Role
	PreviousRole Role
	AssignedBy   Identity
	AssignedAt   time.Time
}

func (e *RoleAssignedEvent) EventType() string {
	return "role.assigned"
}

func (e *RoleAssignedEvent) AggregateID() string {
	return string(e.Identity)
}

func (e *RoleAssignedEvent) AuditRecord() AuditRecord {
	return AuditRecord{
		Actor:   e.AssignedBy,
		Action:  ActionAssignRole,
		Subject: e.Identity,
		Details: "Role: " + string(e.Role),
	}
}
