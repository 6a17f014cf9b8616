package domain

import "time"

// Field names for change tracking
const (
	FieldCurrentOwner  = "current_owner"
	FieldCurrentStatus = "current_status"
	FieldUpdateCount   = "update_count"
)

// InitialRegistrationReason is the reason recorded on every product's first history entry.
const InitialRegistrationReason Reason = "Initial registration"

// Product is the aggregate root of the product store.
// It owns the current state of one product and produces its status history entries.
type Product struct {
	id           ProductID
	manufacturer Identity
	createdAt    time.Time
	currentOwner Identity
	status       Status
	verified     bool
	updateCount  uint64

	// isNew is true until the aggregate has been persisted once
	isNew bool

	// Change tracking for partial updates
	changes *ChangeTracker

	// Domain events to be audited
	events []DomainEvent
}

// ProductRecord is a read-only snapshot of a product's current state.
type ProductRecord struct {
	ProductID     ProductID
	Manufacturer  Identity
	CreatedAt     time.Time
	CurrentOwner  Identity
	CurrentStatus Status
	Verified      bool
	UpdateCount   uint64
}

// RegisterProduct creates a new product owned by its manufacturer, together with history entry 0.
func RegisterProduct(id ProductID, manufacturer Identity, location Location, now time.Time) (*Product, *StatusHistoryEntry, error) {
	if _, err := NewProductID(string(id)); err != nil {
		return nil, nil, err
	}
	if _, err := NewLocation(string(location)); err != nil {
		return nil, nil, err
	}
	if manufacturer.IsZero() {
		return nil, nil, ErrNotAuthorized
	}

	p := &Product{
		id:           id,
		manufacturer: manufacturer,
		createdAt:    now,
		currentOwner: manufacturer,
		status:       StatusRegistered,
		verified:     true,
		updateCount:  1,
		isNew:        true,
		changes:      NewChangeTracker(),
	}

	entry := &StatusHistoryEntry{
		ProductID: id,
		Sequence:  0,
		Status:    StatusRegistered,
		Timestamp: now,
		ChangedBy: manufacturer,
		Reason:    InitialRegistrationReason,
		Location:  location,
	}

	p.recordEvent(&ProductRegisteredEvent{
		ProductID:    id,
		Manufacturer: manufacturer,
		Location:     location,
		RegisteredAt: now,
	})

	return p, entry, nil
}

// ReconstructProduct reconstitutes a Product from storage.
func ReconstructProduct(
	id ProductID,
	manufacturer Identity,
	createdAt time.Time,
	currentOwner Identity,
	status Status,
	verified bool,
	updateCount uint64,
) *Product {
	return &Product{
		id:           id,
		manufacturer: manufacturer,
		createdAt:    createdAt,
		currentOwner: currentOwner,
		status:       status,
		verified:     verified,
		updateCount:  updateCount,
		changes:      NewChangeTracker(),
	}
}

// Getters
func (p *Product) ID() ProductID               { return p.id }
func (p *Product) Manufacturer() Identity      { return p.manufacturer }
func (p *Product) CreatedAt() time.Time        { return p.createdAt }
func (p *Product) CurrentOwner() Identity      { return p.currentOwner }
func (p *Product) Status() Status              { return p.status }
func (p *Product) Verified() bool              { return p.verified }
func (p *Product) UpdateCount() uint64         { return p.updateCount }
func (p *Product) IsNew() bool                 { return p.isNew }
func (p *Product) Changes() *ChangeTracker     { return p.changes }
func (p *Product) DomainEvents() []DomainEvent { return p.events }

// Record returns a snapshot of the current state.
func (p *Product) Record() ProductRecord {
	return ProductRecord{
		ProductID:     p.id,
		Manufacturer:  p.manufacturer,
		CreatedAt:     p.createdAt,
		CurrentOwner:  p.currentOwner,
		CurrentStatus: p.status,
		Verified:      p.verified,
		UpdateCount:   p.updateCount,
	}
}

// CheckTransition reports whether next is a known status reachable from the current one.
func (p *Product) CheckTransition(next Status) error {
	if !IsValidStatus(next) {
		return ErrInvalidStatus
	}
	if !IsValidTransition(p.status, next) {
		return ErrInvalidStatusTransition
	}
	return nil
}

// CheckRecipient validates the optional new owner of a status change.
// A recipient may only accompany StatusTransferred and must differ from the current owner.
// A transfer without a recipient keeps the current owner.
func (p *Product) CheckRecipient(next Status, transferTo Identity) error {
	if transferTo.IsZero() {
		return nil
	}
	if next != StatusTransferred || transferTo == p.currentOwner {
		return ErrInvalidOwner
	}
	return nil
}

// UpdateStatus moves the product to next and returns the history entry for the change.
// The entry's sequence number is the update count before the change.
func (p *Product) UpdateStatus(caller Identity, next Status, reason Reason, location Location, transferTo Identity, now time.Time) (*StatusHistoryEntry, error) {
	if err := p.CheckTransition(next); err != nil {
		return nil, err
	}
	if _, err := NewReason(string(reason)); err != nil {
		return nil, err
	}
	if _, err := NewLocation(string(location)); err != nil {
		return nil, err
	}
	if err := p.CheckRecipient(next, transferTo); err != nil {
		return nil, err
	}

	previous := p.status
	sequence := p.updateCount

	p.status = next
	p.updateCount++
	p.changes.MarkDirty(FieldCurrentStatus)
	p.changes.MarkDirty(FieldUpdateCount)

	if !transferTo.IsZero() {
		p.currentOwner = transferTo
		p.changes.MarkDirty(FieldCurrentOwner)
	}

	entry := &StatusHistoryEntry{
		ProductID: p.id,
		Sequence:  sequence,
		Status:    next,
		Timestamp: now,
		ChangedBy: caller,
		Reason:    reason,
		Location:  location,
	}

	p.recordEvent(&ProductStatusUpdatedEvent{
		ProductID: p.id,
		ChangedBy: caller,
		From:      previous,
		To:        next,
		Sequence:  sequence,
		NewOwner:  transferTo,
		Reason:    reason,
		Location:  location,
		UpdatedAt: now,
	})

	return entry, nil
}

// IsTerminal reports whether the product can no longer change status.
func (p *Product) IsTerminal() bool {
	return p.status.IsTerminal()
}

// MarkPersisted clears creation and change state after a successful commit.
func (p *Product) MarkPersisted() {
	p.isNew = false
	p.changes.Clear()
}

// recordEvent adds a domain event to the list of events.
func (p *Product) recordEvent(event DomainEvent) {
	p.events = append(p.events, event)
}

// ClearEvents clears all recorded domain events.
func (p *Product) ClearEvents() {
	p.events = nil
}
