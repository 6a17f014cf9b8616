package domain

import "sort"

// ChangeTracker records which columns of an aggregate changed since it was loaded,
// so storage can write only those.
type ChangeTracker struct {
	dirty map[string]struct{}
}

// NewChangeTracker creates an empty ChangeTracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{dirty: make(map[string]struct{})}
}

// MarkDirty marks a field as modified.
func (ct *ChangeTracker) MarkDirty(field string) {
	ct.dirty[field] = struct{}{}
}

// Dirty reports whether field has been modified.
func (ct *ChangeTracker) Dirty(field string) bool {
	_, ok := ct.dirty[field]
	return ok
}

// Clear forgets all modifications.
func (ct *ChangeTracker) Clear() {
	ct.dirty = make(map[string]struct{})
}

// HasChanges returns true if any field has been modified.
func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.dirty) > 0
}

// DirtyFields returns the modified field names in sorted order.
func (ct *ChangeTracker) DirtyFields() []string {
	fields := make([]string, 0, len(ct.dirty))
	for field := range ct.dirty {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
