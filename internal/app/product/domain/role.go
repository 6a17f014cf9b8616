package domain

import "time"

// Role is the single capability an identity holds in the registry.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManufacturer Role = "manufacturer"
	RoleDistributor  Role = "distributor"
	RoleRetailer     Role = "retailer"
)

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// IsValid reports whether r is one of the four known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManufacturer, RoleDistributor, RoleRetailer:
		return true
	}
	return false
}

// IsAssignable reports whether r may be granted through AssignRole. Admin is reserved for the owner.
func (r Role) IsAssignable() bool {
	switch r {
	case RoleManufacturer, RoleDistributor, RoleRetailer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// RoleAssignment is one registry row.
type RoleAssignment struct {
	Identity   Identity
	Role       Role
	AssignedBy Identity
	AssignedAt time.Time
}

// IsAuthorized reports whether an identity currently holding assigned satisfies required.
// There is no hierarchy; an identity with no role (zero value) is never authorized.
func IsAuthorized(assigned, required Role) bool {
	return assigned != "" && assigned == required
}

// AssignRole validates a registry write made by caller and returns the new row.
// current is the role target holds today, or the zero Role when it holds none.
func AssignRole(owner, caller, target Identity, role, current Role, now time.Time) (*RoleAssignment, *RoleAssignedEvent, error) {
	if owner.IsZero() || caller != owner {
		return nil, nil, ErrNotAuthorized
	}
	if !role.IsAssignable() {
		return nil, nil, ErrInvalidRole
	}
	if target.IsZero() || target == owner {
		return nil, nil, ErrInvalidOwner
	}
	if current == role {
		return nil, nil, ErrRoleExists
	}

	assignment := &RoleAssignment{
		Identity:   target,
		Role:       role,
		AssignedBy: caller,
		AssignedAt: now,
	}
	event := &RoleAssignedEvent{
		Identity:     target,
		Role:         role,
		PreviousRole: current,
		AssignedBy:   caller,
		AssignedAt:   now,
	}
	return assignment, event, nil
}

// OwnerAssignment is the admin row written once when the ledger is bootstrapped.
func OwnerAssignment(owner Identity, now time.Time) (*RoleAssignment, error) {
	if owner.IsZero() {
		return nil, ErrInvalidOwner
	}
	return &RoleAssignment{
		Identity:   owner,
		Role:       RoleAdmin,
		AssignedBy: owner,
		AssignedAt: now,
	}, nil
}
