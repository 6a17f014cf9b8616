package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "manufacturer", "distributor", "retailer"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}

	for _, s := range []string{"", "Admin", "owner", "consumer"} {
		_, err := ParseRole(s)
		assert.ErrorIs(t, err, ErrInvalidRole, "role %q", s)
	}
}

func TestRole_IsAssignable(t *testing.T) {
	assert.False(t, RoleAdmin.IsAssignable())
	assert.True(t, RoleManufacturer.IsAssignable())
	assert.True(t, RoleDistributor.IsAssignable())
	assert.True(t, RoleRetailer.IsAssignable())
}

func TestIsAuthorized(t *testing.T) {
	assert.True(t, IsAuthorized(RoleManufacturer, RoleManufacturer))
	assert.False(t, IsAuthorized(RoleAdmin, RoleManufacturer), "no hierarchy")
	assert.False(t, IsAuthorized("", ""))
}

func TestAssignRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		owner   Identity
		caller  Identity
		target  Identity
		role    Role
		current Role
		wantErr error
	}{
		{name: "grant", owner: "root", caller: "root", target: "acme", role: RoleManufacturer},
		{name: "change role", owner: "root", caller: "root", target: "acme", role: RoleRetailer, current: RoleManufacturer},
		{name: "owner not set", owner: "", caller: "root", target: "acme", role: RoleManufacturer, wantErr: ErrNotAuthorized},
		{name: "caller is not owner", owner: "root", caller: "acme", target: "shop", role: RoleRetailer, wantErr: ErrNotAuthorized},
		{name: "admin not assignable", owner: "root", caller: "root", target: "acme", role: RoleAdmin, wantErr: ErrInvalidRole},
		{name: "target is owner", owner: "root", caller: "root", target: "root", role: RoleRetailer, wantErr: ErrInvalidOwner},
		{name: "empty target", owner: "root", caller: "root", target: "", role: RoleRetailer, wantErr: ErrInvalidOwner},
		{name: "same role", owner: "root", caller: "root", target: "acme", role: RoleManufacturer, current: RoleManufacturer, wantErr: ErrRoleExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignment, event, err := AssignRole(tt.owner, tt.caller, tt.target, tt.role, tt.current, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, assignment)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &RoleAssignment{Identity: tt.target, Role: tt.role, AssignedBy: tt.caller, AssignedAt: now}, assignment)
			assert.Equal(t, tt.current, event.PreviousRole)
			assert.Equal(t, AuditRecord{
				Actor:   tt.caller,
				Action:  ActionAssignRole,
				Subject: tt.target,
				Details: "Role: " + string(tt.role),
			}, event.AuditRecord())
		})
	}
}

func TestOwnerAssignment(t *testing.T) {
	a, err := OwnerAssignment("root", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, a.Role)
	assert.Equal(t, Identity("root"), a.AssignedBy)

	_, err = OwnerAssignment("", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidOwner)
}
