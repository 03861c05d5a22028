package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrivilegesForRole(t *testing.T) {
	assert.ElementsMatch(t, AllPrivileges, PrivilegesForRole(RoleManager))
	assert.Contains(t, PrivilegesForRole(RoleInventoryClerk), PrivPulloutApprove)
	assert.NotContains(t, PrivilegesForRole(RoleInventoryClerk), PrivPulloutDelete)
	assert.NotContains(t, PrivilegesForRole(RoleAttendant), PrivPulloutApprove)
	assert.Empty(t, PrivilegesForRole("janitor"))
}

func TestPrivilegesForRoleReturnsCopy(t *testing.T) {
	privs := PrivilegesForRole(RoleManager)
	privs[0] = "tampered"
	assert.Equal(t, PrivPulloutView, PrivilegesForRole(RoleManager)[0])
}

func TestUserPassword(t *testing.T) {
	u := &User{Role: RoleAttendant}
	assert.NoError(t, u.SetPassword("s3cret"))
	assert.NotEqual(t, "s3cret", u.Password)
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.HasPrivilege(PrivPulloutCreate))
	assert.False(t, u.HasPrivilege(PrivSupplyAdjust))
}
