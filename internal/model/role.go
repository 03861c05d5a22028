package model

// Role codes
const (
	RoleManager        = "manager"
	RoleInventoryClerk = "inventory_clerk"
	RoleAttendant      = "attendant"
)

// Privilege codes checked by the route guards.
const (
	PrivPulloutView    = "pullout:view"
	PrivPulloutCreate  = "pullout:create"
	PrivPulloutApprove = "pullout:approve"
	PrivPulloutReturn  = "pullout:return"
	PrivPulloutDelete  = "pullout:delete"

	PrivSupplyView   = "supply:view"
	PrivSupplyCreate = "supply:create"
	PrivSupplyUpdate = "supply:update"
	PrivSupplyAdjust = "supply:adjust"

	PrivDashboardView = "dashboard:view"
)

// AllPrivileges is the full list, granted to managers.
var AllPrivileges = []string{
	PrivPulloutView, PrivPulloutCreate, PrivPulloutApprove, PrivPulloutReturn, PrivPulloutDelete,
	PrivSupplyView, PrivSupplyCreate, PrivSupplyUpdate, PrivSupplyAdjust,
	PrivDashboardView,
}

var rolePrivileges = map[string][]string{
	RoleManager: AllPrivileges,
	RoleInventoryClerk: {
		PrivPulloutView, PrivPulloutCreate, PrivPulloutApprove, PrivPulloutReturn,
		PrivSupplyView, PrivSupplyCreate, PrivSupplyUpdate, PrivSupplyAdjust,
		PrivDashboardView,
	},
	RoleAttendant: {
		PrivPulloutView, PrivPulloutCreate,
		PrivSupplyView,
	},
}

// PrivilegesForRole returns a copy of the privilege list for role.
// Unknown roles get nothing.
func PrivilegesForRole(role string) []string {
	privs := rolePrivileges[role]
	out := make([]string, len(privs))
	copy(out, privs)
	return out
}
