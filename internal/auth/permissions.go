package auth

// Permission is a fine-grained capability within a workspace.
type Permission string

const (
	PermViewTransactions   Permission = "view_transactions"
	PermCreateTransactions Permission = "create_transactions"
	PermEditTransactions   Permission = "edit_transactions"
	PermDeleteTransactions Permission = "delete_transactions"
	PermManageBudgets      Permission = "manage_budgets"
	PermManageGoals        Permission = "manage_goals"
	PermViewReports        Permission = "view_reports"
	PermManageMembers      Permission = "manage_members"
	PermManageWorkspace    Permission = "manage_workspace"
)

// PermissionsForRole maps a role to its permission set. The switch is
// exhaustive over the defined roles; sets are ordered by privilege so that
// owner ⊇ admin ⊇ editor ⊇ viewer, with manage_workspace held by owner alone.
func PermissionsForRole(role Role) map[Permission]struct{} {
	switch role {
	case RoleOwner:
		return permissionSet(
			PermViewTransactions, PermCreateTransactions, PermEditTransactions,
			PermDeleteTransactions, PermManageBudgets, PermManageGoals,
			PermViewReports, PermManageMembers, PermManageWorkspace,
		)
	case RoleAdmin:
		return permissionSet(
			PermViewTransactions, PermCreateTransactions, PermEditTransactions,
			PermDeleteTransactions, PermManageBudgets, PermManageGoals,
			PermViewReports, PermManageMembers,
		)
	case RoleEditor:
		return permissionSet(
			PermViewTransactions, PermCreateTransactions, PermEditTransactions,
			PermManageBudgets, PermManageGoals, PermViewReports,
		)
	case RoleViewer:
		return permissionSet(PermViewTransactions, PermViewReports)
	default:
		return map[Permission]struct{}{}
	}
}

// RoleHasPermission is a pure, side-effect-free lookup.
func RoleHasPermission(role Role, perm Permission) bool {
	_, ok := PermissionsForRole(role)[perm]
	return ok
}

func permissionSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}
