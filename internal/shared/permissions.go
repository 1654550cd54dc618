package shared

// Permission strings follow the resource:action convention, lower-case,
// matched exactly. They are never parsed beyond membership tests.
const (
	PermFirmsView = "firms:view"
	PermFirmsEdit = "firms:edit"

	PermRolesView = "roles:view"
	PermRolesEdit = "roles:edit"

	PermMattersRead  = "matters:read"
	PermMattersWrite = "matters:write"

	PermCasesRead  = "cases:read"
	PermCasesWrite = "cases:write"

	PermDocumentsRead  = "documents:read"
	PermDocumentsWrite = "documents:write"

	PermApprovalsView   = "approvals:view"
	PermApprovalsDecide = "approvals:decide"

	PermBillingView = "billing:view"
	PermBillingEdit = "billing:edit"

	PermDraftsUse = "drafts:use"
)

// AllPermissions lists every permission the platform declares.
func AllPermissions() []string {
	return []string{
		PermFirmsView,
		PermFirmsEdit,
		PermRolesView,
		PermRolesEdit,
		PermMattersRead,
		PermMattersWrite,
		PermCasesRead,
		PermCasesWrite,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermApprovalsView,
		PermApprovalsDecide,
		PermBillingView,
		PermBillingEdit,
		PermDraftsUse,
	}
}

// DefaultRoleScopes is the permission bundle granted to the default role
// assigned when a principal first reaches a firm.
func DefaultRoleScopes() []string {
	return []string{
		PermFirmsView,
		PermMattersRead,
		PermMattersWrite,
		PermCasesRead,
		PermCasesWrite,
		PermDocumentsRead,
		PermDocumentsWrite,
		PermBillingView,
		PermDraftsUse,
	}
}
