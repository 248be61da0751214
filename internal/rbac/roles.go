package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleBuyer      = "buyer"
	RoleSeller     = "seller"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsAdmin(role string) bool { return role == RoleAdmin || role == RoleSuperAdmin }
