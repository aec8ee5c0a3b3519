package model

const (
	RoleOwner      = "owner"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleCashier    = "cashier"
	RoleSuperAdmin = "super_admin"
)

// Actor identifies who performs an operation and on behalf of which garage.
// TenantID is already resolved: a super admin acting on another garage carries
// that garage's id here.
type Actor struct {
	TenantID   string
	UserID     string
	Role       string
	SuperAdmin bool
}

func (a Actor) HasRole(roles ...string) bool {
	if a.SuperAdmin {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// UserRef returns the user id or nil for system actors.
func (a Actor) UserRef() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}
