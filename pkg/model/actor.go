package model

const (
	RoleAdmin    = "admin"
	RoleOwner    = "owner"
	RoleCustomer = "customer"
)

// Actor is the authenticated caller as asserted by the gateway.
type Actor struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOwner, RoleCustomer:
		return true
	}
	return false
}
