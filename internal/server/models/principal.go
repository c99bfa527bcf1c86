package models

// Principal is the identity and role decoded from a verified access token.
// It is produced once per request and passed explicitly to services.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
