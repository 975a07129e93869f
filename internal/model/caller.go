package model

// Caller is the identity the gateway injects via the X-User-Id and
// X-User-Role headers. This service never verifies it; the type exists
// so an enforcement point can be added and tested without the gateway.
type Caller struct {
	ID   string
	Role string
}

// Gateway-issued roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// HasRole reports whether the caller carries the given role.
func (c Caller) HasRole(role string) bool {
	return c.Role == role
}
