package auth

// UserClaims identifies the operator behind an admin request
type UserClaims interface {
	UserID() string
	Role() string
	Source() string
}

const RoleAdmin = "admin"

type JWTClaims struct {
	Subject   string
	RoleValue string
	TokenID   string
}

func (c *JWTClaims) UserID() string { return c.Subject }
func (c *JWTClaims) Role() string   { return c.RoleValue }
func (c *JWTClaims) Source() string { return "JWT" }

// IsAdmin reports whether the claims grant access to admin endpoints
func IsAdmin(c UserClaims) bool {
	return c != nil && c.Role() == RoleAdmin
}
