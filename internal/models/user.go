package models

// Roles carried in the JWT role claim. Accounts live in a separate
// identity service; this backend only trusts the signed claims.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
	RoleUser   = "user"
)
