package shared

// Well-known role names. These match the `name` column of the roles table
// seeded at bootstrap; route guards reference them instead of raw literals.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleEditor   = "editor"
)
