package domain

// RoleOwner is the only role allowed to mutate the catalog.
const RoleOwner = "owner"

// OwnerClaims is what a validated session token proves about its bearer.
type OwnerClaims struct {
	Subject string
	Role    string
}
