package service

import (
	"strings"

	"veggiemarket/internal/domain"
)

// Fixed demo domain suffixes mapping onto the three dashboards.
const (
	buyerSuffix  = "@gmail.com"
	sellerSuffix = "@veggistore.com"
	adminSuffix  = "@ranbidge.com"
)

// ResolveRole derives the dashboard role from an email's domain suffix. It is
// a pure, total function: any input yields exactly one of the four roles. It
// performs no credential verification; that happens in AuthService before
// this rule is consulted.
func ResolveRole(email string) domain.Role {
	switch {
	case strings.HasSuffix(email, buyerSuffix):
		return domain.RoleBuyer
	case strings.HasSuffix(email, sellerSuffix):
		return domain.RoleSeller
	case strings.HasSuffix(email, adminSuffix):
		return domain.RoleAdmin
	default:
		return domain.RoleInvalid
	}
}

// SuffixForRole reports the suffix a signup email must carry for a role.
func SuffixForRole(role domain.Role) (string, bool) {
	switch role {
	case domain.RoleBuyer:
		return buyerSuffix, true
	case domain.RoleSeller:
		return sellerSuffix, true
	case domain.RoleAdmin:
		return adminSuffix, true
	default:
		return "", false
	}
}
