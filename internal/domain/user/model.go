package user

import (
	"github.com/riskibarqy/pool-league/internal/domain/membership"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Principal is the authenticated actor supplied by the identity service.
type Principal struct {
	UserID string
	Email  string
	Tier   membership.Tier
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
