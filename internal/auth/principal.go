package auth

import (
	"context"

	"boutique-be/internal/utils"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Principal is the authenticated caller. Handlers receive it as an
// explicit argument instead of reading request-scoped state.
type Principal struct {
	UserID uint
	Email  string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether p may read a resource owned by ownerID.
func (p Principal) CanAccess(ownerID uint) bool {
	return p.IsAdmin() || p.UserID == ownerID
}

// PrincipalFrom reads the principal stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok || id == 0 {
		return Principal{}, false
	}
	return Principal{
		UserID: id,
		Email:  utils.GetUserEmailFromContext(ctx),
		Role:   Role(utils.GetUserRoleFromContext(ctx)),
	}, true
}
