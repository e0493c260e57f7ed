package auth

import (
	"context"

	"github.com/ivankudzin/paquera/internal/domain/enums"
)

type identityKey struct{}

// Identity is the authenticated caller. UserID is the external account id
// that owns at most one profile.
type Identity struct {
	UserID int64
	SID    string
	Role   enums.Role
}

func (i Identity) HasRole(roles ...enums.Role) bool {
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || identity.UserID <= 0 {
		return Identity{}, false
	}
	return identity, true
}
