package auth

import (
	"context"

	"github.com/frahmantamala/smartsupply/internal/user"
)

// UserFromContext returns the user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	return user.FromContext(ctx)
}

func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return user.WithContext(ctx, u)
}
