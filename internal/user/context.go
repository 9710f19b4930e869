package user

import "context"

type ctxKey string

const contextUserKey ctxKey = "user"

func WithContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

// FromContext returns the user stored by the authentication middleware.
func FromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok && u != nil
}
