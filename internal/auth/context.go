package auth

import (
	"context"

	"github.com/armahof/supportdesk/internal/domain"
)

type contextKey string

const userKey contextKey = "current_user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.AdminUser) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user, nil when not logged in.
func UserFromContext(ctx context.Context) *domain.AdminUser {
	user, _ := ctx.Value(userKey).(*domain.AdminUser)
	return user
}
