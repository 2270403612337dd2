package middleware

import (
	"context"
	"devconnector/internal/models"
)

type ctxKey string

const contextUser ctxKey = "user"

// WithUser кладёт в контекст пользователя, загруженного по токену.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, contextUser, u)
}

func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(contextUser).(*models.User)
	return u, ok && u != nil
}
