package middleware

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/reqctx"
	helpers "devconnector/internal/utils/helpres"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// TokenCookie: имя cookie с токеном сессии.
const TokenCookie = "token"

var errNoToken = errors.New("no token")

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect пропускает только запросы с действующим токеном.
// Токен берётся из Authorization: Bearer, иначе из cookie.
func Protect(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := tokenFromRequest(r)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("Protect: отсутствует токен")
				helpers.Error(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("Protect: токен отклонён", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			ctx := reqctx.WithUserID(r.Context(), user.ID)
			ctx = reqctx.WithRole(ctx, user.Role)
			ctx = WithUser(ctx, user)

			logger.WithCtx(ctx).Debug("Protect: токен валиден", zap.String("role", user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); t != "" {
			return t, nil
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" && c.Value != "none" {
		return c.Value, nil
	}
	return "", errNoToken
}
