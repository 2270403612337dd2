package middleware

import (
	"devconnector/internal/reqctx"
	helpers "devconnector/internal/utils/helpres"
	"fmt"
	"net/http"
)

// OnlyRole ставится после Protect: роль к этому моменту уже в контексте.
func OnlyRole(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := reqctx.GetRole(r.Context())
			if !ok {
				helpers.Error(w, http.StatusForbidden, "Not authorized to access this route")
				return
			}
			if _, found := roleSet[userRole]; !found {
				helpers.Error(w, http.StatusForbidden,
					fmt.Sprintf("User role %s is not authorized to access this route", userRole))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
