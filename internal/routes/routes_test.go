package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnector/internal/config"
	"devconnector/internal/handlers"
	"devconnector/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type tokenAuth map[string]*models.User

func (a tokenAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func newTestRouter() *mux.Router {
	auth := tokenAuth{"user-token": {ID: uuid.New(), Role: models.RoleUser}}
	router := mux.NewRouter()
	InitRoutes(router, auth,
		handlers.NewAuthHandler(nil, nil, &config.Config{}),
		handlers.NewPostHandler(nil),
		handlers.NewProfileHandler(nil, nil),
		"",
	)
	return router
}

func TestRoutes_Access(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"logout is public", http.MethodGet, "/api/v1/auth/logout", "", http.StatusOK},
		{"me needs token", http.MethodGet, "/api/v1/auth/me", "", http.StatusUnauthorized},
		{"create post needs token", http.MethodPost, "/api/v1/post", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/profile/me", "forged", http.StatusUnauthorized},
		{"users are admin only", http.MethodGet, "/api/v1/users", "user-token", http.StatusForbidden},
		{"delete user is admin only", http.MethodDelete, "/api/v1/users/" + uuid.NewString(), "user-token", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRoutes_RequestIDHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
