package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uuid.UUID]models.User)}
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrConstraintViolation
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) update(id uuid.UUID, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id uuid.UUID, hash string, exp time.Time) error {
	return m.update(id, func(u *models.User) { u.ResetToken, u.ResetTokenExpiry = &hash, &exp })
}

func (m *memUsers) ClearResetToken(_ context.Context, id uuid.UUID, hash string) error {
	err := m.update(id, func(u *models.User) {
		if u.ResetToken != nil && *u.ResetToken == hash {
			u.ResetToken, u.ResetTokenExpiry = nil, nil
		}
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (m *memUsers) ConsumeResetToken(_ context.Context, hash string, now time.Time, passwordHash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == hash && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken, u.ResetTokenExpiry = nil, nil
			m.users[id] = u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return m.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (m *memUsers) UpdateDetails(_ context.Context, id uuid.UUID, in *models.UpdateDetailsRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	m.users[id] = u
	return &u, nil
}

func (m *memUsers) UpdateAvatar(_ context.Context, id uuid.UUID, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Avatar = avatar
	m.users[id] = u
	return nil
}

func (m *memUsers) List(_ context.Context, page, limit int) ([]*models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	from := (page - 1) * limit
	if from > len(all) {
		from = len(all)
	}
	to := min(from+limit, len(all))
	return all[from:to], len(all), nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type fakeMailer struct {
	err  error
	sent []string
}

func (f *fakeMailer) Send(_ context.Context, _, _, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

type fakeStorage struct {
	keys []string
}

func (f *fakeStorage) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return key, nil
}

type authFixture struct {
	users   *memUsers
	mailer  *fakeMailer
	storage *fakeStorage
	auth    *services.AuthService
	handler *AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		JWTIssuer:           "devconnector",
		TokenTTL:            time.Hour,
		ResetPasswordWindow: 10 * time.Minute,
		BcryptCost:          bcrypt.MinCost,
		SiteURL:             "https://devconnector.test",
		MaxFileUpload:       1000,
	}
	f := &authFixture{users: newMemUsers(), mailer: &fakeMailer{}, storage: &fakeStorage{}}
	f.auth = services.NewAuthService(f.users, f.mailer, services.NewAuthConfig(cfg))
	f.handler = NewAuthHandler(f.auth, services.NewAvatarService(f.users, f.storage, cfg.MaxFileUpload), cfg)
	return f
}

func (f *authFixture) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	_, u, err := f.auth.Register(context.Background(), services.RegisterInput{Name: name, Email: email, Password: "123456"})
	require.NoError(t, err)
	return u
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Token      string             `json:"token"`
	Count      *int               `json:"count"`
	Pagination *models.Pagination `json:"pagination"`
	Error      string             `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var errBoom = errors.New("boom")
