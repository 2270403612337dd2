package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/repository"

	"github.com/google/uuid"
)

// memUserStore хранит копии записей, как настоящая база.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User

	// skipPrecheck имитирует гонку: FindByEmail не видит уже созданную запись.
	skipPrecheck bool
	clearErr     error

	// beforeConsume вызывается до захвата мьютекса, чтобы тест мог свести вызовы вместе.
	beforeConsume func()
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]models.User)}
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipPrecheck {
		return nil, repository.ErrNotFound
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUserStore) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrConstraintViolation
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *memUserStore) SetResetToken(_ context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetToken, u.ResetTokenExpiry = &tokenHash, &expiresAt
	m.users[id] = u
	return nil
}

func (m *memUserStore) ClearResetToken(_ context.Context, id uuid.UUID, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	u, ok := m.users[id]
	if ok && u.ResetToken != nil && *u.ResetToken == tokenHash {
		u.ResetToken, u.ResetTokenExpiry = nil, nil
		m.users[id] = u
	}
	return nil
}

func (m *memUserStore) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	if m.beforeConsume != nil {
		m.beforeConsume()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == tokenHash && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = passwordHash
			u.ResetToken, u.ResetTokenExpiry = nil, nil
			m.users[id] = u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *memUserStore) UpdateDetails(_ context.Context, id uuid.UUID, in *models.UpdateDetailsRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email == *in.Email {
				return nil, repository.ErrConstraintViolation
			}
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	m.users[id] = u
	return &u, nil
}

func (m *memUserStore) UpdateAvatar(_ context.Context, id uuid.UUID, avatar string) error {
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

func (m *memUserStore) List(_ context.Context, page, limit int) ([]*models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		cp := u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memUserStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserStore) get(id uuid.UUID) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memUserStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	err  error
	sent []sentMail

	// during выполняется посреди отправки, до ответа сервера.
	during func()
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var (
	errSMTPDown   = errors.New("smtp down")
	errClearFailed = errors.New("clear failed")
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func fakeUser(id uuid.UUID) models.User {
	return models.User{ID: id, Name: "Alice", Email: id.String() + "@example.com", Role: models.RoleUser}
}
