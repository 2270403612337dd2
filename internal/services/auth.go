package services

import (
	"context"
	"devconnector/internal/config"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/utils"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	defaultAvatar     = "no-photo.jpg"
)

// UserStore: хранилище учётных записей.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID, tokenHash string) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateDetails(ctx context.Context, id uuid.UUID, input *models.UpdateDetailsRequest) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]*models.User, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Mailer: отправка письма. Ошибка означает, что письмо не ушло.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AuthConfig: всё, что сервису нужно из конфигурации. Now подменяется в тестах.
type AuthConfig struct {
	Secret      string
	Issuer      string
	TokenTTL    time.Duration
	ResetWindow time.Duration
	BcryptCost  int
	Now         func() time.Time
}

func NewAuthConfig(cfg *config.Config) AuthConfig {
	return AuthConfig{
		Secret:      cfg.JWTSecret,
		Issuer:      cfg.JWTIssuer,
		TokenTTL:    cfg.TokenTTL,
		ResetWindow: cfg.ResetPasswordWindow,
		BcryptCost:  cfg.BcryptCost,
		Now:         time.Now,
	}
}

// Session: выданный токен и момент его истечения.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users  UserStore
	mailer Mailer
	cfg    AuthConfig

	// Хеш-заглушка для входа с несуществующим email.
	dummyHash string
}

func NewAuthService(users UserStore, mailer Mailer, cfg AuthConfig) *AuthService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	dummy, err := utils.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		logger.Log.Error("Не удалось подготовить хеш-заглушку (service)", zap.Int("cost", cfg.BcryptCost), zap.Error(err))
	}
	return &AuthService{users: users, mailer: mailer, cfg: cfg, dummyHash: dummy}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, *models.User, error) {
	log := logger.WithCtx(ctx)
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	log.Info("Регистрация пользователя (service)", zap.String("email", email))

	if name == "" {
		return nil, nil, errorf(ErrValidation, "Please add a name")
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, nil, err
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	// Администраторов создаёт только сидер.
	if role != models.RoleUser {
		return nil, nil, errorf(ErrValidation, "role %q is not allowed", role)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		log.Warn("Email уже зарегистрирован (service)", zap.String("email", email))
		return nil, nil, ErrDuplicateAccount
	case !errors.Is(err, repository.ErrNotFound):
		log.Error("Ошибка проверки email (service)", zap.Error(err))
		return nil, nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		log.Error("Ошибка хеширования пароля (service)", zap.Error(err))
		return nil, nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Avatar:       defaultAvatar,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Параллельная регистрация с тем же email упирается в уникальный индекс.
		if errors.Is(err, repository.ErrConstraintViolation) {
			log.Warn("Гонка регистрации, email уже занят (service)", zap.String("email", email))
			return nil, nil, ErrDuplicateAccount
		}
		log.Error("Ошибка создания пользователя (service)", zap.Error(err))
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Пользователь зарегистрирован (service)", zap.String("user_id", user.ID.String()))
	return session, user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, *models.User, error) {
	log := logger.WithCtx(ctx)
	email = strings.TrimSpace(email)
	log.Info("Попытка входа (service)", zap.String("email", email))

	if email == "" || password == "" {
		return nil, nil, errorf(ErrValidation, "Email & Password Required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("Ошибка поиска пользователя (service)", zap.Error(err))
			return nil, nil, fmt.Errorf("find user by email: %w", err)
		}
		// Сравнение всё равно выполняется, чтобы время ответа не выдавало наличие email.
		utils.CheckPasswordHash(password, s.dummyHash)
		log.Warn("Пользователь не найден (service)", zap.String("email", email))
		return nil, nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		log.Warn("Неверный пароль (service)", zap.String("user_id", user.ID.String()))
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Вход выполнен (service)", zap.String("user_id", user.ID.String()))
	return session, user, nil
}

// IssueSession подписывает новый токен. Ничего не сохраняет.
func (s *AuthService) IssueSession(user *models.User) (*Session, error) {
	token, exp, err := utils.GenerateToken(s.cfg.Secret, s.cfg.Issuer, user.ID, s.cfg.Now(), s.cfg.TokenTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена (service)", zap.Error(err))
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

// ParseSession возвращает id владельца токена. Любая проблема с токеном: ErrUnauthorized.
func (s *AuthService) ParseSession(token string) (uuid.UUID, error) {
	id, err := utils.ParseToken(s.cfg.Secret, s.cfg.Issuer, token, s.cfg.Now())
	if err != nil {
		logger.Log.Debug("Токен отклонён (service)", zap.Error(err))
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// Authenticate проверяет токен и загружает пользователя. Используется middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.ParseSession(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *AuthService) GetMe(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка получения пользователя (service)", zap.Error(err))
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func (s *AuthService) UpdateDetails(ctx context.Context, id uuid.UUID, input *models.UpdateDetailsRequest) (*models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Обновление данных пользователя (service)")

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errorf(ErrValidation, "Please add a name")
		}
		input.Name = &name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		input.Email = &email
	}

	user, err := s.users.UpdateDetails(ctx, id, input)
	switch {
	case errors.Is(err, repository.ErrConstraintViolation):
		return nil, ErrDuplicateAccount
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrAccountNotFound
	case err != nil:
		log.Error("Ошибка обновления пользователя (service)", zap.Error(err))
		return nil, fmt.Errorf("update user details: %w", err)
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	page, limit = NormalizePage(page, limit)
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения пользователей (service)", zap.Error(err))
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	logger.WithCtx(ctx).Info("Удаление пользователя (service)", zap.String("target_id", id.String()))
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errorf(ErrValidation, "Please add an email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errorf(ErrValidation, "Please add a valid email")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errorf(ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	return nil
}
