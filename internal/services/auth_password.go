package services

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/utils"
	"devconnector/internal/utils/helpers"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const resetPasswordSubject = "Reset Password"

// RequestPasswordReset выставляет новый токен сброса и отправляет ссылку linkBase/<raw>.
// Если письмо не ушло, токен снимается до возврата ошибки.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, linkBase string) (err error) {
	log := logger.WithCtx(ctx)
	email = strings.TrimSpace(email)
	log.Info("Запрос на сброс пароля (service)", zap.String("email", email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Пользователь для сброса не найден (service)", zap.String("email", email))
			return errorf(ErrAccountNotFound, "User Not Found with the given email")
		}
		return fmt.Errorf("find user by email: %w", err)
	}

	raw, hash, err := utils.NewResetToken()
	if err != nil {
		log.Error("Ошибка генерации токена сброса (service)", zap.Error(err))
		return err
	}

	// Повторный запрос просто перезаписывает незавершённый токен.
	expiresAt := s.cfg.Now().Add(s.cfg.ResetWindow)
	if err := s.users.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		log.Error("Ошибка сохранения токена сброса (service)", zap.Error(err))
		return fmt.Errorf("save reset token: %w", err)
	}

	dispatched := false
	defer func() {
		if dispatched {
			return
		}
		// Откат пишем даже если исходный ctx уже отменён.
		if rbErr := s.users.ClearResetToken(context.WithoutCancel(ctx), user.ID, hash); rbErr != nil {
			log.Error("Не удалось откатить токен сброса (service)", zap.Error(rbErr))
			err = errors.Join(err, fmt.Errorf("rollback reset token: %w", rbErr))
		}
	}()

	link := strings.TrimRight(linkBase, "/") + "/" + raw
	body := helpers.BuildResetPasswordHTML(user.Name, link, s.cfg.ResetWindow)
	if sendErr := s.mailer.Send(ctx, user.Email, resetPasswordSubject, body); sendErr != nil {
		log.Error("Ошибка отправки письма для сброса пароля (service)",
			zap.String("user_id", user.ID.String()),
			zap.Error(sendErr),
		)
		return ErrNotificationDeliveryFailed
	}
	dispatched = true

	log.Info("Письмо для сброса пароля отправлено (service)",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// ResetPassword меняет пароль по действующему токену и сразу выдаёт сессию.
func (s *AuthService) ResetPassword(ctx context.Context, raw, newPassword string) (*Session, *models.User, error) {
	log := logger.WithCtx(ctx)
	log.Info("Попытка сброса пароля по токену (service)")

	if raw == "" {
		return nil, nil, ErrInvalidOrExpiredToken
	}

	if err := validatePassword(newPassword); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		log.Error("Ошибка хеширования пароля (service)", zap.Error(err))
		return nil, nil, err
	}

	user, err := s.users.ConsumeResetToken(ctx, utils.HashResetToken(raw), s.cfg.Now(), hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Неверный или просроченный токен сброса (service)")
			return nil, nil, ErrInvalidOrExpiredToken
		}
		log.Error("Ошибка сохранения нового пароля (service)", zap.Error(err))
		return nil, nil, fmt.Errorf("consume reset token: %w", err)
	}

	session, err := s.IssueSession(user)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Пароль сброшен (service)", zap.String("user_id", user.ID.String()))
	return session, user, nil
}

// UpdatePassword меняет пароль авторизованного пользователя после проверки текущего.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) (*Session, error) {
	log := logger.WithCtx(ctx)
	log.Info("Смена пароля (service)")

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	if !utils.CheckPasswordHash(current, user.PasswordHash) {
		log.Warn("Текущий пароль не совпал (service)")
		return nil, errorf(ErrInvalidCredentials, "Password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		log.Error("Ошибка хеширования пароля (service)", zap.Error(err))
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		log.Error("Ошибка сохранения пароля (service)", zap.Error(err))
		return nil, fmt.Errorf("update password: %w", err)
	}

	log.Info("Пароль изменён (service)")
	return s.IssueSession(user)
}
