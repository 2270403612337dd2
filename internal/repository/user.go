package repository

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userColumns = `id, name, email, avatar, role, password_hash, reset_password_token, reset_password_expire, created_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Avatar,
		&u.Role,
		&u.PasswordHash,
		&u.ResetToken,
		&u.ResetTokenExpiry,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.Log.Info("Создание пользователя (repo)", zap.String("email", user.Email))
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
	INSERT INTO users (id, name, email, avatar, role, password_hash)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Avatar,
		user.Role,
		user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.String("email", user.Email), zap.Error(err))
		return mapPgError(err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по email (repo)", zap.String("email", email))
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapPgError(err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (repo)", zap.String("user_id", id.String()))
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	logger.Log.Debug("Сохранение токена сброса (repo)", zap.String("user_id", id.String()))
	query := `
	UPDATE users
	SET reset_password_token = $1,
	    reset_password_expire = $2
	WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, tokenHash, expiresAt, id)
	if err != nil {
		logger.Log.Error("Ошибка сохранения токена сброса (repo)", zap.String("user_id", id.String()), zap.Error(err))
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetToken снимает токен, только если в записи всё ещё tokenHash.
// Более новый токен, выставленный параллельным запросом, остаётся.
func (r *UserRepository) ClearResetToken(ctx context.Context, id uuid.UUID, tokenHash string) error {
	query := `
	UPDATE users
	SET reset_password_token = NULL,
	    reset_password_expire = NULL
	WHERE id = $1
	  AND reset_password_token = $2`
	if _, err := r.db.Exec(ctx, query, id, tokenHash); err != nil {
		logger.Log.Error("Ошибка снятия токена сброса (repo)", zap.String("user_id", id.String()), zap.Error(err))
		return mapPgError(err)
	}
	return nil
}

// ConsumeResetToken одним UPDATE меняет пароль и гасит действующий токен.
// Из двух одновременных вызовов с одним токеном запись получает только один.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	query := `
	UPDATE users
	SET password_hash = $1,
	    reset_password_token = NULL,
	    reset_password_expire = NULL
	WHERE reset_password_token = $2
	  AND reset_password_expire > $3
	RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, passwordHash, tokenHash, now))
	if err != nil {
		return nil, mapPgError(err)
	}
	return u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	logger.Log.Debug("Смена пароля (repo)", zap.String("user_id", id.String()))
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		logger.Log.Error("Ошибка смены пароля (repo)", zap.String("user_id", id.String()), zap.Error(err))
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDetails меняет только переданные поля и возвращает запись после обновления.
func (r *UserRepository) UpdateDetails(ctx context.Context, id uuid.UUID, input *models.UpdateDetailsRequest) (*models.User, error) {
	logger.Log.Info("Обновление пользователя (repo)", zap.String("user_id", id.String()))

	b := psql.Update("users").Where("id = ?", id).Suffix("RETURNING " + userColumns)
	changed := false
	if input.Name != nil {
		b = b.Set("name", *input.Name)
		changed = true
	}
	if input.Email != nil {
		b = b.Set("email", *input.Email)
		changed = true
	}
	if !changed {
		logger.Log.Warn("Нет полей для обновления пользователя (repo)", zap.String("user_id", id.String()))
		return r.FindByID(ctx, id)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		logger.Log.Error("Ошибка обновления пользователя (repo)", zap.Error(err), zap.String("user_id", id.String()))
		return nil, mapPgError(err)
	}
	return u, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET avatar = $1 WHERE id = $2`, avatar, id)
	if err != nil {
		logger.Log.Error("Ошибка обновления аватара (repo)", zap.Error(err), zap.String("user_id", id.String()))
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page, limit int) ([]*models.User, int, error) {
	logger.Log.Info("Получение пользователей (repo)", zap.Int("page", page), zap.Int("limit", limit))

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, mapPgError(err)
	}

	query, args, err := psql.Select(userColumns).From("users").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(offset(page, limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения пользователей (repo)", zap.Error(err))
		return nil, 0, mapPgError(err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Log.Error("Ошибка сканирования пользователя (repo)", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Log.Info("Удаление пользователя (repo)", zap.String("user_id", id.String()))
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users`)
	return mapPgError(err)
}
