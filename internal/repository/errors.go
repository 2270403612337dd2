package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound: запись не найдена (или ссылка на несуществующую запись).
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation: нарушен уникальный ключ или check-ограничение.
	ErrConstraintViolation = errors.New("constraint violation")
)

// DBTX: то, что репозиториям нужно от пула. *pgxpool.Pool подходит как есть.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// mapPgError переводит ошибки драйвера в ошибки хранилища.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.CheckViolation:
			return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		case pgerrcode.InvalidTextRepresentation:
			return ErrNotFound
		}
	}
	return err
}

func offset(page, limit int) uint64 {
	if page < 1 {
		page = 1
	}
	return uint64((page - 1) * limit)
}
