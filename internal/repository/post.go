package repository

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PostRepository struct {
	db DBTX
}

func NewPostRepository(db DBTX) *PostRepository {
	return &PostRepository{db: db}
}

// Разрешённые поля сортировки: ключ из query -> колонка.
var postSortColumns = map[string]string{
	"created_at": "created_at",
	"date":       "created_at",
	"name":       "name",
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	logger.Log.Info("Создание поста (repo)", zap.String("user_id", p.UserID.String()))
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		p.ID, p.UserID, p.Text, p.Name, p.Avatar,
	).Scan(&p.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка создания поста (repo)", zap.Error(err))
		return mapPgError(err)
	}
	p.Likes = []models.Like{}
	p.Comments = []models.Comment{}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}

	if p.Likes, err = r.Likes(ctx, id); err != nil {
		return nil, err
	}
	if p.Comments, err = r.Comments(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context, f models.PostFilter) ([]*models.Post, int, error) {
	where := sq.And{}
	if f.UserID != nil {
		where = append(where, sq.Eq{"user_id": *f.UserID})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("posts").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err)
	}

	query, args, err := psql.Select("id", "user_id", "text", "name", "avatar", "created_at").
		From("posts").
		Where(where).
		OrderBy(orderBy(f.Sort, postSortColumns, "created_at DESC")).
		Limit(uint64(f.Limit)).
		Offset(offset(f.Page, f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения постов (repo)", zap.Error(err))
		return nil, 0, mapPgError(err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, f.Limit)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	for _, p := range posts {
		if p.Likes, err = r.Likes(ctx, p.ID); err != nil {
			return nil, 0, err
		}
		if p.Comments, err = r.Comments(ctx, p.ID); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Log.Info("Удаление поста (repo)", zap.String("post_id", id.String()))
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike: повторный лайк упирается в первичный ключ (post_id, user_id).
func (r *PostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	return mapPgError(err)
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) Likes(ctx context.Context, postID uuid.UUID) ([]models.Like, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	likes := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

func (r *PostRepository) AddComment(ctx context.Context, c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		c.ID, c.PostID, c.UserID, c.Text, c.Name, c.Avatar,
	).Scan(&c.CreatedAt)
	if err != nil {
		logger.Log.Error("Ошибка добавления комментария (repo)", zap.Error(err))
		return mapPgError(err)
	}
	return nil
}

func (r *PostRepository) GetComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := r.db.QueryRow(ctx, `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE id = $1 AND post_id = $2`, commentID, postID,
	).Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &c, nil
}

func (r *PostRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM post_comments WHERE id = $1`, commentID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) Comments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PostRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM posts`)
	return mapPgError(err)
}
