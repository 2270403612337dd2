package services

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, f models.PostFilter) ([]*models.Post, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddLike(ctx context.Context, postID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) error
	Likes(ctx context.Context, postID uuid.UUID) ([]models.Like, error)
	AddComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	Comments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
}

type PostService struct {
	repo PostStore
}

func NewPostService(repo PostStore) *PostService {
	return &PostService{repo: repo}
}

var errPostNotFound = errorf(ErrNotFound, "Post Not Found")

func (s *PostService) List(ctx context.Context, f models.PostFilter) ([]*models.Post, int, error) {
	f.Page, f.Limit = NormalizePage(f.Page, f.Limit)
	posts, total, err := s.repo.List(ctx, f)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения постов (service)", zap.Error(err))
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// Create публикует пост от имени автора: имя и аватар копируются из учётки.
func (s *PostService) Create(ctx context.Context, author *models.User, text string) (*models.Post, error) {
	text = sanitizeText(text)
	if text == "" {
		return nil, errorf(ErrValidation, "Text is required")
	}

	p := &models.Post{
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания поста (service)", zap.Error(err))
		return nil, fmt.Errorf("create post: %w", err)
	}
	logger.WithCtx(ctx).Info("Пост создан (service)", zap.String("post_id", p.ID.String()))
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// Delete удаляет пост. Удалить может только автор.
func (s *PostService) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	p, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		logger.WithCtx(ctx).Warn("Попытка удалить чужой пост (service)", zap.String("post_id", postID.String()))
		return errorf(ErrForbidden, "User not authorized")
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostService) Like(ctx context.Context, userID, postID uuid.UUID) ([]models.Like, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.repo.AddLike(ctx, postID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrConstraintViolation):
			return nil, errorf(ErrNotFound, "Post already liked by this User")
		case errors.Is(err, repository.ErrNotFound):
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("like post: %w", err)
	}
	return s.repo.Likes(ctx, postID)
}

func (s *PostService) Unlike(ctx context.Context, userID, postID uuid.UUID) ([]models.Like, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLike(ctx, postID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errorf(ErrNotFound, "Post hasn't been liked yet by this User")
		}
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	return s.repo.Likes(ctx, postID)
}

func (s *PostService) AddComment(ctx context.Context, author *models.User, postID uuid.UUID, text string) ([]models.Comment, error) {
	text = sanitizeText(text)
	if text == "" {
		return nil, errorf(ErrValidation, "Text is required")
	}
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}

	c := &models.Comment{
		PostID: postID,
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return s.repo.Comments(ctx, postID)
}

// DeleteComment удаляет комментарий. Удалить может только его автор.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}

	c, err := s.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errorf(ErrNotFound, "Comment Not Found")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if c.UserID != userID {
		return nil, errorf(ErrForbidden, "User not authorized")
	}

	if err := s.repo.DeleteComment(ctx, commentID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return s.repo.Comments(ctx, postID)
}

// NormalizePage подставляет страницу и размер по умолчанию и ограничивает размер сверху.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
