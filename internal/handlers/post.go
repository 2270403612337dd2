package handlers

import (
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"net/http"

	"github.com/google/uuid"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// ListPosts godoc
// @Summary Лента постов
// @Tags posts
// @Produce json
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы (до 100)"
// @Param sort query string false "Поле сортировки, '-' для убывания (created_at, name)"
// @Param user query string false "Только посты пользователя"
// @Success 200 {object} helpers.Response{data=[]models.Post}
// @Router /post [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageQuery(r)
	f := models.PostFilter{Page: page, Limit: limit, Sort: q.Get("sort")}

	if raw := q.Get("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			helpers.Error(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		f.UserID = &id
	}

	posts, total, err := h.postService.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, posts, len(posts), models.NewPagination(page, limit, total))
}

// CreatePost godoc
// @Summary Опубликовать пост
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body models.PostRequest true "Текст поста"
// @Success 201 {object} helpers.Response{data=models.Post}
// @Failure 400 {object} helpers.Response
// @Router /post [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req models.PostRequest
	if !decodeJSON(w, r, &req, "CreatePost") {
		return
	}

	post, err := h.postService.Create(r.Context(), current, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, post)
}

// GetPost godoc
// @Summary Пост по ID
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Success 200 {object} helpers.Response{data=models.Post}
// @Failure 404 {object} helpers.Response
// @Router /post/{post_id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// DeletePost godoc
// @Summary Удалить свой пост
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Success 200 {object} helpers.Response
// @Failure 401 {object} helpers.Response "Чужой пост"
// @Failure 404 {object} helpers.Response
// @Router /post/{post_id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), current.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]any{})
}

// LikePost godoc
// @Summary Лайкнуть пост
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Success 200 {object} helpers.Response{data=[]models.Like}
// @Failure 404 {object} helpers.Response "Уже лайкнут"
// @Router /post/like/{post_id} [put]
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}

	likes, err := h.postService.Like(r.Context(), current.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, likes)
}

// UnlikePost godoc
// @Summary Снять лайк
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Success 200 {object} helpers.Response{data=[]models.Like}
// @Failure 404 {object} helpers.Response "Лайка не было"
// @Router /post/unlike/{post_id} [put]
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}

	likes, err := h.postService.Unlike(r.Context(), current.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, likes)
}

// AddComment godoc
// @Summary Комментарий к посту
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Param input body models.PostRequest true "Текст комментария"
// @Success 200 {object} helpers.Response{data=[]models.Comment}
// @Failure 404 {object} helpers.Response
// @Router /post/comment/{post_id} [post]
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	id, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}

	var req models.PostRequest
	if !decodeJSON(w, r, &req, "AddComment") {
		return
	}

	comments, err := h.postService.AddComment(r.Context(), current, id, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary Удалить свой комментарий
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param post_id path string true "ID поста"
// @Param comment_id path string true "ID комментария"
// @Success 200 {object} helpers.Response{data=[]models.Comment}
// @Failure 401 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /post/comment/{post_id}/{comment_id} [delete]
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	postID, ok := pathUUID(w, r, "post_id", "Post Not Found")
	if !ok {
		return
	}
	commentID, ok := pathUUID(w, r, "comment_id", "Comment Not Found")
	if !ok {
		return
	}

	comments, err := h.postService.DeleteComment(r.Context(), current.ID, postID, commentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, comments)
}
