package handlers

import (
	"devconnector/internal/config"
	"devconnector/internal/logger"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Запас на служебные части multipart поверх самого файла.
const multipartOverhead = 1 << 20

type AuthHandler struct {
	authService   *services.AuthService
	avatarService *services.AvatarService

	secureCookie bool
	siteURL      string
	maxUpload    int64
}

func NewAuthHandler(authService *services.AuthService, avatarService *services.AvatarService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		avatarService: avatarService,
		secureCookie:  cfg.IsProduction(),
		siteURL:       cfg.SiteURL,
		maxUpload:     cfg.MaxFileUpload,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sendSession ставит cookie с токеном и отдаёт тот же токен в теле.
func (h *AuthHandler) sendSession(w http.ResponseWriter, status int, s *services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	helpers.Token(w, status, s.Token)
}

// Register godoc
// @Summary Регистрация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 200 {object} helpers.Response "Токен сессии"
// @Failure 400 {object} helpers.Response "Ошибка валидации или email занят"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req, "Register") {
		return
	}
	logger.WithCtx(r.Context()).Info("Регистрация пользователя", zap.String("email", req.Email))

	session, _, err := h.authService.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sendSession(w, http.StatusOK, session)
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} helpers.Response "Токен сессии"
// @Failure 400 {object} helpers.Response "Не указан email или пароль"
// @Failure 401 {object} helpers.Response "Неверный email или пароль"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req, "Login") {
		return
	}

	session, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sendSession(w, http.StatusOK, session)
}

// Logout godoc
// @Summary Выход: затирает cookie с токеном
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.Response
// @Router /auth/logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	helpers.JSON(w, http.StatusOK, map[string]any{})
}

// GetMe godoc
// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.Response{data=models.User}
// @Failure 401 {object} helpers.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	user, err := h.authService.GetMe(r.Context(), current.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// UpdateDetails godoc
// @Summary Изменить имя и/или email
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body models.UpdateDetailsRequest true "Новые значения"
// @Success 200 {object} helpers.Response{data=models.User}
// @Failure 400 {object} helpers.Response
// @Router /auth/updatedetails [put]
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req models.UpdateDetailsRequest
	if !decodeJSON(w, r, &req, "UpdateDetails") {
		return
	}

	user, err := h.authService.UpdateDetails(r.Context(), current.ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, user)
}

// UploadAvatar godoc
// @Summary Загрузить аватар
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param avatar formData file true "Изображение"
// @Success 200 {object} helpers.Response{data=string} "Ссылка на аватар"
// @Failure 400 {object} helpers.Response
// @Router /auth/avatar [put]
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			log.Warn("Аватар превышает лимит", zap.Int64("limit", h.maxUpload))
			helpers.Error(w, http.StatusBadRequest, fmt.Sprintf("Image size must be less than %d", h.maxUpload))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			log.Warn("Ошибка разбора multipart", zap.Error(err))
			helpers.Error(w, http.StatusBadRequest, "No file uploaded")
			return
		}
	}

	var upload *services.Upload
	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		upload = &services.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		log.Warn("Не удалось прочитать файл аватара", zap.Error(err))
	}

	ref, err := h.avatarService.Upload(r.Context(), current.ID, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, ref)
}

// ListUsers godoc
// @Summary Список пользователей (админ)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} helpers.Response{data=[]models.User}
// @Failure 403 {object} helpers.Response
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageQuery(r)

	users, total, err := h.authService.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, users, len(users), models.NewPagination(page, limit, total))
}

// DeleteUser godoc
// @Summary Удалить пользователя (админ)
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /users/{id} [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "User not found")
	if !ok {
		return
	}

	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Пользователь удалён администратором", zap.String("target_id", id.String()))
	helpers.JSON(w, http.StatusOK, map[string]any{})
}
