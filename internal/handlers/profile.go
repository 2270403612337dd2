package handlers

import (
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	githubService  *services.GithubService
}

func NewProfileHandler(profileService *services.ProfileService, githubService *services.GithubService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, githubService: githubService}
}

// ListProfiles godoc
// @Summary Список профилей разработчиков
// @Tags profiles
// @Produce json
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы (до 100)"
// @Param sort query string false "Поле сортировки, '-' для убывания (created_at, status, company, location)"
// @Param status query string false "Статус"
// @Param location query string false "Часть названия города"
// @Param skills query string false "Навыки через запятую, достаточно одного"
// @Success 200 {object} helpers.Response{data=[]models.Profile}
// @Router /profile [get]
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pageQuery(r)

	profiles, total, err := h.profileService.List(r.Context(), models.ProfileFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Location: strings.TrimSpace(q.Get("location")),
		Skills:   splitList(q.Get("skills")),
		Page:     page,
		Limit:    limit,
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.List(w, profiles, len(profiles), models.NewPagination(page, limit, total))
}

// MyProfile godoc
// @Summary Профиль текущего пользователя
// @Tags profiles
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 404 {object} helpers.Response
// @Router /profile/me [get]
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	profile, err := h.profileService.GetByUser(r.Context(), current.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// ProfileByUser godoc
// @Summary Профиль пользователя по его ID
// @Tags profiles
// @Produce json
// @Param user_id path string true "ID пользователя"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 404 {object} helpers.Response
// @Router /profile/user/{user_id} [get]
func (h *ProfileHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "user_id", "Profile not found")
	if !ok {
		return
	}

	profile, err := h.profileService.GetByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// UpsertProfile godoc
// @Summary Создать или обновить свой профиль
// @Tags profiles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body models.ProfileRequest true "Поля профиля"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 400 {object} helpers.Response
// @Router /profile [post]
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req models.ProfileRequest
	if !decodeJSON(w, r, &req, "UpsertProfile") {
		return
	}

	profile, err := h.profileService.Upsert(r.Context(), current.ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// DeleteProfile godoc
// @Summary Удалить свой профиль
// @Tags profiles
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.Response
// @Router /profile [delete]
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	if err := h.profileService.Delete(r.Context(), current.ID); err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]any{})
}

// AddExperience godoc
// @Summary Добавить место работы
// @Tags profiles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body models.ExperienceRequest true "Опыт; даты в формате YYYY-MM-DD"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response "Профиля нет"
// @Router /profile/experience [put]
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req models.ExperienceRequest
	if !decodeJSON(w, r, &req, "AddExperience") {
		return
	}

	profile, err := h.profileService.AddExperience(r.Context(), current.ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// DeleteExperience godoc
// @Summary Удалить место работы
// @Tags profiles
// @Produce json
// @Security ApiKeyAuth
// @Param exp_id path string true "ID записи"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 404 {object} helpers.Response
// @Router /profile/experience/{exp_id} [delete]
func (h *ProfileHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	expID, ok := pathUUID(w, r, "exp_id", "Experience not found")
	if !ok {
		return
	}

	profile, err := h.profileService.DeleteExperience(r.Context(), current.ID, expID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// AddEducation godoc
// @Summary Добавить образование
// @Tags profiles
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body models.EducationRequest true "Образование; даты в формате YYYY-MM-DD"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 400 {object} helpers.Response
// @Failure 404 {object} helpers.Response "Профиля нет"
// @Router /profile/education [put]
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req models.EducationRequest
	if !decodeJSON(w, r, &req, "AddEducation") {
		return
	}

	profile, err := h.profileService.AddEducation(r.Context(), current.ID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// DeleteEducation godoc
// @Summary Удалить запись об образовании
// @Tags profiles
// @Produce json
// @Security ApiKeyAuth
// @Param edu_id path string true "ID записи"
// @Success 200 {object} helpers.Response{data=models.Profile}
// @Failure 404 {object} helpers.Response
// @Router /profile/education/{edu_id} [delete]
func (h *ProfileHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}
	eduID, ok := pathUUID(w, r, "edu_id", "Education not found")
	if !ok {
		return
	}

	profile, err := h.profileService.DeleteEducation(r.Context(), current.ID, eduID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// GithubRepos godoc
// @Summary Последние репозитории пользователя GitHub
// @Tags profiles
// @Produce json
// @Param username path string true "Логин на GitHub"
// @Success 200 {object} helpers.Response "Ответ GitHub как есть"
// @Failure 404 {object} helpers.Response
// @Router /profile/github/{username} [get]
func (h *ProfileHandler) GithubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.githubService.Repos(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, repos)
}
