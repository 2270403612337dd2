package handlers

import (
	"devconnector/internal/logger"
	"devconnector/internal/middleware"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const resetPasswordPath = "/api/v1/auth/resetpassword"

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ForgotPassword godoc
// @Summary Запрос сброса пароля
// @Description Отправляет на email ссылку с одноразовым токеном сброса.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body forgotPasswordRequest true "Email пользователя"
// @Success 200 {object} helpers.Response{data=string}
// @Failure 404 {object} helpers.Response "Пользователь не найден"
// @Failure 500 {object} helpers.Response "Письмо не отправлено"
// @Router /auth/forgotpassword [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req, "ForgotPassword") {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email, h.resetLinkBase(r)); err != nil {
		writeError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, "Reset Password Email sent")
}

// resetLinkBase: адрес, к которому в письме дописывается токен.
func (h *AuthHandler) resetLinkBase(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL + resetPasswordPath
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host + resetPasswordPath
}

// ResetPassword godoc
// @Summary Сброс пароля по токену из письма
// @Tags auth
// @Accept json
// @Produce json
// @Param resettoken path string true "Токен сброса"
// @Param input body resetPasswordRequest true "Новый пароль"
// @Success 200 {object} helpers.Response "Токен новой сессии"
// @Failure 400 {object} helpers.Response "Недействительный токен"
// @Router /auth/resetpassword/{resettoken} [put]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req, "ResetPassword") {
		return
	}

	session, user, err := h.authService.ResetPassword(r.Context(), mux.Vars(r)["resettoken"], req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Пароль сброшен", zap.String("user_id", user.ID.String()))
	h.sendSession(w, http.StatusOK, session)
}

// UpdatePassword godoc
// @Summary Смена пароля с проверкой текущего
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param input body updatePasswordRequest true "Текущий и новый пароль"
// @Success 200 {object} helpers.Response "Токен новой сессии"
// @Failure 401 {object} helpers.Response "Текущий пароль неверен"
// @Router /auth/updatepassword [put]
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, r, services.ErrUnauthorized)
		return
	}

	var req updatePasswordRequest
	if !decodeJSON(w, r, &req, "UpdatePassword") {
		return
	}

	session, err := h.authService.UpdatePassword(r.Context(), current.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sendSession(w, http.StatusOK, session)
}
