package handlers

import (
	"devconnector/internal/logger"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// writeError переводит ошибку сервиса в HTTP-ответ.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	log := logger.WithCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("Ошибка обработки запроса", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		log.Info("Запрос отклонён", zap.Int("status", status), zap.String("reason", msg))
	}
	helpers.Error(w, status, msg)
}

func errorStatus(err error) (int, string) {
	var custom string
	var de *services.Error
	if errors.As(err, &de) {
		custom = de.Msg
	}
	or := func(def string) string {
		if custom != "" {
			return custom
		}
		return def
	}

	switch {
	// Проверяется первой: при сбое отката она идёт вместе с ошибкой хранилища.
	case errors.Is(err, services.ErrNotificationDeliveryFailed):
		return http.StatusInternalServerError, "Sending Reset Password Email Failed"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, or("Invalid request")
	case errors.Is(err, services.ErrDuplicateAccount):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, or("Invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized to access this route"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusUnauthorized, or("User not authorized")
	case errors.Is(err, services.ErrAccountNotFound):
		return http.StatusNotFound, or("User not found")
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, or("Resource not found")
	case errors.Is(err, services.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "Invalid token"
	default:
		return http.StatusInternalServerError, "Server Error"
	}
}
