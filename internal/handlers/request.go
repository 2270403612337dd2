package handlers

import (
	"devconnector/internal/logger"
	"devconnector/internal/services"
	helpers "devconnector/internal/utils/helpres"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// decodeJSON читает тело запроса; при ошибке сам отвечает 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, where string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в "+where, zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// pathUUID достаёт uuid из переменной маршрута; при ошибке сам отвечает.
func pathUUID(w http.ResponseWriter, r *http.Request, name, notFoundMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Некорректный идентификатор в пути", zap.String("param", name))
		helpers.Error(w, http.StatusNotFound, notFoundMsg)
		return uuid.Nil, false
	}
	return id, true
}

// pageQuery читает page и limit; мусор и отсутствие дают значения по умолчанию.
func pageQuery(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return services.NormalizePage(page, limit)
}

// splitList разбирает "a, b,c" в срез без пустых элементов.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
