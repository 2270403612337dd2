package helpers

import (
	"encoding/json"
	"net/http"

	"devconnector/internal/models"
)

type Response struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Token      string             `json:"token,omitempty"`
	Count      *int               `json:"count,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(resp)
	if err != nil {
		return
	}
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Response{Success: true, Data: data})
}

// Token: ответ с токеном сессии для клиентов без cookie.
func Token(w http.ResponseWriter, status int, token string) {
	write(w, status, Response{Success: true, Token: token})
}

// List: ответ для списков: данные, их количество на странице и соседние страницы.
func List(w http.ResponseWriter, data interface{}, count int, pagination models.Pagination) {
	write(w, http.StatusOK, Response{Success: true, Data: data, Count: &count, Pagination: &pagination})
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, Response{Success: false, Error: errMsg})
}
