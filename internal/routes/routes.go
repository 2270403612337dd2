package routes

import (
	"devconnector/internal/handlers"
	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

func InitRoutes(
	router *mux.Router,
	auth middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	postHandler *handlers.PostHandler,
	profileHandler *handlers.ProfileHandler,
	uploadDir string,
) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	if uploadDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodGet)
	api.HandleFunc("/auth/forgotpassword", authHandler.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/resetpassword/{resettoken}", authHandler.ResetPassword).Methods(http.MethodPut)

	api.HandleFunc("/post", postHandler.List).Methods(http.MethodGet)

	api.HandleFunc("/profile", profileHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/profile/user/{user_id}", profileHandler.ByUser).Methods(http.MethodGet)
	api.HandleFunc("/profile/github/{username}", profileHandler.GithubRepos).Methods(http.MethodGet)

	// --- Защищённые токеном ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Protect(auth))

	protected.HandleFunc("/auth/me", authHandler.GetMe).Methods(http.MethodGet)
	protected.HandleFunc("/auth/updatepassword", authHandler.UpdatePassword).Methods(http.MethodPut)
	protected.HandleFunc("/auth/updatedetails", authHandler.UpdateDetails).Methods(http.MethodPut)
	protected.HandleFunc("/auth/avatar", authHandler.UploadAvatar).Methods(http.MethodPut)

	protected.HandleFunc("/post", postHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/post/{post_id}", postHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/post/{post_id}", postHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/post/like/{post_id}", postHandler.Like).Methods(http.MethodPut)
	protected.HandleFunc("/post/unlike/{post_id}", postHandler.Unlike).Methods(http.MethodPut)
	protected.HandleFunc("/post/comment/{post_id}", postHandler.AddComment).Methods(http.MethodPost)
	protected.HandleFunc("/post/comment/{post_id}/{comment_id}", postHandler.DeleteComment).Methods(http.MethodDelete)

	protected.HandleFunc("/profile/me", profileHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/profile", profileHandler.Upsert).Methods(http.MethodPost)
	protected.HandleFunc("/profile", profileHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/profile/experience", profileHandler.AddExperience).Methods(http.MethodPut)
	protected.HandleFunc("/profile/experience/{exp_id}", profileHandler.DeleteExperience).Methods(http.MethodDelete)
	protected.HandleFunc("/profile/education", profileHandler.AddEducation).Methods(http.MethodPut)
	protected.HandleFunc("/profile/education/{edu_id}", profileHandler.DeleteEducation).Methods(http.MethodDelete)

	admin := protected.PathPrefix("/users").Subrouter()
	admin.Use(middleware.OnlyRole(models.RoleAdmin))
	admin.HandleFunc("", authHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", authHandler.DeleteUser).Methods(http.MethodDelete)
}
