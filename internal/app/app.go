package app

import (
	"context"
	"devconnector/internal/config"
	"devconnector/internal/db"
	"devconnector/internal/handlers"
	"devconnector/internal/logger"
	"devconnector/internal/repository"
	"devconnector/internal/routes"
	"devconnector/internal/services"
	"devconnector/internal/storage"
	"fmt"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App: собранный роутер и ресурсы, которые надо закрыть при остановке.
type App struct {
	Router *mux.Router
	Pool   *pgxpool.Pool
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Log.Info("Подключение к БД установлено", zap.String("dsn", cfg.GetDSNSafe()))

	if err := db.RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	files, err := storage.New(ctx, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	postRepo := repository.NewPostRepository(conn)
	profileRepo := repository.NewProfileRepository(conn)

	// Сервисы
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, emailService, services.NewAuthConfig(cfg))
	avatarService := services.NewAvatarService(userRepo, files, cfg.MaxFileUpload)
	postService := services.NewPostService(postRepo)
	profileService := services.NewProfileService(profileRepo)
	githubService := services.NewGithubService(cfg)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, avatarService, cfg)
	postHandler := handlers.NewPostHandler(postService)
	profileHandler := handlers.NewProfileHandler(profileService, githubService)

	uploadDir := ""
	if cfg.S3Bucket == "" {
		uploadDir = cfg.FileUploadPath
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authService, authHandler, postHandler, profileHandler, uploadDir)

	return &App{Router: router, Pool: conn}, nil
}
