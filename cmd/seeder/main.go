package main

import (
	"context"
	"devconnector/internal/config"
	"devconnector/internal/db"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/utils"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type userWriter interface {
	Create(ctx context.Context, user *models.User) error
	DeleteAll(ctx context.Context) error
}

type profileWriter interface {
	Upsert(ctx context.Context, p *models.Profile) error
	DeleteAll(ctx context.Context) error
}

type postWriter interface {
	Create(ctx context.Context, p *models.Post) error
	DeleteAll(ctx context.Context) error
}

type seeder struct {
	users      userWriter
	profiles   profileWriter
	posts      postWriter
	bcryptCost int
}

func newSeeder(tx repository.DBTX, bcryptCost int) *seeder {
	return &seeder{
		users:      repository.NewUserRepository(tx),
		profiles:   repository.NewProfileRepository(tx),
		posts:      repository.NewPostRepository(tx),
		bcryptCost: bcryptCost,
	}
}

func main() {
	importFlag := flag.Bool("i", false, "импортировать fixtures")
	deleteFlag := flag.Bool("d", false, "удалить все данные")
	dir := flag.String("dir", "_data", "папка с users.json, profiles.json, posts.json")
	flag.Parse()

	if *importFlag == *deleteFlag {
		fmt.Fprintln(os.Stderr, "usage: seeder -i [-dir _data] | seeder -d")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфига: %v", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Log.Sync()

	ctx := context.Background()
	pool, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Ошибка подключения к БД", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal("Ошибка миграций", zap.Error(err))
	}

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		s := newSeeder(tx, cfg.BcryptCost)
		if *deleteFlag {
			return s.destroy(ctx)
		}
		return s.importDir(ctx, *dir)
	})
	if err != nil {
		logger.Log.Fatal("Сидер завершился с ошибкой", zap.Error(err))
	}
	logger.Log.Info("Сидер отработал", zap.Bool("import", *importFlag), zap.Bool("delete", *deleteFlag))
}

// importDir загружает fixtures; отсутствующий файл пропускается.
func (s *seeder) importDir(ctx context.Context, dir string) error {
	var users []models.UserSeed
	if err := readFixture(filepath.Join(dir, "users.json"), &users); err != nil {
		return err
	}
	authors := make(map[string]*models.User, len(users))
	for _, seed := range users {
		u, err := s.importUser(ctx, seed)
		if err != nil {
			return err
		}
		authors[u.ID.String()] = u
	}

	var profiles []models.ProfileSeed
	if err := readFixture(filepath.Join(dir, "profiles.json"), &profiles); err != nil {
		return err
	}
	for _, seed := range profiles {
		p := &models.Profile{
			UserID:         seed.UserID,
			Company:        seed.Company,
			Website:        seed.Website,
			Location:       seed.Location,
			Status:         seed.Status,
			Skills:         seed.Skills,
			Bio:            seed.Bio,
			GithubUsername: seed.GithubUsername,
			Social: models.Social{
				Youtube:   seed.Youtube,
				Twitter:   seed.Twitter,
				Facebook:  seed.Facebook,
				Linkedin:  seed.Linkedin,
				Instagram: seed.Instagram,
			},
		}
		if err := s.profiles.Upsert(ctx, p); err != nil {
			return fmt.Errorf("import profile of %s: %w", seed.UserID, err)
		}
	}

	var posts []models.PostSeed
	if err := readFixture(filepath.Join(dir, "posts.json"), &posts); err != nil {
		return err
	}
	for _, seed := range posts {
		author, ok := authors[seed.UserID.String()]
		if !ok {
			return fmt.Errorf("post %s: unknown author %s", seed.ID, seed.UserID)
		}
		p := &models.Post{ID: seed.ID, UserID: author.ID, Text: seed.Text, Name: author.Name, Avatar: author.Avatar}
		if err := s.posts.Create(ctx, p); err != nil {
			return fmt.Errorf("import post %s: %w", seed.ID, err)
		}
	}

	logger.Log.Info("Данные импортированы",
		zap.Int("users", len(users)),
		zap.Int("profiles", len(profiles)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

func (s *seeder) importUser(ctx context.Context, seed models.UserSeed) (*models.User, error) {
	role := strings.TrimSpace(seed.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("user %s: unknown role %q", seed.Email, role)
	}
	hash, err := utils.HashPassword(seed.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password of %s: %w", seed.Email, err)
	}
	avatar := seed.Avatar
	if avatar == "" {
		avatar = "no-photo.jpg"
	}

	u := &models.User{
		ID:           seed.ID,
		Name:         seed.Name,
		Email:        strings.TrimSpace(seed.Email),
		Avatar:       avatar,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("import user %s: %w", seed.Email, err)
	}
	return u, nil
}

// destroy удаляет всё; посты и профили раньше пользователей из-за внешних ключей.
func (s *seeder) destroy(ctx context.Context) error {
	if err := s.posts.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if err := s.profiles.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete profiles: %w", err)
	}
	if err := s.users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	logger.Log.Info("Данные удалены")
	return nil
}

func readFixture(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Log.Warn("Fixture не найден, пропускаем", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
