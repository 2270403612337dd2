package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"5000"`
	Env  string `env:"ENV" envDefault:"development"` // development|production

	DbHost    string `env:"DB_HOST"`
	DbPort    string `env:"DB_PORT" envDefault:"5432"`
	DbUser    string `env:"DB_USER"`
	DbPass    string `env:"DB_PASSWORD"`
	DbName    string `env:"DB_NAME"`
	DbSSLMode string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret           string        `env:"JWT_SECRET"`
	JWTIssuer           string        `env:"JWT_ISSUER" envDefault:"devconnector"`
	TokenTTL            time.Duration `env:"JWT_EXPIRE" envDefault:"720h"`
	ResetPasswordWindow time.Duration `env:"RESET_PASSWORD_WINDOW" envDefault:"10m"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`

	Log      string `env:"LOG"`
	LogLevel string `env:"LOGLEVEL" envDefault:"info"`
	LogDir   string `env:"LOG_DIR" envDefault:"logs"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	FromEmail    string `env:"FROM_EMAIL"`
	FromName     string `env:"FROM_NAME" envDefault:"DevConnector"`

	// Базовый адрес для ссылок в письмах. Пусто: берём из запроса.
	SiteURL string `env:"SITE_URL"`

	MaxFileUpload  int64  `env:"MAX_FILE_UPLOAD" envDefault:"1000000"`
	FileUploadPath string `env:"FILE_UPLOAD_PATH" envDefault:"./public/uploads"`

	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`
	// Адрес, по которому объекты бакета доступны снаружи (CDN/MinIO). Пусто: endpoint/bucket.
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	GithubAPIURL  string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GithubToken   string        `env:"GITHUB_TOKEN"`
	GithubTimeout time.Duration `env:"GITHUB_TIMEOUT" envDefault:"10s"`
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует: чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	// Без секрета токены подписывать нельзя
	if strings.TrimSpace(c.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	if c.TokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE must be positive")
	}
	if c.ResetPasswordWindow <= 0 {
		return nil, fmt.Errorf("RESET_PASSWORD_WINDOW must be positive")
	}

	// SMTP: предупреждение, без него не работает только сброс пароля
	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}

	if c.S3Bucket == "" {
		warnings = append(warnings, "S3_BUCKET is empty, avatars are stored in "+c.FileUploadPath)
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 5000")
		c.Port = "5000"
	}

	return warnings, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetDSN: полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe: DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}
