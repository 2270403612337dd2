package services

import (
	"context"
	"devconnector/internal/config"
	"devconnector/internal/logger"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GithubService: тонкий прокси к GitHub API (последние репозитории пользователя).
type GithubService struct {
	client *resty.Client
}

func NewGithubService(cfg *config.Config) *GithubService {
	timeout := cfg.GithubTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.GithubAPIURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("User-Agent", "devconnector")
	if cfg.GithubToken != "" {
		cli.SetAuthToken(cfg.GithubToken)
	}

	return &GithubService{client: cli}
}

// Repos возвращает тело ответа GitHub как есть.
func (s *GithubService) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errorf(ErrValidation, "Github username is required")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"per_page": "5",
			"sort":     "created:asc",
		}).
		Get("/users/" + url.PathEscape(username) + "/repos")
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка запроса к GitHub", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("github request: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, errorf(ErrNotFound, "No Github profile found")
	case resp.IsError():
		logger.WithCtx(ctx).Warn("GitHub вернул ошибку",
			zap.String("username", username),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, fmt.Errorf("github: unexpected status %d", resp.StatusCode())
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("github: invalid json in response")
	}
	return json.RawMessage(body), nil
}
