package services

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"devconnector/internal/repository"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type ProfileStore interface {
	Upsert(ctx context.Context, p *models.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	AddExperience(ctx context.Context, profileID uuid.UUID, e *models.Experience) error
	DeleteExperience(ctx context.Context, profileID, expID uuid.UUID) error
	AddEducation(ctx context.Context, profileID uuid.UUID, e *models.Education) error
	DeleteEducation(ctx context.Context, profileID, eduID uuid.UUID) error
}

type ProfileService struct {
	repo ProfileStore
}

func NewProfileService(repo ProfileStore) *ProfileService {
	return &ProfileService{repo: repo}
}

var errProfileNotFound = errorf(ErrNotFound, "Profile not found")

func (s *ProfileService) List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int, error) {
	f.Page, f.Limit = NormalizePage(f.Page, f.Limit)
	profiles, total, err := s.repo.List(ctx, f)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения профилей (service)", zap.Error(err))
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, total, nil
}

func (s *ProfileService) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Upsert создаёт профиль пользователя или обновляет переданные поля.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, in *models.ProfileRequest) (*models.Profile, error) {
	logger.WithCtx(ctx).Info("Сохранение профиля (service)")

	if strings.TrimSpace(in.Status) == "" {
		return nil, errorf(ErrValidation, "Status is required")
	}
	links := map[string]string{
		"website":   in.Website,
		"youtube":   in.Youtube,
		"twitter":   in.Twitter,
		"facebook":  in.Facebook,
		"linkedin":  in.Linkedin,
		"instagram": in.Instagram,
	}
	for field, v := range links {
		if v != "" && !isAbsoluteURL(v) {
			return nil, errorf(ErrValidation, "%s must be a valid uri", field)
		}
	}

	p := &models.Profile{
		UserID:         userID,
		Company:        strings.TrimSpace(in.Company),
		Website:        in.Website,
		Location:       strings.TrimSpace(in.Location),
		Status:         strings.TrimSpace(in.Status),
		Skills:         cleanSkills(in.Skills),
		Bio:            sanitizeText(in.Bio),
		GithubUsername: strings.TrimSpace(in.GithubUsername),
		Social: models.Social{
			Youtube:   in.Youtube,
			Twitter:   in.Twitter,
			Facebook:  in.Facebook,
			Linkedin:  in.Linkedin,
			Instagram: in.Instagram,
		},
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		logger.WithCtx(ctx).Error("Ошибка сохранения профиля (service)", zap.Error(err))
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return s.GetByUser(ctx, userID)
}

// Delete удаляет профиль текущего пользователя. Отсутствие профиля не ошибка.
func (s *ProfileService) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteByUserID(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *ProfileService) AddExperience(ctx context.Context, userID uuid.UUID, in *models.ExperienceRequest) (*models.Profile, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" {
		return nil, errorf(ErrValidation, "Title and company are required")
	}
	from, to, err := parsePeriod(in.From, in.To)
	if err != nil {
		return nil, err
	}

	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	e := &models.Experience{
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    in.Location,
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: in.Description,
	}
	if err := s.repo.AddExperience(ctx, p.ID, e); err != nil {
		return nil, fmt.Errorf("add experience: %w", err)
	}
	return s.GetByUser(ctx, userID)
}

func (s *ProfileService) DeleteExperience(ctx context.Context, userID, expID uuid.UUID) (*models.Profile, error) {
	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteExperience(ctx, p.ID, expID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errorf(ErrNotFound, "Experience not found")
		}
		return nil, fmt.Errorf("delete experience: %w", err)
	}
	return s.GetByUser(ctx, userID)
}

func (s *ProfileService) AddEducation(ctx context.Context, userID uuid.UUID, in *models.EducationRequest) (*models.Profile, error) {
	if strings.TrimSpace(in.School) == "" || strings.TrimSpace(in.Degree) == "" || strings.TrimSpace(in.FieldOfStudy) == "" {
		return nil, errorf(ErrValidation, "School, degree and fieldofstudy are required")
	}
	from, to, err := parsePeriod(in.From, in.To)
	if err != nil {
		return nil, err
	}

	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	e := &models.Education{
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  in.Description,
	}
	if err := s.repo.AddEducation(ctx, p.ID, e); err != nil {
		return nil, fmt.Errorf("add education: %w", err)
	}
	return s.GetByUser(ctx, userID)
}

func (s *ProfileService) DeleteEducation(ctx context.Context, userID, eduID uuid.UUID) (*models.Profile, error) {
	p, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteEducation(ctx, p.ID, eduID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errorf(ErrNotFound, "Education not found")
		}
		return nil, fmt.Errorf("delete education: %w", err)
	}
	return s.GetByUser(ctx, userID)
}

func parsePeriod(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	if strings.TrimSpace(fromRaw) == "" {
		return time.Time{}, nil, errorf(ErrValidation, "From date is required")
	}
	from, err := time.Parse(dateLayout, strings.TrimSpace(fromRaw))
	if err != nil {
		return time.Time{}, nil, errorf(ErrValidation, "from must be a date in YYYY-MM-DD format")
	}
	if strings.TrimSpace(toRaw) == "" {
		return from, nil, nil
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(toRaw))
	if err != nil {
		return time.Time{}, nil, errorf(ErrValidation, "to must be a date in YYYY-MM-DD format")
	}
	if to.Before(from) {
		return time.Time{}, nil, errorf(ErrValidation, "to must not be before from")
	}
	return from, &to, nil
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
