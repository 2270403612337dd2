package repository

import (
	"context"
	"devconnector/internal/logger"
	"devconnector/internal/models"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var profileSortColumns = map[string]string{
	"created_at": "p.created_at",
	"date":       "p.created_at",
	"status":     "p.status",
	"company":    "p.company",
	"location":   "p.location",
}

var profileColumns = []string{
	"p.id", "p.user_id", "u.name", "u.avatar",
	"p.company", "p.website", "p.location", "p.status", "p.skills", "p.bio", "p.github_username",
	"p.youtube", "p.twitter", "p.facebook", "p.linkedin", "p.instagram",
	"p.created_at",
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.User.Name, &p.User.Avatar,
		&p.Company, &p.Website, &p.Location, &p.Status, &p.Skills, &p.Bio, &p.GithubUsername,
		&p.Social.Youtube, &p.Social.Twitter, &p.Social.Facebook, &p.Social.Linkedin, &p.Social.Instagram,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.User.ID = p.UserID
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

// Upsert создаёт профиль пользователя. У существующего профиля меняются только
// непустые поля, ссылки на соцсети заменяются целиком.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	logger.Log.Info("Сохранение профиля (repo)", zap.String("user_id", p.UserID.String()))
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}

	query, args, err := psql.Insert("profiles").
		Columns("id", "user_id", "company", "website", "location", "status", "skills", "bio", "github_username",
			"youtube", "twitter", "facebook", "linkedin", "instagram").
		Values(p.ID, p.UserID, p.Company, p.Website, p.Location, p.Status, p.Skills, p.Bio, p.GithubUsername,
			p.Social.Youtube, p.Social.Twitter, p.Social.Facebook, p.Social.Linkedin, p.Social.Instagram).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " + strings.Join(profileMergeSet(p), ", ") + " RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		logger.Log.Error("Ошибка сохранения профиля (repo)", zap.Error(err))
		return mapPgError(err)
	}
	return nil
}

func profileMergeSet(p *models.Profile) []string {
	fields := []struct {
		column string
		given  bool
	}{
		{"company", p.Company != ""},
		{"website", p.Website != ""},
		{"location", p.Location != ""},
		{"status", p.Status != ""},
		{"skills", len(p.Skills) > 0},
		{"bio", p.Bio != ""},
		{"github_username", p.GithubUsername != ""},
		{"youtube", true},
		{"twitter", true},
		{"facebook", true},
		{"linkedin", true},
		{"instagram", true},
	}
	set := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.given {
			set = append(set, f.column+" = EXCLUDED."+f.column)
		}
	}
	return set
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	if err := r.loadSections(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) List(ctx context.Context, f models.ProfileFilter) ([]*models.Profile, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"p.status": f.Status})
	}
	if f.Location != "" {
		where = append(where, sq.ILike{"p.location": "%" + f.Location + "%"})
	}
	if len(f.Skills) > 0 {
		where = append(where, sq.Expr("p.skills && ?", f.Skills))
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapPgError(err)
	}

	query, args, err := psql.Select(profileColumns...).
		From("profiles p").
		Join("users u ON u.id = p.user_id").
		Where(where).
		OrderBy(orderBy(f.Sort, profileSortColumns, "p.created_at DESC")).
		Limit(uint64(f.Limit)).
		Offset(offset(f.Page, f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Log.Error("Ошибка получения профилей (repo)", zap.Error(err))
		return nil, 0, mapPgError(err)
	}
	defer rows.Close()

	profiles := make([]*models.Profile, 0, f.Limit)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	for _, p := range profiles {
		if err := r.loadSections(ctx, p); err != nil {
			return nil, 0, err
		}
	}
	return profiles, total, nil
}

func (r *ProfileRepository) loadSections(ctx context.Context, p *models.Profile) error {
	var err error
	if p.Experience, err = r.experience(ctx, p.ID); err != nil {
		return err
	}
	if p.Education, err = r.education(ctx, p.ID); err != nil {
		return err
	}
	return nil
}

func (r *ProfileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	logger.Log.Info("Удаление профиля (repo)", zap.String("user_id", userID.String()))
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) AddExperience(ctx context.Context, profileID uuid.UUID, e *models.Experience) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO profile_experience (id, profile_id, title, company, location, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, profileID, e.Title, e.Company, e.Location, e.From, e.To, e.Current, e.Description,
	)
	return mapPgError(err)
}

func (r *ProfileRepository) DeleteExperience(ctx context.Context, profileID, expID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profile_experience WHERE id = $1 AND profile_id = $2`, expID, profileID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) experience(ctx context.Context, profileID uuid.UUID) ([]models.Experience, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, company, location, from_date, to_date, current, description
		FROM profile_experience
		WHERE profile_id = $1
		ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	items := []models.Experience{}
	for rows.Next() {
		var e models.Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *ProfileRepository) AddEducation(ctx context.Context, profileID uuid.UUID, e *models.Education) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO profile_education (id, profile_id, school, degree, field_of_study, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, profileID, e.School, e.Degree, e.FieldOfStudy, e.From, e.To, e.Current, e.Description,
	)
	return mapPgError(err)
}

func (r *ProfileRepository) DeleteEducation(ctx context.Context, profileID, eduID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profile_education WHERE id = $1 AND profile_id = $2`, eduID, profileID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) education(ctx context.Context, profileID uuid.UUID) ([]models.Education, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, school, degree, field_of_study, from_date, to_date, current, description
		FROM profile_education
		WHERE profile_id = $1
		ORDER BY created_at DESC`, profileID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	items := []models.Education{}
	for rows.Next() {
		var e models.Education
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *ProfileRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles`)
	return mapPgError(err)
}
