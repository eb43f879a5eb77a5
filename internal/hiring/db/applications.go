package db

import (
	"context"
	"strings"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	rec := applicationToRecord(app)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	app.SubmittedAt = rec.CreatedAt
	app.UpdatedAt = rec.UpdatedAt
	return nil
}

// ApplicationExists reports whether an application with the given email or
// roll number was already submitted.
func (r *Repository) ApplicationExists(ctx context.Context, email, rollNo string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Application{}).
		Where("(LOWER(email) = ? OR roll_no = ?)", strings.ToLower(email), rollNo).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var rec dbmodels.Application
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToApplication(&rec), nil
}

func (r *Repository) GetApplicationByReference(ctx context.Context, referenceID string) (*models.Application, error) {
	var rec dbmodels.Application
	err := r.db.WithContext(ctx).First(&rec, "reference_id = ?", strings.ToUpper(strings.TrimSpace(referenceID))).Error
	if err != nil {
		return nil, mapError(err)
	}
	return recordToApplication(&rec), nil
}

// FindApplications returns the applications matching filter in the
// requested order, together with the total match count. A non-positive limit
// returns every match.
func (r *Repository) FindApplications(ctx context.Context, filter models.ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&dbmodels.Application{}).Scopes(applicationFilter(filter))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base().Scopes(applicationOrder(filter))
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recs []dbmodels.Application
	if err := query.Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	apps := make([]*models.Application, 0, len(recs))
	for i := range recs {
		apps = append(apps, recordToApplication(&recs[i]))
	}
	return apps, total, nil
}

// likeEscaper makes user input literal inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func applicationFilter(f models.ApplicationFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if s := strings.TrimSpace(f.Search); s != "" {
			s = likeEscaper.Replace(s)
			q = q.Where(`(roll_no LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`,
				strings.ToUpper(s)+"%", "%"+strings.ToLower(s)+"%")
		}
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		}
		if f.Year != 0 {
			q = q.Where("year = ?", f.Year)
		}
		if f.Branch != "" {
			q = q.Where("branch = ?", f.Branch)
		}
		if f.TechnicalDomain != "" {
			q = q.Where("technical_domain = ?", string(f.TechnicalDomain))
		}
		if f.NonTechnicalDomain != "" {
			q = q.Where("non_technical_domain = ?", string(f.NonTechnicalDomain))
		}
		return q
	}
}

func applicationOrder(f models.ApplicationFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ByRecommended {
			q = q.Order("is_recommended DESC")
		}
		if f.ByPerformance {
			q = q.Order("rating_overall DESC")
		}
		return q.Order("created_at DESC").Order("id")
	}
}

// SaveReview writes the review columns of app.
func (r *Repository) SaveReview(ctx context.Context, app *models.Application) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Application{}).
		Where("id = ?", app.ID).
		Updates(map[string]interface{}{
			"status":                    string(app.Status),
			"is_recommended":            app.IsRecommended,
			"suitability_technical":     string(app.Suitability.Technical),
			"suitability_non_technical": string(app.Suitability.NonTechnical),
			"rating_communication":      app.Ratings.Communication,
			"rating_technical":          app.Ratings.Technical,
			"rating_problem_solving":    app.Ratings.ProblemSolving,
			"rating_team_fit":           app.Ratings.TeamFit,
			"rating_overall":            app.Ratings.Overall,
			"remarks":                   app.Remarks,
			"reviewed_by":               app.ReviewedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.Status, reviewer string) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      string(status),
			"reviewed_by": reviewer,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) SetResumeSummary(ctx context.Context, id uuid.UUID, summary string) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Application{}).
		Where("id = ?", id).
		Update("resume_summary", summary)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
