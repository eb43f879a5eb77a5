package db

import (
	"context"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateNotice(ctx context.Context, notice *models.Notice) error {
	rec := &dbmodels.Notice{ID: notice.ID, Text: notice.Text, Active: notice.Active}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	notice.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) GetNotice(ctx context.Context, id uuid.UUID) (*models.Notice, error) {
	var rec dbmodels.Notice
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToNotice(&rec), nil
}

// ListNotices returns notices newest first; activeOnly hides inactive ones.
func (r *Repository) ListNotices(ctx context.Context, activeOnly bool) ([]*models.Notice, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var recs []dbmodels.Notice
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Notice, 0, len(recs))
	for i := range recs {
		out = append(out, recordToNotice(&recs[i]))
	}
	return out, nil
}

func (r *Repository) UpdateNotice(ctx context.Context, notice *models.Notice) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Notice{}).
		Where("id = ?", notice.ID).
		Updates(map[string]interface{}{"text": notice.Text, "active": notice.Active})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteNotice(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Notice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateVisit(ctx context.Context, visit *models.Visit) error {
	rec := &dbmodels.Visit{ID: visit.ID, Path: visit.Path, IP: visit.IP, UserAgent: visit.UserAgent}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	visit.VisitedAt = rec.CreatedAt
	return nil
}

// ListVisits returns the raw visitor log newest first.
func (r *Repository) ListVisits(ctx context.Context, offset, limit int) ([]*models.Visit, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&dbmodels.Visit{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []dbmodels.Visit
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Offset(offset).Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]*models.Visit, 0, len(recs))
	for i := range recs {
		out = append(out, recordToVisit(&recs[i]))
	}
	return out, total, nil
}
