package db

import (
	"context"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	"github.com/gartstein/clubhire/internal/hiring/models"
)

func (r *Repository) CreateReviewer(ctx context.Context, reviewer *models.Reviewer) error {
	rec := reviewerToRecord(reviewer)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	reviewer.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) GetReviewerByUsername(ctx context.Context, username string) (*models.Reviewer, error) {
	var rec dbmodels.Reviewer
	if err := r.db.WithContext(ctx).First(&rec, "username = ?", username).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToReviewer(&rec), nil
}
