package db

import (
	"context"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateCategory(ctx context.Context, category *models.TeamCategory) error {
	rec := &dbmodels.TeamCategory{ID: category.ID, Name: category.Name, Position: category.Position}
	return mapError(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*models.TeamCategory, error) {
	var rec dbmodels.TeamCategory
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToCategory(&rec), nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*models.TeamCategory, error) {
	var recs []dbmodels.TeamCategory
	if err := r.db.WithContext(ctx).Order("position").Order("name").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.TeamCategory, 0, len(recs))
	for i := range recs {
		out = append(out, recordToCategory(&recs[i]))
	}
	return out, nil
}

// DeleteCategory removes an empty category. Categories that still hold
// members are refused with ErrInvalidInput.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.WithTransaction(ctx, func(tx *Repository) error {
		var members int64
		if err := tx.db.Model(&dbmodels.TeamMember{}).Where("category_id = ?", id).Count(&members).Error; err != nil {
			return err
		}
		if members > 0 {
			return e.ErrInvalidInput
		}
		result := tx.db.Delete(&dbmodels.TeamCategory{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}
		return nil
	})
}

func (r *Repository) CreateMember(ctx context.Context, member *models.TeamMember) error {
	rec := memberToRecord(member)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	member.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) GetMember(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	var rec dbmodels.TeamMember
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToMember(&rec), nil
}

func (r *Repository) GetMemberByInviteToken(ctx context.Context, token string) (*models.TeamMember, error) {
	var rec dbmodels.TeamMember
	if err := r.db.WithContext(ctx).First(&rec, "invite_token = ?", token).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToMember(&rec), nil
}

// ListMembers returns members in creation order, optionally restricted to
// one status.
func (r *Repository) ListMembers(ctx context.Context, status models.MemberStatus) ([]*models.TeamMember, error) {
	query := r.db.WithContext(ctx).Order("created_at")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var recs []dbmodels.TeamMember
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.TeamMember, 0, len(recs))
	for i := range recs {
		out = append(out, recordToMember(&recs[i]))
	}
	return out, nil
}

// SaveMember overwrites the mutable fields of a member. An empty invite
// token clears the stored one.
func (r *Repository) SaveMember(ctx context.Context, member *models.TeamMember) error {
	var token interface{}
	if member.InviteToken != "" {
		token = member.InviteToken
	}
	result := r.db.WithContext(ctx).Model(&dbmodels.TeamMember{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"name":              member.Name,
			"title":             member.Title,
			"category_id":       member.CategoryID,
			"image_url":         member.ImageURL,
			"linked_in":         member.LinkedIn,
			"status":            string(member.Status),
			"invite_token":      token,
			"invite_expires_at": member.InviteExpiresAt,
		})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.TeamMember{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
