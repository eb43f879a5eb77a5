package db

import (
	"context"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	rec := eventToRecord(event)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	event.CreatedAt = rec.CreatedAt
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var rec dbmodels.Event
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return recordToEvent(&rec), nil
}

// ListEvents returns events ordered by start time.
func (r *Repository) ListEvents(ctx context.Context) ([]*models.Event, error) {
	var recs []dbmodels.Event
	if err := r.db.WithContext(ctx).Order("starts_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Event, 0, len(recs))
	for i := range recs {
		out = append(out, recordToEvent(&recs[i]))
	}
	return out, nil
}

func (r *Repository) UpdateEvent(ctx context.Context, event *models.Event) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":             event.Title,
			"description":       event.Description,
			"venue":             event.Venue,
			"starts_at":         event.StartsAt,
			"capacity":          event.Capacity,
			"registration_open": event.RegistrationOpen,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event together with its registrations.
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return r.WithTransaction(ctx, func(tx *Repository) error {
		if err := tx.db.Delete(&dbmodels.Registration{}, "event_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.db.Delete(&dbmodels.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return e.ErrNotFound
		}
		return nil
	})
}

// CreateRegistration inserts reg unless the event already holds capacity
// registrations (capacity 0 means unlimited). The count and the insert run
// in one transaction.
func (r *Repository) CreateRegistration(ctx context.Context, reg *models.Registration, capacity int) error {
	return r.WithTransaction(ctx, func(tx *Repository) error {
		if capacity > 0 {
			var count int64
			if err := tx.db.Model(&dbmodels.Registration{}).Where("event_id = ?", reg.EventID).Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(capacity) {
				return e.ErrClosed
			}
		}
		rec := &dbmodels.Registration{
			ID:      reg.ID,
			EventID: reg.EventID,
			Name:    reg.Name,
			Email:   reg.Email,
			RollNo:  reg.RollNo,
		}
		if err := tx.db.Create(rec).Error; err != nil {
			return mapError(err)
		}
		reg.CreatedAt = rec.CreatedAt
		return nil
	})
}

func (r *Repository) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]*models.Registration, error) {
	var recs []dbmodels.Registration
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.Registration, 0, len(recs))
	for i := range recs {
		out = append(out, recordToRegistration(&recs[i]))
	}
	return out, nil
}
