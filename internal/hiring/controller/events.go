package controller

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventService manages club events and their public registrations.
type EventService struct {
	repo     EventRepository
	producer EventProducer
	logger   *zap.Logger
}

func NewEventService(repo EventRepository, producer EventProducer, logger *zap.Logger) *EventService {
	return &EventService{
		repo:     repo,
		producer: producer,
		logger:   logger.Named("event_service"),
	}
}

func (s *EventService) Create(ctx context.Context, in *models.EventInput) (*models.Event, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	event := &models.Event{ID: uuid.New()}
	applyEventInput(event, in)
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// Update replaces the editable fields of an event.
func (s *EventService) Update(ctx context.Context, id uuid.UUID, in *models.EventInput) (*models.Event, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyEventInput(event, in)
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Delete removes an event together with its registrations.
func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Register signs a participant up for an event and queues a confirmation.
// Closed or full events return ErrClosed; a second registration with the
// same email returns ErrDuplicate.
func (s *EventService) Register(ctx context.Context, eventID uuid.UUID, in *models.RegistrationInput) (*models.Registration, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.RollNo = strings.ToUpper(strings.TrimSpace(in.RollNo))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.RegistrationOpen {
		return nil, fmt.Errorf("%w: registration for %q is closed", e.ErrClosed, event.Title)
	}

	reg := &models.Registration{
		ID:      uuid.New(),
		EventID: event.ID,
		Name:    in.Name,
		Email:   in.Email,
		RollNo:  in.RollNo,
	}
	if err := s.repo.CreateRegistration(ctx, reg, event.Capacity); err != nil {
		switch {
		case errors.Is(err, e.ErrClosed):
			return nil, fmt.Errorf("%w: %q is full", e.ErrClosed, event.Title)
		case errors.Is(err, e.ErrDuplicate):
			return nil, fmt.Errorf("%w: %s is already registered", e.ErrDuplicate, in.Email)
		}
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	confirmation := models.Notification{
		Kind:      models.NotifyEventRegistration,
		Recipient: reg.Email,
		Data: map[string]string{
			"name":     reg.Name,
			"event":    event.Title,
			"venue":    event.Venue,
			"startsAt": event.StartsAt.Format(time.RFC1123),
		},
	}
	go func() {
		s.producer.Produce(confirmation)
	}()
	return reg, nil
}

// ExportRegistrations writes the registrants of an event to w as CSV.
func (s *EventService) ExportRegistrations(ctx context.Context, eventID uuid.UUID, w io.Writer) error {
	if _, err := s.Get(ctx, eventID); err != nil {
		return err
	}
	regs, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list registrations: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "email", "rollNo", "registeredAt"}); err != nil {
		return err
	}
	for _, r := range regs {
		if err := cw.Write([]string{r.Name, r.Email, r.RollNo, r.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func applyEventInput(event *models.Event, in *models.EventInput) {
	event.Title = strings.TrimSpace(in.Title)
	event.Description = strings.TrimSpace(in.Description)
	event.Venue = strings.TrimSpace(in.Venue)
	event.StartsAt = in.StartsAt.UTC()
	event.Capacity = in.Capacity
	event.RegistrationOpen = in.RegistrationOpen
}
