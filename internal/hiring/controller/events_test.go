package controller

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func eventInput(capacity int, open bool) *models.EventInput {
	return &models.EventInput{
		Title:            "Intro to Rust",
		Description:      "Hands-on workshop",
		Venue:            "Lab 3",
		StartsAt:         time.Date(2026, 11, 2, 16, 0, 0, 0, time.UTC),
		Capacity:         capacity,
		RegistrationOpen: open,
	}
}

func TestEventService_Register(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	producer := &MockProducer{wg: &wg}
	svc := NewEventService(repo, producer, zaptest.NewLogger(t))

	event, err := svc.Create(ctx, eventInput(2, true))
	require.NoError(t, err)

	reg, err := svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Asha", Email: "Asha@Example.com", RollNo: "22cs1"})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", reg.Email)
	assert.Equal(t, "22CS1", reg.RollNo)

	_, err = svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Asha", Email: "asha@example.com", RollNo: "22CS1"})
	assert.ErrorIs(t, err, e.ErrDuplicate)

	_, err = svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Ravi", Email: "ravi@example.com", RollNo: "22CS2"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Mia", Email: "mia@example.com", RollNo: "22CS3"})
	assert.ErrorIs(t, err, e.ErrClosed, "event is at capacity")

	waitTimeout(t, &wg)
	for _, n := range producer.Notifications() {
		assert.Equal(t, models.NotifyEventRegistration, n.Kind)
		assert.Equal(t, "Intro to Rust", n.Data["event"])
	}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportRegistrations(ctx, event.ID, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"name", "email", "rollNo", "registeredAt"}, records[0])
}

func TestEventService_RegisterClosed(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	svc := NewEventService(repo, &MockProducer{}, zaptest.NewLogger(t))

	event, err := svc.Create(ctx, eventInput(0, false))
	require.NoError(t, err)

	_, err = svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Asha", Email: "asha@example.com", RollNo: "22CS1"})
	assert.ErrorIs(t, err, e.ErrClosed)

	_, err = svc.Register(ctx, uuid.New(), &models.RegistrationInput{Name: "Asha", Email: "asha@example.com", RollNo: "22CS1"})
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = svc.Register(ctx, event.ID, &models.RegistrationInput{Name: "Asha", Email: "bad"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestEventService_CRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	svc := NewEventService(repo, &MockProducer{}, zaptest.NewLogger(t))

	_, err := svc.Create(ctx, &models.EventInput{Title: ""})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	event, err := svc.Create(ctx, eventInput(0, true))
	require.NoError(t, err)

	in := eventInput(50, false)
	in.Title = "Intro to Go"
	updated, err := svc.Update(ctx, event.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", updated.Title)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 50, list[0].Capacity)
	assert.False(t, list[0].RegistrationOpen)

	require.NoError(t, svc.Delete(ctx, event.ID))
	assert.ErrorIs(t, svc.Delete(ctx, event.ID), e.ErrNotFound)
	_, err = svc.Update(ctx, event.ID, in)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.ErrorIs(t, svc.ExportRegistrations(ctx, event.ID, &bytes.Buffer{}), e.ErrNotFound)
}
