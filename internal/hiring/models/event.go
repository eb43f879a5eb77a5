package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a club event open for registration.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"startsAt"`
	// Capacity of 0 means unlimited.
	Capacity         int       `json:"capacity"`
	RegistrationOpen bool      `json:"registrationOpen"`
	CreatedAt        time.Time `json:"createdAt"`
}

// EventInput is the admin payload used to create or replace an event.
type EventInput struct {
	Title            string    `json:"title" validate:"required,max=120"`
	Description      string    `json:"description" validate:"max=5000"`
	Venue            string    `json:"venue" validate:"max=120"`
	StartsAt         time.Time `json:"startsAt" validate:"required"`
	Capacity         int       `json:"capacity" validate:"gte=0"`
	RegistrationOpen bool      `json:"registrationOpen"`
}

// Registration is a participant signed up for an event.
type Registration struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RollNo    string    `json:"rollNo"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationInput is the public registration payload.
type RegistrationInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email"`
	RollNo string `json:"rollNo" validate:"required,alphanum,max=20"`
}
