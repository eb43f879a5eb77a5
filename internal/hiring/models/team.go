package models

import (
	"time"

	"github.com/google/uuid"
)

// MemberStatus tracks a team member through invite, onboarding and activation.
type MemberStatus string

const (
	MemberInvited   MemberStatus = "invited"
	MemberOnboarded MemberStatus = "onboarded"
	MemberActive    MemberStatus = "active"
)

// TeamCategory groups members on the public roster.
type TeamCategory struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Position int       `json:"position"`
}

// TeamMember is one roster entry.
type TeamMember struct {
	ID              uuid.UUID    `json:"id"`
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	Title           string       `json:"title"`
	CategoryID      uuid.UUID    `json:"categoryId"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	LinkedIn        string       `json:"linkedIn,omitempty"`
	Status          MemberStatus `json:"status"`
	InviteToken     string       `json:"-"`
	InviteExpiresAt time.Time    `json:"-"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// TeamInvite is the admin payload for inviting a new member.
type TeamInvite struct {
	Email      string    `json:"email" validate:"required,email"`
	CategoryID uuid.UUID `json:"categoryId" validate:"required"`
}

// Onboarding is what an invited member fills in.
type Onboarding struct {
	Name     string `json:"name" validate:"required,max=100"`
	Title    string `json:"title" validate:"required,max=100"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url,max=500"`
	LinkedIn string `json:"linkedIn" validate:"omitempty,url,max=300"`
}

// NewCategory is the admin payload for a roster category.
type NewCategory struct {
	Name     string `json:"name" validate:"required,max=60"`
	Position int    `json:"position" validate:"gte=0"`
}

// RosterSection is one category of the public roster with its active members.
type RosterSection struct {
	Category TeamCategory  `json:"category"`
	Members  []*TeamMember `json:"members"`
}
