// Package models contains the persistence records of the hiring portal,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application is the stored form of a candidate submission. Review
// sub-documents are flattened into columns so they can be filtered and
// sorted on.
type Application struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReferenceID        string    `gorm:"size:16;uniqueIndex"`
	Name               string    `gorm:"size:100;index"`
	Email              string    `gorm:"size:254;uniqueIndex"`
	Phone              string    `gorm:"size:10"`
	RollNo             string    `gorm:"size:20;uniqueIndex"`
	Branch             string    `gorm:"size:50;index"`
	Section            string    `gorm:"size:10"`
	Year               int       `gorm:"index"`
	CGPA               float64
	Backlogs           int `gorm:"check:backlogs >= 0"`
	Answers            datatypes.JSONMap
	LinkedIn           string `gorm:"size:300"`
	ResumeSummary      string `gorm:"type:text"`
	TechnicalDomain    string `gorm:"size:16;index"`
	NonTechnicalDomain string `gorm:"size:16;index"`

	Status                  string `gorm:"size:32;index"`
	IsRecommended           bool   `gorm:"index"`
	SuitabilityTechnical    string `gorm:"size:16"`
	SuitabilityNonTechnical string `gorm:"size:16"`
	RatingCommunication     int
	RatingTechnical         int
	RatingProblemSolving    int
	RatingTeamFit           int
	RatingOverall           float64 `gorm:"index"`
	Remarks                 string  `gorm:"size:2000"`
	ReviewedBy              string  `gorm:"size:40"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Reviewer is a login account.
type Reviewer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"size:40;uniqueIndex"`
	PasswordHash []byte
	Role         string `gorm:"size:16"`
	Domain       string `gorm:"size:16"`
	CreatedAt    time.Time
}

// TeamCategory groups roster members.
type TeamCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:60;uniqueIndex"`
	Position  int
	CreatedAt time.Time
}

// TeamMember is a roster entry.
type TeamMember struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"size:254;uniqueIndex"`
	Name            string    `gorm:"size:100"`
	Title           string    `gorm:"size:100"`
	CategoryID      uuid.UUID `gorm:"type:uuid;index"`
	ImageURL        string    `gorm:"size:500"`
	LinkedIn        string    `gorm:"size:300"`
	Status          string    `gorm:"size:16;index"`
	InviteToken     *string   `gorm:"size:64;uniqueIndex"`
	InviteExpiresAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Event is a club event.
type Event struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title            string    `gorm:"size:120"`
	Description      string    `gorm:"type:text"`
	Venue            string    `gorm:"size:120"`
	StartsAt         time.Time `gorm:"index"`
	Capacity         int       `gorm:"check:capacity >= 0"`
	RegistrationOpen bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Registration is an event sign-up.
type Registration struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_registration_event_email"`
	Name      string    `gorm:"size:100"`
	Email     string    `gorm:"size:254;uniqueIndex:idx_registration_event_email"`
	RollNo    string    `gorm:"size:20"`
	CreatedAt time.Time
}

// Notice is a ticker line.
type Notice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text      string    `gorm:"size:280"`
	Active    bool      `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Visit is a raw visitor log entry.
type Visit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Path      string    `gorm:"size:300"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:300"`
	CreatedAt time.Time `gorm:"index"`
}

// All lists every record type for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Application{},
		&Reviewer{},
		&TeamCategory{},
		&TeamMember{},
		&Event{},
		&Registration{},
		&Notice{},
		&Visit{},
	}
}
