package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the reviewer role carried by a session.
type Role string

const (
	RoleAdmin Role = "admin"
	RolePanel Role = "panel"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePanel
}

// Session is the identity resolved from a signed session token.
// Domain is only set for panel sessions and scopes every application query.
type Session struct {
	Role     Role            `json:"role"`
	Username string          `json:"username"`
	Domain   TechnicalDomain `json:"domain,omitempty"`
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsPanel reports whether the session belongs to a domain panel.
func (s Session) IsPanel() bool {
	return s.Role == RolePanel
}

// Reviewer is a login account for an admin or a panel member.
type Reviewer struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	PasswordHash []byte          `json:"-"`
	Role         Role            `json:"role"`
	Domain       TechnicalDomain `json:"domain,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Session returns the session a successful login of r produces.
func (r *Reviewer) Session() Session {
	s := Session{Role: r.Role, Username: r.Username}
	if r.Role == RolePanel {
		s.Domain = r.Domain
	}
	return s
}

// NewReviewer is the admin payload for creating a reviewer account.
type NewReviewer struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=40"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin panel"`
	Domain   string `json:"domain" validate:"omitempty,oneof=web app aiml cybersec"`
}
