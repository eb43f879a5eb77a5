package models

import (
	"time"

	"github.com/google/uuid"
)

// Notice is one line of the scrolling ticker.
type Notice struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoticeInput is the admin payload for a ticker line.
type NoticeInput struct {
	Text   string `json:"text" validate:"required,max=280"`
	Active bool   `json:"active"`
}

// Visit is one raw visitor log entry.
type Visit struct {
	ID        uuid.UUID `json:"id"`
	Path      string    `json:"path"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	VisitedAt time.Time `json:"visitedAt"`
}
