// Package controller implements the business logic (service layer) of the
// hiring portal: the application lifecycle and its review workflow, bulk
// decisions, the team roster, events, notices and reviewer accounts. It
// orchestrates repository operations and queues notifications.
package controller

import (
	"context"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
)

// EventProducer queues a notification for background delivery. It must not
// block.
type EventProducer interface {
	Produce(n models.Notification)
}

// ResumeSummarizer turns an uploaded resume into a short summary.
type ResumeSummarizer interface {
	Summarize(ctx context.Context, filename string, data []byte) (string, error)
}

// ApplicationRepository defines the storage interface for applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app *models.Application) error
	ApplicationExists(ctx context.Context, email, rollNo string) (bool, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error)
	GetApplicationByReference(ctx context.Context, referenceID string) (*models.Application, error)
	FindApplications(ctx context.Context, filter models.ApplicationFilter, offset, limit int) ([]*models.Application, int64, error)
	SaveReview(ctx context.Context, app *models.Application) error
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.Status, reviewer string) error
	SetResumeSummary(ctx context.Context, id uuid.UUID, summary string) error
}

// ReviewerRepository defines the storage interface for reviewer accounts.
type ReviewerRepository interface {
	CreateReviewer(ctx context.Context, reviewer *models.Reviewer) error
	GetReviewerByUsername(ctx context.Context, username string) (*models.Reviewer, error)
}

// TeamRepository defines the storage interface for the roster.
type TeamRepository interface {
	CreateCategory(ctx context.Context, category *models.TeamCategory) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.TeamCategory, error)
	ListCategories(ctx context.Context) ([]*models.TeamCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateMember(ctx context.Context, member *models.TeamMember) error
	GetMember(ctx context.Context, id uuid.UUID) (*models.TeamMember, error)
	GetMemberByInviteToken(ctx context.Context, token string) (*models.TeamMember, error)
	ListMembers(ctx context.Context, status models.MemberStatus) ([]*models.TeamMember, error)
	SaveMember(ctx context.Context, member *models.TeamMember) error
	DeleteMember(ctx context.Context, id uuid.UUID) error
}

// EventRepository defines the storage interface for events and
// registrations.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	CreateRegistration(ctx context.Context, reg *models.Registration, capacity int) error
	ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]*models.Registration, error)
}

// ContentRepository defines the storage interface for ticker notices and
// the visitor log.
type ContentRepository interface {
	CreateNotice(ctx context.Context, notice *models.Notice) error
	GetNotice(ctx context.Context, id uuid.UUID) (*models.Notice, error)
	ListNotices(ctx context.Context, activeOnly bool) ([]*models.Notice, error)
	UpdateNotice(ctx context.Context, notice *models.Notice) error
	DeleteNotice(ctx context.Context, id uuid.UUID) error
	CreateVisit(ctx context.Context, visit *models.Visit) error
	ListVisits(ctx context.Context, offset, limit int) ([]*models.Visit, int64, error)
}
