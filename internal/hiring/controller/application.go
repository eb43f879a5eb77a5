package controller

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxResumeBytes caps uploaded resumes.
	MaxResumeBytes = 5 << 20
)

// DefaultNotifyStatuses are the statuses that trigger an email to the
// applicant when no other set is configured.
var DefaultNotifyStatuses = []models.Status{models.StatusHired, models.StatusRejected}

// ApplicationService runs the application lifecycle: public intake and
// status lookup, domain-scoped review, and admin bulk decisions.
type ApplicationService struct {
	repo       ApplicationRepository
	producer   EventProducer
	summarizer ResumeSummarizer
	notifyOn   map[models.Status]bool
	logger     *zap.Logger
}

// NewApplicationService constructs an ApplicationService. summarizer may be
// nil, in which case resumes are accepted but never summarised. An empty
// notifyOn falls back to DefaultNotifyStatuses.
func NewApplicationService(
	repo ApplicationRepository,
	producer EventProducer,
	summarizer ResumeSummarizer,
	notifyOn []models.Status,
	logger *zap.Logger,
) *ApplicationService {
	if len(notifyOn) == 0 {
		notifyOn = DefaultNotifyStatuses
	}
	set := make(map[models.Status]bool, len(notifyOn))
	for _, s := range notifyOn {
		set[s] = true
	}
	return &ApplicationService{
		repo:       repo,
		producer:   producer,
		summarizer: summarizer,
		notifyOn:   set,
		logger:     logger.Named("application_service"),
	}
}

// Submit validates and stores a new application, queues the confirmation
// email and, when a resume is attached, starts summarising it in the
// background.
func (s *ApplicationService) Submit(ctx context.Context, sub *models.ApplicationSubmission, resume *models.Resume) (*models.Application, error) {
	normalizeSubmission(sub)
	if err := validateStruct(sub); err != nil {
		return nil, err
	}
	if resume != nil && len(resume.Data) > MaxResumeBytes {
		return nil, fieldError("resume", "must be at most 5 MiB")
	}

	exists, err := s.repo.ApplicationExists(ctx, sub.Email, sub.RollNo)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate application: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: an application with this email or roll number was already submitted", e.ErrDuplicate)
	}

	app := &models.Application{
		ID:                 uuid.New(),
		ReferenceID:        newReferenceID(),
		Name:               sub.Name,
		Email:              sub.Email,
		Phone:              sub.Phone,
		RollNo:             sub.RollNo,
		Branch:             sub.Branch,
		Section:            sub.Section,
		Year:               sub.Year,
		CGPA:               sub.CGPA,
		Backlogs:           sub.Backlogs,
		Answers:            sub.Answers,
		LinkedIn:           sub.LinkedIn,
		TechnicalDomain:    models.TechnicalDomain(sub.TechnicalDomain),
		NonTechnicalDomain: models.NonTechnicalDomain(sub.NonTechnicalDomain),
		Status:             models.StatusReceived,
		Suitability: models.Suitability{
			Technical:    models.VerdictUndecided,
			NonTechnical: models.VerdictUndecided,
		},
	}
	if app.Answers == nil {
		app.Answers = map[string]string{}
	}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	received := models.Notification{
		Kind:      models.NotifyApplicationReceived,
		Recipient: app.Email,
		Data: map[string]string{
			"name":        app.Name,
			"referenceId": app.ReferenceID,
		},
	}
	go func() {
		s.producer.Produce(received)
	}()

	if resume != nil && len(resume.Data) > 0 && s.summarizer != nil {
		go s.summarize(context.WithoutCancel(ctx), app.ID, resume)
	}
	return app, nil
}

func (s *ApplicationService) summarize(ctx context.Context, id uuid.UUID, resume *models.Resume) {
	summary, err := s.summarizer.Summarize(ctx, resume.Filename, resume.Data)
	if err != nil {
		s.logger.Warn("Failed to summarise resume",
			zap.Error(err),
			zap.String("application_id", id.String()),
			zap.String("filename", resume.Filename),
		)
		return
	}
	if err := s.repo.SetResumeSummary(ctx, id, summary); err != nil {
		s.logger.Error("Failed to store resume summary",
			zap.Error(err),
			zap.String("application_id", id.String()),
		)
	}
}

// LookupStatus returns the public view of the application with the given
// reference ID.
func (s *ApplicationService) LookupStatus(ctx context.Context, referenceID string) (*models.StatusLookup, error) {
	ref := strings.ToUpper(strings.TrimSpace(referenceID))
	if ref == "" {
		return nil, fieldError("referenceId", "is required")
	}
	app, err := s.repo.GetApplicationByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: no application found for %s", e.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to look up application: %w", err)
	}
	return &models.StatusLookup{
		ReferenceID: app.ReferenceID,
		Name:        app.Name,
		Status:      app.Status,
		SubmittedAt: app.SubmittedAt,
	}, nil
}

// List returns one page of the applications visible to session.
func (s *ApplicationService) List(ctx context.Context, session models.Session, filter models.ApplicationFilter) (*models.ApplicationPage, error) {
	filter, err := scopeFilter(session, filter)
	if err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	offset, err := decodeCursor(filter.Cursor)
	if err != nil {
		return nil, err
	}
	size := filter.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	items, total, err := s.repo.FindApplications(ctx, filter, offset, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	if items == nil {
		items = []*models.Application{}
	}
	page := &models.ApplicationPage{Items: items, Total: total}
	if next := offset + len(items); len(items) > 0 && int64(next) < total {
		page.NextCursor = encodeCursor(next)
	}
	return page, nil
}

// Get returns one application. Applications outside a panel's domain are
// reported as not found.
func (s *ApplicationService) Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Application, error) {
	if err := checkSession(session); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid application ID", e.ErrInvalidInput)
	}
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if !inScope(session, app) {
		return nil, fmt.Errorf("%w: application %s", e.ErrNotFound, id)
	}
	return app, nil
}

// Review applies a partial review to an application. The overall rating is
// always recomputed from the sub-ratings. A status change into the notify
// set queues an email; delivery problems never undo the update.
func (s *ApplicationService) Review(ctx context.Context, session models.Session, update *models.ReviewUpdate) (*models.Application, error) {
	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid application ID", e.ErrInvalidInput)
	}
	if err := validateReview(update); err != nil {
		return nil, err
	}
	app, err := s.Get(ctx, session, update.ID)
	if err != nil {
		return nil, err
	}

	previous := app.Status
	if update.Status != nil {
		if err := CheckTransition(session, app.Status, *update.Status); err != nil {
			return nil, err
		}
		app.Status = *update.Status
	}
	if update.IsRecommended != nil {
		app.IsRecommended = *update.IsRecommended
	}
	if update.Suitability != nil {
		app.Suitability = *update.Suitability
	}
	if update.Ratings != nil {
		app.Ratings = *update.Ratings
	}
	app.Ratings = app.Ratings.Normalized()
	if update.Remarks != nil {
		app.Remarks = strings.TrimSpace(*update.Remarks)
	}
	app.ReviewedBy = session.Username

	if err := s.repo.SaveReview(ctx, app); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	if app.Status != previous {
		s.logger.Info("Application status changed",
			zap.String("application_id", app.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(app.Status)),
			zap.String("reviewer", session.Username),
		)
		s.notifyStatus(app)
	}
	return app, nil
}

// notifyStatus queues a status email when app's status is in the notify set.
func (s *ApplicationService) notifyStatus(app *models.Application) {
	if !s.notifyOn[app.Status] {
		return
	}
	n := models.Notification{
		Kind:      models.NotifyStatusChanged,
		Recipient: app.Email,
		Data: map[string]string{
			"name":        app.Name,
			"referenceId": app.ReferenceID,
			"status":      string(app.Status),
		},
	}
	go func() {
		s.producer.Produce(n)
	}()
}

func normalizeSubmission(sub *models.ApplicationSubmission) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.RollNo = strings.ToUpper(strings.TrimSpace(sub.RollNo))
	sub.Branch = strings.TrimSpace(sub.Branch)
	sub.Section = strings.TrimSpace(sub.Section)
	sub.LinkedIn = strings.TrimSpace(sub.LinkedIn)
	sub.TechnicalDomain = strings.ToLower(strings.TrimSpace(sub.TechnicalDomain))
	sub.NonTechnicalDomain = strings.ToLower(strings.TrimSpace(sub.NonTechnicalDomain))
}

func validateFilter(filter models.ApplicationFilter) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return fieldError("status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.TechnicalDomain != "" && !filter.TechnicalDomain.Valid() {
		return fieldError("technicalDomain", fmt.Sprintf("unknown domain %q", filter.TechnicalDomain))
	}
	if filter.Year < 0 {
		return fieldError("year", "must be >= 0")
	}
	return nil
}

// newReferenceID returns a short shareable ID such as REF-1A2B3C4D.
func newReferenceID() string {
	id := uuid.New()
	return "REF-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fieldError("cursor", "is malformed")
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, fieldError("cursor", "is malformed")
	}
	return offset, nil
}
