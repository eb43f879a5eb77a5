package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	"github.com/gartstein/clubhire/internal/hiring/controller"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// ApplicationController is the application lifecycle the handlers invoke.
type ApplicationController interface {
	Submit(ctx context.Context, sub *models.ApplicationSubmission, resume *models.Resume) (*models.Application, error)
	LookupStatus(ctx context.Context, referenceID string) (*models.StatusLookup, error)
	List(ctx context.Context, session models.Session, filter models.ApplicationFilter) (*models.ApplicationPage, error)
	Get(ctx context.Context, session models.Session, id uuid.UUID) (*models.Application, error)
	Review(ctx context.Context, session models.Session, update *models.ReviewUpdate) (*models.Application, error)
	BulkUpdateStatus(ctx context.Context, session models.Session, filter models.ApplicationFilter, target models.Status) (int, error)
	BulkHire(ctx context.Context, session models.Session, rollNos []string) (*models.BulkHireResult, error)
	ExportHired(ctx context.Context, session models.Session, w io.Writer) error
}

// AccountController authenticates reviewers and manages their accounts.
type AccountController interface {
	Login(ctx context.Context, username, password string) (string, time.Time, models.Session, error)
	CreateReviewer(ctx context.Context, in *models.NewReviewer) (*models.Reviewer, error)
}

// TeamController manages the roster.
type TeamController interface {
	CreateCategory(ctx context.Context, in *models.NewCategory) (*models.TeamCategory, error)
	ListCategories(ctx context.Context) ([]*models.TeamCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	Invite(ctx context.Context, in *models.TeamInvite) (*models.TeamMember, error)
	GetInvite(ctx context.Context, token string) (*models.TeamMember, error)
	Onboard(ctx context.Context, token string, in *models.Onboarding) (*models.TeamMember, error)
	Activate(ctx context.Context, id uuid.UUID) (*models.TeamMember, error)
	DeleteMember(ctx context.Context, id uuid.UUID) error
	ListMembers(ctx context.Context) ([]*models.TeamMember, error)
	Roster(ctx context.Context) ([]*models.RosterSection, error)
}

// EventController manages events and registrations.
type EventController interface {
	Create(ctx context.Context, in *models.EventInput) (*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, in *models.EventInput) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Register(ctx context.Context, eventID uuid.UUID, in *models.RegistrationInput) (*models.Registration, error)
	ExportRegistrations(ctx context.Context, eventID uuid.UUID, w io.Writer) error
}

// ContentController manages notices and the visitor log.
type ContentController interface {
	CreateNotice(ctx context.Context, in *models.NoticeInput) (*models.Notice, error)
	UpdateNotice(ctx context.Context, id uuid.UUID, in *models.NoticeInput) (*models.Notice, error)
	DeleteNotice(ctx context.Context, id uuid.UUID) error
	ListNotices(ctx context.Context, activeOnly bool) ([]*models.Notice, error)
	RecordVisit(ctx context.Context, path, ip, userAgent string) error
	ListVisits(ctx context.Context, cursor string, pageSize int) (*controller.VisitPage, error)
}

// RateLimiter throttles public write endpoints per client. A refusal
// carries the time until the caller may retry.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration)
}

// Services bundles the controllers served over HTTP.
type Services struct {
	Applications ApplicationController
	Accounts     AccountController
	Team         TeamController
	Events       EventController
	Content      ContentController
}

// Handler translates HTTP requests into controller calls.
type Handler struct {
	svc           Services
	sessions      *auth.Middleware
	limiter       RateLimiter
	proxies       *TrustedProxies
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler constructs a Handler. limiter may be nil; a nil proxies
// trusts no forwarding headers.
func NewHandler(svc Services, sessions *auth.Middleware, limiter RateLimiter, proxies *TrustedProxies, secureCookies bool, logger *zap.Logger) *Handler {
	return &Handler{
		svc:           svc,
		sessions:      sessions,
		limiter:       limiter,
		proxies:       proxies,
		secureCookies: secureCookies,
		logger:        logger.Named("http_handler"),
	}
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		// public
		{http.MethodPost, "/v1/applications", h.limited(h.submitApplication)},
		{http.MethodGet, "/v1/applications/status/{ref}", h.lookupStatus},
		{http.MethodGet, "/v1/events", h.listEvents},
		{http.MethodPost, "/v1/events/{id}/registrations", h.limited(h.registerForEvent)},
		{http.MethodGet, "/v1/team", h.roster},
		{http.MethodGet, "/v1/team/invites/{token}", h.getInvite},
		{http.MethodPost, "/v1/team/onboard/{token}", h.limited(h.onboard)},
		{http.MethodGet, "/v1/notices", h.listActiveNotices},
		{http.MethodPost, "/v1/visits", h.limited(h.recordVisit)},
		{http.MethodPost, "/v1/auth/login", h.limited(h.login)},
		{http.MethodPost, "/v1/auth/logout", h.logout},
		{http.MethodGet, "/v1/auth/me", h.me},

		// admin or panel
		{http.MethodGet, "/v1/review/applications", h.listApplications},
		{http.MethodGet, "/v1/review/applications/{id}", h.getApplication},
		{http.MethodPatch, "/v1/review/applications/{id}", h.reviewApplication},

		// admin
		{http.MethodPost, "/v1/admin/applications/bulk-status", h.bulkUpdateStatus},
		{http.MethodPost, "/v1/admin/applications/bulk-hire", h.bulkHire},
		{http.MethodGet, "/v1/admin/exports/hired", h.exportHired},
		{http.MethodGet, "/v1/admin/exports/events/{id}", h.exportRegistrations},
		{http.MethodGet, "/v1/admin/team", h.listMembers},
		{http.MethodPost, "/v1/admin/team/invites", h.invite},
		{http.MethodPost, "/v1/admin/team/{id}/activate", h.activateMember},
		{http.MethodDelete, "/v1/admin/team/{id}", h.deleteMember},
		{http.MethodGet, "/v1/admin/team/categories", h.listCategories},
		{http.MethodPost, "/v1/admin/team/categories", h.createCategory},
		{http.MethodDelete, "/v1/admin/team/categories/{id}", h.deleteCategory},
		{http.MethodPost, "/v1/admin/events", h.createEvent},
		{http.MethodPut, "/v1/admin/events/{id}", h.updateEvent},
		{http.MethodDelete, "/v1/admin/events/{id}", h.deleteEvent},
		{http.MethodGet, "/v1/admin/notices", h.listAllNotices},
		{http.MethodPost, "/v1/admin/notices", h.createNotice},
		{http.MethodPut, "/v1/admin/notices/{id}", h.updateNotice},
		{http.MethodDelete, "/v1/admin/notices/{id}", h.deleteNotice},
		{http.MethodGet, "/v1/admin/visitors", h.listVisitors},
		{http.MethodPost, "/v1/admin/reviewers", h.createReviewer},
	}
}

// Register attaches every route to mux.
func (h *Handler) Register(mux *runtime.ServeMux) error {
	for _, rt := range h.routes() {
		if err := mux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return err
		}
	}
	return nil
}

// limited rejects callers over their per-IP limit with 429.
func (h *Handler) limited(next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		if h.limiter == nil {
			next(w, r, params)
			return
		}
		ok, retryAfter := h.limiter.Allow(r.Context(), r.URL.Path+"|"+h.proxies.ClientIP(r))
		if !ok {
			if retryAfter > 0 {
				secs := (retryAfter + time.Second - 1) / time.Second
				w.Header().Set("Retry-After", strconv.Itoa(int(secs)))
			}
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests, try again later"})
			return
		}
		next(w, r, params)
	}
}

// session returns the verified session of r. The middleware guarantees one
// on protected routes.
func session(r *http.Request) models.Session {
	s, _ := auth.SessionFromContext(r.Context())
	return s
}
