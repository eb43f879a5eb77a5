package controller

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/events"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/gartstein/clubhire/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestApplicationService_Submit(t *testing.T) {
	tests := []struct {
		name          string
		input         func() *models.ApplicationSubmission
		mockSetup     func(*MockApplicationRepository)
		expectedError error
	}{
		{
			name:  "successful submission",
			input: validSubmission,
			mockSetup: func(mr *MockApplicationRepository) {
				mr.applicationExists = func(_ context.Context, email, rollNo string) (bool, error) {
					assert.Equal(t, "asha@example.com", email)
					assert.Equal(t, "22CS101", rollNo)
					return false, nil
				}
				mr.createApplication = func(_ context.Context, a *models.Application) error {
					a.SubmittedAt = time.Now()
					return nil
				}
			},
		},
		{
			name:  "duplicate email or roll number",
			input: validSubmission,
			mockSetup: func(mr *MockApplicationRepository) {
				mr.applicationExists = func(_ context.Context, _, _ string) (bool, error) {
					return true, nil
				}
			},
			expectedError: e.ErrDuplicate,
		},
		{
			name: "invalid phone",
			input: func() *models.ApplicationSubmission {
				s := validSubmission()
				s.Phone = "12345"
				return s
			},
			mockSetup:     func(_ *MockApplicationRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "unknown technical domain",
			input: func() *models.ApplicationSubmission {
				s := validSubmission()
				s.TechnicalDomain = "blockchain"
				return s
			},
			mockSetup:     func(_ *MockApplicationRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name: "too many answers",
			input: func() *models.ApplicationSubmission {
				s := validSubmission()
				for i := 0; i < 11; i++ {
					s.Answers[uuid.NewString()] = "x"
				}
				return s
			},
			mockSetup:     func(_ *MockApplicationRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:  "repository error",
			input: validSubmission,
			mockSetup: func(mr *MockApplicationRepository) {
				mr.applicationExists = func(_ context.Context, _, _ string) (bool, error) {
					return false, nil
				}
				mr.createApplication = func(_ context.Context, _ *models.Application) error {
					return errors.New("database error")
				}
			},
			expectedError: errors.New("failed to create application"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockApplicationRepository{}
			tt.mockSetup(mockRepo)

			var wg sync.WaitGroup
			mockProducer := &MockProducer{wg: &wg}
			if tt.expectedError == nil {
				wg.Add(1)
			}
			svc := NewApplicationService(mockRepo, mockProducer, nil, nil, zaptest.NewLogger(t))

			app, err := svc.Submit(context.Background(), tt.input(), nil)

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, e.ErrDuplicate) || errors.Is(tt.expectedError, e.ErrInvalidInput) {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Contains(t, err.Error(), tt.expectedError.Error())
				}
				assert.Empty(t, mockProducer.Notifications())
				return
			}

			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(`^REF-[0-9A-F]{8}$`), app.ReferenceID)
			assert.Equal(t, models.StatusReceived, app.Status)
			assert.Equal(t, "22CS101", app.RollNo)
			assert.Equal(t, models.VerdictUndecided, app.Suitability.Technical)

			waitTimeout(t, &wg)
			notifications := mockProducer.Notifications()
			require.Len(t, notifications, 1)
			assert.Equal(t, models.NotifyApplicationReceived, notifications[0].Kind)
			assert.Equal(t, "asha@example.com", notifications[0].Recipient)
			assert.Equal(t, app.ReferenceID, notifications[0].Data["referenceId"])
		})
	}
}

func TestApplicationService_SubmitValidationFields(t *testing.T) {
	svc := NewApplicationService(&MockApplicationRepository{}, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	sub := validSubmission()
	sub.Email = "not-an-email"
	sub.Year = 9

	_, err := svc.Submit(context.Background(), sub, nil)

	var verr *e.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "year")
}

func TestApplicationService_SubmitSummarisesResume(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	var stored string
	mockRepo := &MockApplicationRepository{
		applicationExists: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		createApplication: func(_ context.Context, _ *models.Application) error { return nil },
		setResumeSummary: func(_ context.Context, _ uuid.UUID, summary string) error {
			stored = summary
			wg.Done()
			return nil
		},
	}
	svc := NewApplicationService(mockRepo, &MockProducer{wg: &wg}, &fakeSummarizer{summary: "Strong Go background."}, nil, zaptest.NewLogger(t))

	_, err := svc.Submit(context.Background(), validSubmission(), &models.Resume{Filename: "cv.txt", Data: []byte("Go, Kafka")})
	require.NoError(t, err)

	waitTimeout(t, &wg)
	assert.Equal(t, "Strong Go background.", stored)
}

func TestApplicationService_SubmitSummaryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mockRepo := &MockApplicationRepository{
		applicationExists: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		createApplication: func(_ context.Context, _ *models.Application) error { return nil },
		setResumeSummary: func(_ context.Context, _ uuid.UUID, _ string) error {
			t.Error("summary must not be stored")
			return nil
		},
	}
	svc := NewApplicationService(mockRepo, &MockProducer{}, &fakeSummarizer{err: errors.New("model unavailable")}, nil, zap.New(core))

	app, err := svc.Submit(context.Background(), validSubmission(), &models.Resume{Filename: "cv.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, app.Status)

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Failed to summarise resume").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestApplicationService_SubmitRejectsOversizedResume(t *testing.T) {
	svc := NewApplicationService(&MockApplicationRepository{}, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	_, err := svc.Submit(context.Background(), validSubmission(), &models.Resume{Filename: "cv.pdf", Data: make([]byte, MaxResumeBytes+1)})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestApplicationService_LookupStatus(t *testing.T) {
	submitted := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mockRepo := &MockApplicationRepository{
		getApplicationByReference: func(_ context.Context, ref string) (*models.Application, error) {
			if ref == "REF-0A1B2C3D" {
				return &models.Application{ReferenceID: ref, Name: "Asha", Status: models.StatusInterviewing, SubmittedAt: submitted}, nil
			}
			return nil, e.ErrNotFound
		},
	}
	svc := NewApplicationService(mockRepo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))

	got, err := svc.LookupStatus(context.Background(), " ref-0a1b2c3d ")
	require.NoError(t, err)
	assert.Equal(t, &models.StatusLookup{ReferenceID: "REF-0A1B2C3D", Name: "Asha", Status: models.StatusInterviewing, SubmittedAt: submitted}, got)

	_, err = svc.LookupStatus(context.Background(), "REF-FFFFFFFF")
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Contains(t, err.Error(), "no application found")

	_, err = svc.LookupStatus(context.Background(), "  ")
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestApplicationService_ListForcesPanelDomain(t *testing.T) {
	var gotFilter models.ApplicationFilter
	var gotOffset, gotLimit int
	mockRepo := &MockApplicationRepository{
		findApplications: func(_ context.Context, f models.ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
			gotFilter, gotOffset, gotLimit = f, offset, limit
			return nil, 0, nil
		},
	}
	svc := NewApplicationService(mockRepo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))

	page, err := svc.List(context.Background(), webPanel, models.ApplicationFilter{TechnicalDomain: models.DomainAIML})
	require.NoError(t, err)
	assert.Equal(t, models.DomainWeb, gotFilter.TechnicalDomain)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, DefaultPageSize, gotLimit)
	assert.NotNil(t, page.Items)

	_, err = svc.List(context.Background(), adminSession, models.ApplicationFilter{TechnicalDomain: models.DomainAIML, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, models.DomainAIML, gotFilter.TechnicalDomain)
	assert.Equal(t, MaxPageSize, gotLimit)
}

func TestApplicationService_PanelWithoutDomainIsForbidden(t *testing.T) {
	repo := newTestRepository(t)
	orphan := seedApplication(t, repo, "N1", "", models.StatusReceived)
	seedApplication(t, repo, "W1", models.DomainWeb, models.StatusReceived)
	svc := NewApplicationService(repo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	noDomain := models.Session{Role: models.RolePanel, Username: "lost"}

	_, err := svc.List(ctx, noDomain, models.ApplicationFilter{})
	assert.ErrorIs(t, err, e.ErrForbidden)

	_, err = svc.Get(ctx, noDomain, orphan.ID)
	assert.ErrorIs(t, err, e.ErrForbidden)

	_, err = svc.Review(ctx, noDomain, &models.ReviewUpdate{ID: orphan.ID, Remarks: utils.Ptr("x")})
	assert.ErrorIs(t, err, e.ErrForbidden)

	assert.False(t, inScope(noDomain, orphan))
	_, err = svc.List(ctx, models.Session{Role: "guest"}, models.ApplicationFilter{})
	assert.ErrorIs(t, err, e.ErrForbidden)
}

func TestApplicationService_ListPagination(t *testing.T) {
	repo := newTestRepository(t)
	for _, roll := range []string{"R1", "R2", "R3", "R4", "R5"} {
		seedApplication(t, repo, roll, models.DomainWeb, models.StatusReceived)
	}
	seedApplication(t, repo, "X1", models.DomainApp, models.StatusReceived)
	svc := NewApplicationService(repo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	seen := map[string]bool{}
	cursor := ""
	for pages := 0; pages < 10; pages++ {
		page, err := svc.List(ctx, webPanel, models.ApplicationFilter{Cursor: cursor, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, page.Total)
		for _, a := range page.Items {
			assert.Equal(t, models.DomainWeb, a.TechnicalDomain)
			assert.False(t, seen[a.RollNo], "duplicate across pages")
			seen[a.RollNo] = true
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, seen, 5)

	_, err := svc.List(ctx, adminSession, models.ApplicationFilter{Cursor: "%%%"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestApplicationService_GetScopesPanel(t *testing.T) {
	repo := newTestRepository(t)
	webApp := seedApplication(t, repo, "W1", models.DomainWeb, models.StatusReceived)
	svc := NewApplicationService(repo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	got, err := svc.Get(ctx, webPanel, webApp.ID)
	require.NoError(t, err)
	assert.Equal(t, webApp.ID, got.ID)

	_, err = svc.Get(ctx, aimlPanel, webApp.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = svc.Get(ctx, adminSession, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = svc.Get(ctx, adminSession, uuid.Nil)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestApplicationService_Review(t *testing.T) {
	tests := []struct {
		name        string
		session     models.Session
		domain      models.TechnicalDomain
		status      models.Status
		update      models.ReviewUpdate
		wantErr     error
		wantStatus  models.Status
		wantOverall float64
		wantNotify  bool
	}{
		{
			name:        "overall recomputed and client value ignored",
			session:     webPanel,
			domain:      models.DomainWeb,
			status:      models.StatusReceived,
			update:      models.ReviewUpdate{Ratings: &models.Ratings{Communication: 4, Technical: 3, ProblemSolving: 0, TeamFit: 5, Overall: 1.5}},
			wantStatus:  models.StatusReceived,
			wantOverall: 4.0,
		},
		{
			name:       "panel moves to interviewing",
			session:    webPanel,
			domain:     models.DomainWeb,
			status:     models.StatusReceived,
			update:     models.ReviewUpdate{Status: utils.Ptr(models.StatusInterviewing)},
			wantStatus: models.StatusInterviewing,
		},
		{
			name:    "panel cannot change a hired application",
			session: webPanel,
			domain:  models.DomainWeb,
			status:  models.StatusHired,
			update:  models.ReviewUpdate{Status: utils.Ptr(models.StatusInterviewing)},
			wantErr: e.ErrForbidden,
		},
		{
			name:       "panel may resend a terminal status",
			session:    webPanel,
			domain:     models.DomainWeb,
			status:     models.StatusRejected,
			update:     models.ReviewUpdate{Status: utils.Ptr(models.StatusRejected), Remarks: utils.Ptr("no show")},
			wantStatus: models.StatusRejected,
		},
		{
			name:    "panel outside its domain",
			session: aimlPanel,
			domain:  models.DomainWeb,
			status:  models.StatusReceived,
			update:  models.ReviewUpdate{IsRecommended: utils.Ptr(true)},
			wantErr: e.ErrNotFound,
		},
		{
			name:       "admin hires and applicant is notified",
			session:    adminSession,
			domain:     models.DomainApp,
			status:     models.StatusRecommended,
			update:     models.ReviewUpdate{Status: utils.Ptr(models.StatusHired)},
			wantStatus: models.StatusHired,
			wantNotify: true,
		},
		{
			name:       "admin reopens a rejected application",
			session:    adminSession,
			domain:     models.DomainApp,
			status:     models.StatusRejected,
			update:     models.ReviewUpdate{Status: utils.Ptr(models.StatusUnderProcessing)},
			wantStatus: models.StatusUnderProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t)
			app := seedApplication(t, repo, "A1", tt.domain, tt.status)

			var wg sync.WaitGroup
			producer := &MockProducer{wg: &wg}
			if tt.wantNotify {
				wg.Add(1)
			}
			svc := NewApplicationService(repo, producer, nil, nil, zaptest.NewLogger(t))

			update := tt.update
			update.ID = app.ID
			got, err := svc.Review(context.Background(), tt.session, &update)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, getErr := repo.GetApplication(context.Background(), app.ID)
				require.NoError(t, getErr)
				assert.Equal(t, tt.status, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantOverall, got.Ratings.Overall)
			assert.Equal(t, tt.session.Username, got.ReviewedBy)

			stored, err := repo.GetApplication(context.Background(), app.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, tt.wantOverall, stored.Ratings.Overall)

			if tt.wantNotify {
				waitTimeout(t, &wg)
				notifications := producer.Notifications()
				require.Len(t, notifications, 1)
				assert.Equal(t, models.NotifyStatusChanged, notifications[0].Kind)
				assert.Equal(t, string(tt.wantStatus), notifications[0].Data["status"])
			} else {
				assert.Empty(t, producer.Notifications())
			}
		})
	}
}

type failingDispatcher struct {
	calls chan models.Notification
}

func (f *failingDispatcher) Send(_ context.Context, n models.Notification) error {
	f.calls <- n
	return errors.New("smtp down")
}

func TestApplicationService_NotificationFailureDoesNotBlockUpdate(t *testing.T) {
	repo := newTestRepository(t)
	app := seedApplication(t, repo, "N1", models.DomainWeb, models.StatusRecommended)

	dispatcher := &failingDispatcher{calls: make(chan models.Notification, 8)}
	queue := events.NewLocalQueue(dispatcher, 4, zaptest.NewLogger(t))
	defer queue.Close()
	svc := NewApplicationService(repo, queue, nil, nil, zaptest.NewLogger(t))

	got, err := svc.Review(context.Background(), adminSession, &models.ReviewUpdate{ID: app.ID, Status: utils.Ptr(models.StatusRejected)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)

	select {
	case n := <-dispatcher.calls:
		assert.Equal(t, app.Email, n.Recipient)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never attempted")
	}

	stored, err := repo.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
}

func TestApplicationService_CustomNotifySet(t *testing.T) {
	repo := newTestRepository(t)
	app := seedApplication(t, repo, "C1", models.DomainWeb, models.StatusReceived)

	var wg sync.WaitGroup
	wg.Add(1)
	producer := &MockProducer{wg: &wg}
	svc := NewApplicationService(repo, producer, nil, []models.Status{models.StatusInterviewing}, zaptest.NewLogger(t))

	_, err := svc.Review(context.Background(), webPanel, &models.ReviewUpdate{ID: app.ID, Status: utils.Ptr(models.StatusInterviewing)})
	require.NoError(t, err)

	waitTimeout(t, &wg)
	assert.Equal(t, "Interviewing", producer.Notifications()[0].Data["status"])
}
