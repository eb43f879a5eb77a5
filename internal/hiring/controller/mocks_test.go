package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/db"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockApplicationRepository implements ApplicationRepository for testing.
type MockApplicationRepository struct {
	createApplication         func(context.Context, *models.Application) error
	applicationExists         func(context.Context, string, string) (bool, error)
	getApplication            func(context.Context, uuid.UUID) (*models.Application, error)
	getApplicationByReference func(context.Context, string) (*models.Application, error)
	findApplications          func(context.Context, models.ApplicationFilter, int, int) ([]*models.Application, int64, error)
	saveReview                func(context.Context, *models.Application) error
	updateApplicationStatus   func(context.Context, uuid.UUID, models.Status, string) error
	setResumeSummary          func(context.Context, uuid.UUID, string) error
}

func (m *MockApplicationRepository) CreateApplication(ctx context.Context, a *models.Application) error {
	return m.createApplication(ctx, a)
}

func (m *MockApplicationRepository) ApplicationExists(ctx context.Context, email, rollNo string) (bool, error) {
	return m.applicationExists(ctx, email, rollNo)
}

func (m *MockApplicationRepository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return m.getApplication(ctx, id)
}

func (m *MockApplicationRepository) GetApplicationByReference(ctx context.Context, ref string) (*models.Application, error) {
	return m.getApplicationByReference(ctx, ref)
}

func (m *MockApplicationRepository) FindApplications(ctx context.Context, f models.ApplicationFilter, offset, limit int) ([]*models.Application, int64, error) {
	return m.findApplications(ctx, f, offset, limit)
}

func (m *MockApplicationRepository) SaveReview(ctx context.Context, a *models.Application) error {
	return m.saveReview(ctx, a)
}

func (m *MockApplicationRepository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, s models.Status, reviewer string) error {
	return m.updateApplicationStatus(ctx, id, s, reviewer)
}

func (m *MockApplicationRepository) SetResumeSummary(ctx context.Context, id uuid.UUID, summary string) error {
	return m.setResumeSummary(ctx, id, summary)
}

// MockProducer is a test double for the notification outbox.
type MockProducer struct {
	mu       sync.Mutex
	produced []models.Notification
	wg       *sync.WaitGroup
}

// Produce records the notification and signals the wait group.
func (m *MockProducer) Produce(n models.Notification) {
	m.mu.Lock()
	m.produced = append(m.produced, n)
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
}

func (m *MockProducer) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.produced...)
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string, _ []byte) (string, error) {
	return f.summary, f.err
}

// newTestRepository opens a migrated in-memory SQLite store.
func newTestRepository(t *testing.T) *db.Repository {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := db.NewRepositoryFromDB(gdb)
	require.NoError(t, err, "failed to migrate test database")
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// waitTimeout waits for wg or fails the test after a second.
func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notifications")
	}
}

var (
	adminSession = models.Session{Role: models.RoleAdmin, Username: "root"}
	webPanel     = models.Session{Role: models.RolePanel, Username: "webpanel", Domain: models.DomainWeb}
	aimlPanel    = models.Session{Role: models.RolePanel, Username: "aimlpanel", Domain: models.DomainAIML}
)

func validSubmission() *models.ApplicationSubmission {
	return &models.ApplicationSubmission{
		Name:            "Asha Rao",
		Email:           "Asha@Example.com",
		Phone:           "9876543210",
		RollNo:          "22cs101",
		Branch:          "CSE",
		Section:         "A",
		Year:            2,
		CGPA:            8.4,
		Answers:         map[string]string{"why": "I like building things"},
		TechnicalDomain: "web",
	}
}

// seedApplication stores an application with the given roll number, domain
// and status.
func seedApplication(t *testing.T, repo *db.Repository, rollNo string, domain models.TechnicalDomain, status models.Status) *models.Application {
	t.Helper()
	app := &models.Application{
		ID:              uuid.New(),
		ReferenceID:     newReferenceID(),
		Name:            "Applicant " + rollNo,
		Email:           rollNo + "@example.com",
		Phone:           "9876543210",
		RollNo:          rollNo,
		Branch:          "CSE",
		Section:         "A",
		Year:            2,
		Answers:         map[string]string{},
		TechnicalDomain: domain,
		Status:          status,
		Suitability:     models.Suitability{Technical: models.VerdictUndecided, NonTechnical: models.VerdictUndecided},
	}
	require.NoError(t, repo.CreateApplication(context.Background(), app))
	return app
}
