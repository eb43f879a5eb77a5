package controller

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestApplicationService_BulkHire(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	a := seedApplication(t, repo, "A", models.DomainWeb, models.StatusInterviewing)
	b := seedApplication(t, repo, "B", models.DomainApp, models.StatusReceived)
	c := seedApplication(t, repo, "C", models.DomainAIML, models.StatusRecommended)
	d := seedApplication(t, repo, "D", models.DomainWeb, models.StatusUnderProcessing)
	hired := seedApplication(t, repo, "E", models.DomainWeb, models.StatusHired)
	rejected := seedApplication(t, repo, "F", models.DomainWeb, models.StatusRejected)

	// A, C hired; B, D rejected. Two notifications each from the default set.
	var wg sync.WaitGroup
	wg.Add(4)
	producer := &MockProducer{wg: &wg}
	svc := NewApplicationService(repo, producer, nil, nil, zaptest.NewLogger(t))

	result, err := svc.BulkHire(ctx, adminSession, []string{"a", " C ", "F", "Z", "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Hired)
	assert.Equal(t, 2, result.Rejected)
	assert.Equal(t, []string{"Z"}, result.Unmatched)

	want := map[uuid.UUID]models.Status{
		a.ID:        models.StatusHired,
		b.ID:        models.StatusRejected,
		c.ID:        models.StatusHired,
		d.ID:        models.StatusRejected,
		hired.ID:    models.StatusHired,
		rejected.ID: models.StatusRejected,
	}
	for id, status := range want {
		stored, err := repo.GetApplication(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status, stored.RollNo)
	}
	stored, err := repo.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", stored.ReviewedBy)

	waitTimeout(t, &wg)
	recipients := map[string]string{}
	for _, n := range producer.Notifications() {
		recipients[n.Recipient] = n.Data["status"]
	}
	assert.Equal(t, map[string]string{
		"A@example.com": "Hired",
		"B@example.com": "Rejected",
		"C@example.com": "Hired",
		"D@example.com": "Rejected",
	}, recipients)
}

func TestApplicationService_BulkHireRequiresAdmin(t *testing.T) {
	svc := NewApplicationService(&MockApplicationRepository{}, &MockProducer{}, nil, nil, zaptest.NewLogger(t))
	_, err := svc.BulkHire(context.Background(), webPanel, []string{"A"})
	assert.ErrorIs(t, err, e.ErrForbidden)

	_, err = svc.BulkHire(context.Background(), adminSession, []string{" ", ""})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func TestApplicationService_BulkUpdateStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	web1 := seedApplication(t, repo, "W1", models.DomainWeb, models.StatusReceived)
	web2 := seedApplication(t, repo, "W2", models.DomainWeb, models.StatusInterviewing)
	webDone := seedApplication(t, repo, "W3", models.DomainWeb, models.StatusHired)
	app1 := seedApplication(t, repo, "P1", models.DomainApp, models.StatusReceived)

	svc := NewApplicationService(repo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))

	_, err := svc.BulkUpdateStatus(ctx, webPanel, models.ApplicationFilter{}, models.StatusUnderProcessing)
	assert.ErrorIs(t, err, e.ErrForbidden)

	_, err = svc.BulkUpdateStatus(ctx, adminSession, models.ApplicationFilter{}, "Pending")
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	updated, err := svc.BulkUpdateStatus(ctx, adminSession, models.ApplicationFilter{TechnicalDomain: models.DomainWeb}, models.StatusUnderProcessing)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	for id, status := range map[uuid.UUID]models.Status{
		web1.ID:    models.StatusUnderProcessing,
		web2.ID:    models.StatusUnderProcessing,
		webDone.ID: models.StatusHired,
		app1.ID:    models.StatusReceived,
	} {
		stored, err := repo.GetApplication(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
}

func TestApplicationService_BulkUpdateSurvivesCancellationAndFailures(t *testing.T) {
	apps := []*models.Application{
		{ID: uuid.New(), Status: models.StatusReceived, Email: "one@example.com"},
		{ID: uuid.New(), Status: models.StatusReceived, Email: "two@example.com"},
		{ID: uuid.New(), Status: models.StatusReceived, Email: "three@example.com"},
	}
	var wg sync.WaitGroup
	wg.Add(2)
	mockRepo := &MockApplicationRepository{
		findApplications: func(_ context.Context, _ models.ApplicationFilter, _, _ int) ([]*models.Application, int64, error) {
			return apps, int64(len(apps)), nil
		},
		updateApplicationStatus: func(ctx context.Context, id uuid.UUID, _ models.Status, _ string) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if id == apps[1].ID {
				return errors.New("deadlock detected")
			}
			return nil
		},
	}
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewApplicationService(mockRepo, &MockProducer{wg: &wg}, nil, nil, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	updated, err := svc.BulkUpdateStatus(ctx, adminSession, models.ApplicationFilter{}, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, 1, logs.FilterMessage("Failed to update application status").Len())
	waitTimeout(t, &wg)
}

func TestParseRollNumbers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "single column", input: "rollNo\nA\nC\n", want: []string{"A", "C"}},
		{name: "extra columns and case", input: "name,ROLLNO\nAsha, 22cs1\nRavi,22cs2\n", want: []string{"22cs1", "22cs2"}},
		{name: "blank rows skipped", input: "rollNo\nA\n\n \nB\n", want: []string{"A", "B"}},
		{name: "byte order mark", input: "\uFEFFrollNo\nA\n", want: []string{"A"}},
		{name: "short rows", input: "name,rollNo\nonly-name\nx,B\n", want: []string{"B"}},
		{name: "header only", input: "rollNo\n", want: nil},
		{name: "missing header", input: "name\nA\n", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "malformed quotes", input: "rollNo\n\"A\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRollNumbers(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, e.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplicationService_ExportHired(t *testing.T) {
	repo := newTestRepository(t)
	seedApplication(t, repo, "H1", models.DomainWeb, models.StatusHired)
	seedApplication(t, repo, "R1", models.DomainWeb, models.StatusRejected)
	svc := NewApplicationService(repo, &MockProducer{}, nil, nil, zaptest.NewLogger(t))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportHired(context.Background(), adminSession, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, hiredExportHeader, records[0])
	assert.Equal(t, "H1", records[1][4])
	assert.Equal(t, "0.00", records[1][10])

	assert.ErrorIs(t, svc.ExportHired(context.Background(), webPanel, &buf), e.ErrForbidden)
}
