package controller

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"go.uber.org/zap"
)

// BulkUpdateStatus moves every non-final application matching filter to
// target and returns how many records changed. Each record is updated on
// its own; failures are logged and skipped. The run is detached from ctx
// cancellation so a dropped client cannot stop it halfway.
func (s *ApplicationService) BulkUpdateStatus(ctx context.Context, session models.Session, filter models.ApplicationFilter, target models.Status) (int, error) {
	if !session.IsAdmin() {
		return 0, fmt.Errorf("%w: bulk updates require an admin", e.ErrForbidden)
	}
	if !target.Valid() {
		return 0, fieldError("status", fmt.Sprintf("unknown status %q", target))
	}
	if err := validateFilter(filter); err != nil {
		return 0, err
	}
	ctx = context.WithoutCancel(ctx)

	filter.Cursor = ""
	apps, _, err := s.repo.FindApplications(ctx, filter, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to load applications: %w", err)
	}

	updated := 0
	for _, app := range apps {
		if app.Status.Terminal() || app.Status == target {
			continue
		}
		if s.applyStatus(ctx, session, app, target) {
			updated++
		}
	}
	s.logger.Info("Bulk status update finished",
		zap.String("status", string(target)),
		zap.Int("matched", len(apps)),
		zap.Int("updated", updated),
		zap.String("reviewer", session.Username),
	)
	return updated, nil
}

// BulkHire marks every listed roll number Hired and every other non-final
// application Rejected. Applications that already carry a final decision
// are left untouched. Listed roll numbers that match no application are
// reported back.
func (s *ApplicationService) BulkHire(ctx context.Context, session models.Session, rollNos []string) (*models.BulkHireResult, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("%w: bulk hiring requires an admin", e.ErrForbidden)
	}
	listed := make(map[string]bool, len(rollNos))
	order := make([]string, 0, len(rollNos))
	for _, r := range rollNos {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" || listed[r] {
			continue
		}
		listed[r] = true
		order = append(order, r)
	}
	if len(order) == 0 {
		return nil, fieldError("rollNo", "no roll numbers listed")
	}
	ctx = context.WithoutCancel(ctx)

	apps, _, err := s.repo.FindApplications(ctx, models.ApplicationFilter{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	result := &models.BulkHireResult{Unmatched: []string{}}
	matched := make(map[string]bool, len(order))
	for _, app := range apps {
		hire := listed[app.RollNo]
		if hire {
			matched[app.RollNo] = true
		}
		if app.Status.Terminal() {
			continue
		}
		target := models.StatusRejected
		if hire {
			target = models.StatusHired
		}
		if !s.applyStatus(ctx, session, app, target) {
			continue
		}
		if hire {
			result.Hired++
		} else {
			result.Rejected++
		}
	}
	for _, r := range order {
		if !matched[r] {
			result.Unmatched = append(result.Unmatched, r)
		}
	}
	s.logger.Info("Bulk hire finished",
		zap.Int("hired", result.Hired),
		zap.Int("rejected", result.Rejected),
		zap.Int("unmatched", len(result.Unmatched)),
		zap.String("reviewer", session.Username),
	)
	return result, nil
}

// applyStatus persists one status change and queues its notification.
func (s *ApplicationService) applyStatus(ctx context.Context, session models.Session, app *models.Application, target models.Status) bool {
	if err := s.repo.UpdateApplicationStatus(ctx, app.ID, target, session.Username); err != nil {
		s.logger.Error("Failed to update application status",
			zap.Error(err),
			zap.String("application_id", app.ID.String()),
			zap.String("status", string(target)),
		)
		return false
	}
	app.Status = target
	app.ReviewedBy = session.Username
	s.notifyStatus(app)
	return true
}

// ParseRollNumbers reads the rollNo column of a CSV document. The header
// match is case-insensitive and extra columns are ignored.
func ParseRollNumbers(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fieldError("file", "is empty")
	}
	if err != nil {
		return nil, fieldError("file", "is not valid CSV")
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")), "rollNo") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fieldError("file", "missing rollNo header")
	}

	var rollNos []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fieldError("file", "is not valid CSV")
		}
		if col < len(record) {
			if v := strings.TrimSpace(record[col]); v != "" {
				rollNos = append(rollNos, v)
			}
		}
	}
	return rollNos, nil
}

var hiredExportHeader = []string{
	"referenceId", "name", "email", "phone", "rollNo", "branch", "section",
	"year", "technicalDomain", "nonTechnicalDomain", "overall",
}

// ExportHired writes every hired applicant to w as CSV.
func (s *ApplicationService) ExportHired(ctx context.Context, session models.Session, w io.Writer) error {
	if !session.IsAdmin() {
		return fmt.Errorf("%w: exports require an admin", e.ErrForbidden)
	}
	apps, _, err := s.repo.FindApplications(ctx, models.ApplicationFilter{Status: models.StatusHired}, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to load hired applications: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(hiredExportHeader); err != nil {
		return err
	}
	for _, a := range apps {
		if err := cw.Write([]string{
			a.ReferenceID, a.Name, a.Email, a.Phone, a.RollNo, a.Branch, a.Section,
			strconv.Itoa(a.Year), string(a.TechnicalDomain), string(a.NonTechnicalDomain),
			strconv.FormatFloat(a.Ratings.Overall, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
