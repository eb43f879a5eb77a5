package controller

import (
	"fmt"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
)

// panelStatuses are the only statuses a domain panel may assign.
var panelStatuses = map[models.Status]bool{
	models.StatusReceived:        true,
	models.StatusUnderProcessing: true,
	models.StatusInterviewing:    true,
}

// CheckTransition reports whether session may move an application from
// status from to status to. Admins may set any status. Panels may only move
// non-final applications between the early pipeline stages. Re-sending the
// current status is always allowed.
func CheckTransition(session models.Session, from, to models.Status) error {
	if !to.Valid() {
		return fieldError("status", fmt.Sprintf("unknown status %q", to))
	}
	if from == to {
		return nil
	}
	switch {
	case session.IsAdmin():
		return nil
	case session.IsPanel():
		if from.Terminal() {
			return fmt.Errorf("%w: final decision %q can only be changed by an admin", e.ErrForbidden, from)
		}
		if !panelStatuses[to] {
			return fmt.Errorf("%w: panels cannot set status %q", e.ErrForbidden, to)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", e.ErrForbidden, session.Role)
	}
}

// AllowedStatuses lists the statuses session may assign to an application
// currently in status from, in pipeline order. It always includes from.
func AllowedStatuses(session models.Session, from models.Status) []models.Status {
	allowed := make([]models.Status, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		if CheckTransition(session, from, s) == nil {
			allowed = append(allowed, s)
		}
	}
	return allowed
}

// checkSession rejects sessions that cannot be scoped: unknown roles and
// panels without a domain.
func checkSession(session models.Session) error {
	switch {
	case session.IsAdmin():
		return nil
	case session.IsPanel():
		if session.Domain == "" {
			return fmt.Errorf("%w: panel session has no domain", e.ErrForbidden)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", e.ErrForbidden, session.Role)
	}
}

// inScope reports whether session may see app at all.
func inScope(session models.Session, app *models.Application) bool {
	switch {
	case session.IsAdmin():
		return true
	case session.IsPanel():
		return session.Domain != "" && app.TechnicalDomain == session.Domain
	default:
		return false
	}
}

// scopeFilter forces a panel's listing onto its own domain.
func scopeFilter(session models.Session, filter models.ApplicationFilter) (models.ApplicationFilter, error) {
	if err := checkSession(session); err != nil {
		return filter, err
	}
	if session.IsPanel() {
		filter.TechnicalDomain = session.Domain
	}
	return filter, nil
}

func validateReview(update *models.ReviewUpdate) error {
	fields := map[string]string{}
	if r := update.Ratings; r != nil {
		for name, v := range map[string]int{
			"ratings.communication":  r.Communication,
			"ratings.technical":      r.Technical,
			"ratings.problemSolving": r.ProblemSolving,
			"ratings.teamFit":        r.TeamFit,
		} {
			if v < 0 || v > 5 {
				fields[name] = "must be between 0 and 5"
			}
		}
	}
	if s := update.Suitability; s != nil {
		if !validVerdict(s.Technical) {
			fields["suitability.technical"] = "must be one of: undecided yes no"
		}
		if !validVerdict(s.NonTechnical) {
			fields["suitability.nonTechnical"] = "must be one of: undecided yes no"
		}
	}
	if update.Remarks != nil && len(*update.Remarks) > 2000 {
		fields["remarks"] = "must be at most 2000"
	}
	if len(fields) > 0 {
		return e.NewValidationError(fields)
	}
	return nil
}

func validVerdict(v models.Verdict) bool {
	return v == models.VerdictUndecided || v == models.VerdictYes || v == models.VerdictNo
}
