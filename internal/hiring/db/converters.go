package db

import (
	"fmt"

	dbmodels "github.com/gartstein/clubhire/internal/hiring/db/models"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"gorm.io/datatypes"
)

func applicationToRecord(a *models.Application) *dbmodels.Application {
	answers := datatypes.JSONMap{}
	for k, v := range a.Answers {
		answers[k] = v
	}
	return &dbmodels.Application{
		ID:                      a.ID,
		ReferenceID:             a.ReferenceID,
		Name:                    a.Name,
		Email:                   a.Email,
		Phone:                   a.Phone,
		RollNo:                  a.RollNo,
		Branch:                  a.Branch,
		Section:                 a.Section,
		Year:                    a.Year,
		CGPA:                    a.CGPA,
		Backlogs:                a.Backlogs,
		Answers:                 answers,
		LinkedIn:                a.LinkedIn,
		ResumeSummary:           a.ResumeSummary,
		TechnicalDomain:         string(a.TechnicalDomain),
		NonTechnicalDomain:      string(a.NonTechnicalDomain),
		Status:                  string(a.Status),
		IsRecommended:           a.IsRecommended,
		SuitabilityTechnical:    string(a.Suitability.Technical),
		SuitabilityNonTechnical: string(a.Suitability.NonTechnical),
		RatingCommunication:     a.Ratings.Communication,
		RatingTechnical:         a.Ratings.Technical,
		RatingProblemSolving:    a.Ratings.ProblemSolving,
		RatingTeamFit:           a.Ratings.TeamFit,
		RatingOverall:           a.Ratings.Overall,
		Remarks:                 a.Remarks,
		ReviewedBy:              a.ReviewedBy,
		CreatedAt:               a.SubmittedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

func recordToApplication(r *dbmodels.Application) *models.Application {
	answers := make(map[string]string, len(r.Answers))
	for k, v := range r.Answers {
		if s, ok := v.(string); ok {
			answers[k] = s
		} else {
			answers[k] = fmt.Sprint(v)
		}
	}
	return &models.Application{
		ID:                 r.ID,
		ReferenceID:        r.ReferenceID,
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		RollNo:             r.RollNo,
		Branch:             r.Branch,
		Section:            r.Section,
		Year:               r.Year,
		CGPA:               r.CGPA,
		Backlogs:           r.Backlogs,
		Answers:            answers,
		LinkedIn:           r.LinkedIn,
		ResumeSummary:      r.ResumeSummary,
		TechnicalDomain:    models.TechnicalDomain(r.TechnicalDomain),
		NonTechnicalDomain: models.NonTechnicalDomain(r.NonTechnicalDomain),
		Status:             models.Status(r.Status),
		IsRecommended:      r.IsRecommended,
		Suitability: models.Suitability{
			Technical:    models.Verdict(r.SuitabilityTechnical),
			NonTechnical: models.Verdict(r.SuitabilityNonTechnical),
		},
		Ratings: models.Ratings{
			Communication:  r.RatingCommunication,
			Technical:      r.RatingTechnical,
			ProblemSolving: r.RatingProblemSolving,
			TeamFit:        r.RatingTeamFit,
			Overall:        r.RatingOverall,
		},
		Remarks:     r.Remarks,
		ReviewedBy:  r.ReviewedBy,
		SubmittedAt: r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func reviewerToRecord(r *models.Reviewer) *dbmodels.Reviewer {
	return &dbmodels.Reviewer{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         string(r.Role),
		Domain:       string(r.Domain),
		CreatedAt:    r.CreatedAt,
	}
}

func recordToReviewer(r *dbmodels.Reviewer) *models.Reviewer {
	return &models.Reviewer{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         models.Role(r.Role),
		Domain:       models.TechnicalDomain(r.Domain),
		CreatedAt:    r.CreatedAt,
	}
}

func memberToRecord(m *models.TeamMember) *dbmodels.TeamMember {
	rec := &dbmodels.TeamMember{
		ID:              m.ID,
		Email:           m.Email,
		Name:            m.Name,
		Title:           m.Title,
		CategoryID:      m.CategoryID,
		ImageURL:        m.ImageURL,
		LinkedIn:        m.LinkedIn,
		Status:          string(m.Status),
		InviteExpiresAt: m.InviteExpiresAt,
		CreatedAt:       m.CreatedAt,
	}
	if m.InviteToken != "" {
		token := m.InviteToken
		rec.InviteToken = &token
	}
	return rec
}

func recordToMember(r *dbmodels.TeamMember) *models.TeamMember {
	m := &models.TeamMember{
		ID:              r.ID,
		Email:           r.Email,
		Name:            r.Name,
		Title:           r.Title,
		CategoryID:      r.CategoryID,
		ImageURL:        r.ImageURL,
		LinkedIn:        r.LinkedIn,
		Status:          models.MemberStatus(r.Status),
		InviteExpiresAt: r.InviteExpiresAt,
		CreatedAt:       r.CreatedAt,
	}
	if r.InviteToken != nil {
		m.InviteToken = *r.InviteToken
	}
	return m
}

func recordToCategory(r *dbmodels.TeamCategory) *models.TeamCategory {
	return &models.TeamCategory{ID: r.ID, Name: r.Name, Position: r.Position}
}

func eventToRecord(ev *models.Event) *dbmodels.Event {
	return &dbmodels.Event{
		ID:               ev.ID,
		Title:            ev.Title,
		Description:      ev.Description,
		Venue:            ev.Venue,
		StartsAt:         ev.StartsAt,
		Capacity:         ev.Capacity,
		RegistrationOpen: ev.RegistrationOpen,
		CreatedAt:        ev.CreatedAt,
	}
}

func recordToEvent(r *dbmodels.Event) *models.Event {
	return &models.Event{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Venue:            r.Venue,
		StartsAt:         r.StartsAt,
		Capacity:         r.Capacity,
		RegistrationOpen: r.RegistrationOpen,
		CreatedAt:        r.CreatedAt,
	}
}

func recordToRegistration(r *dbmodels.Registration) *models.Registration {
	return &models.Registration{
		ID:        r.ID,
		EventID:   r.EventID,
		Name:      r.Name,
		Email:     r.Email,
		RollNo:    r.RollNo,
		CreatedAt: r.CreatedAt,
	}
}

func recordToNotice(r *dbmodels.Notice) *models.Notice {
	return &models.Notice{ID: r.ID, Text: r.Text, Active: r.Active, CreatedAt: r.CreatedAt}
}

func recordToVisit(r *dbmodels.Visit) *models.Visit {
	return &models.Visit{ID: r.ID, Path: r.Path, IP: r.IP, UserAgent: r.UserAgent, VisitedAt: r.CreatedAt}
}
