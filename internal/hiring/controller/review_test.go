package controller

import (
	"testing"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		session models.Session
		from    models.Status
		to      models.Status
		wantErr error
	}{
		{name: "admin any forward", session: adminSession, from: models.StatusReceived, to: models.StatusHired},
		{name: "admin reverses a final decision", session: adminSession, from: models.StatusHired, to: models.StatusReceived},
		{name: "admin skips stages", session: adminSession, from: models.StatusReceived, to: models.StatusRecommended},
		{name: "panel moves forward", session: webPanel, from: models.StatusReceived, to: models.StatusInterviewing},
		{name: "panel moves backward", session: webPanel, from: models.StatusInterviewing, to: models.StatusUnderProcessing},
		{name: "panel resends terminal status", session: webPanel, from: models.StatusHired, to: models.StatusHired},
		{name: "panel resends current status", session: webPanel, from: models.StatusRecommended, to: models.StatusRecommended},
		{name: "panel cannot hire", session: webPanel, from: models.StatusInterviewing, to: models.StatusHired, wantErr: e.ErrForbidden},
		{name: "panel cannot recommend", session: webPanel, from: models.StatusInterviewing, to: models.StatusRecommended, wantErr: e.ErrForbidden},
		{name: "panel cannot reopen hired", session: webPanel, from: models.StatusHired, to: models.StatusInterviewing, wantErr: e.ErrForbidden},
		{name: "panel cannot reopen rejected", session: webPanel, from: models.StatusRejected, to: models.StatusReceived, wantErr: e.ErrForbidden},
		{name: "unknown target", session: adminSession, from: models.StatusReceived, to: "Shortlisted", wantErr: e.ErrInvalidInput},
		{name: "unknown role", session: models.Session{Role: "guest"}, from: models.StatusReceived, to: models.StatusInterviewing, wantErr: e.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.session, tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAllowedStatuses(t *testing.T) {
	assert.Equal(t, models.Statuses, AllowedStatuses(adminSession, models.StatusHired))
	assert.Equal(t,
		[]models.Status{models.StatusReceived, models.StatusUnderProcessing, models.StatusInterviewing},
		AllowedStatuses(webPanel, models.StatusReceived))
	assert.Equal(t,
		[]models.Status{models.StatusReceived, models.StatusUnderProcessing, models.StatusInterviewing, models.StatusRecommended},
		AllowedStatuses(webPanel, models.StatusRecommended))
	assert.Equal(t, []models.Status{models.StatusRejected}, AllowedStatuses(webPanel, models.StatusRejected))
}

func TestRatings_ComputeOverall(t *testing.T) {
	tests := []struct {
		name    string
		ratings models.Ratings
		want    float64
	}{
		{name: "zero is not rated", ratings: models.Ratings{Communication: 4, Technical: 3, ProblemSolving: 0, TeamFit: 5}, want: 4.0},
		{name: "all rated", ratings: models.Ratings{Communication: 5, Technical: 4, ProblemSolving: 4, TeamFit: 4}, want: 4.25},
		{name: "rounded to two decimals", ratings: models.Ratings{Communication: 5, Technical: 4, ProblemSolving: 4}, want: 4.33},
		{name: "nothing rated", ratings: models.Ratings{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ratings.ComputeOverall())
		})
	}
}

func TestValidateReview(t *testing.T) {
	long := string(make([]byte, 2001))
	tests := []struct {
		name    string
		update  models.ReviewUpdate
		wantErr bool
	}{
		{name: "empty", update: models.ReviewUpdate{}},
		{name: "ratings in range", update: models.ReviewUpdate{Ratings: &models.Ratings{Communication: 5, TeamFit: 0}}},
		{name: "rating too high", update: models.ReviewUpdate{Ratings: &models.Ratings{Technical: 6}}, wantErr: true},
		{name: "negative rating", update: models.ReviewUpdate{Ratings: &models.Ratings{TeamFit: -1}}, wantErr: true},
		{name: "bad verdict", update: models.ReviewUpdate{Suitability: &models.Suitability{Technical: "maybe", NonTechnical: models.VerdictNo}}, wantErr: true},
		{name: "remarks too long", update: models.ReviewUpdate{Remarks: &long}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateReview(&tt.update)
			if tt.wantErr {
				assert.ErrorIs(t, err, e.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
