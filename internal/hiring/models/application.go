// Package models defines the core domain models of the hiring portal:
// applications and their review state, reviewer sessions, the team roster,
// events, notices and notifications.
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the review status of an application.
type Status string

const (
	StatusReceived        Status = "Received"
	StatusUnderProcessing Status = "Under Processing"
	StatusInterviewing    Status = "Interviewing"
	StatusRecommended     Status = "Recommended"
	StatusHired           Status = "Hired"
	StatusRejected        Status = "Rejected"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusReceived,
	StatusUnderProcessing,
	StatusInterviewing,
	StatusRecommended,
	StatusHired,
	StatusRejected,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a final decision.
func (s Status) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

// TechnicalDomain is the technical interest an applicant picks. Panels are
// scoped to exactly one of these.
type TechnicalDomain string

const (
	DomainWeb      TechnicalDomain = "web"
	DomainApp      TechnicalDomain = "app"
	DomainAIML     TechnicalDomain = "aiml"
	DomainCyberSec TechnicalDomain = "cybersec"
)

// TechnicalDomains lists the accepted technical domains.
var TechnicalDomains = []TechnicalDomain{DomainWeb, DomainApp, DomainAIML, DomainCyberSec}

// Valid reports whether d is a known technical domain.
func (d TechnicalDomain) Valid() bool {
	for _, known := range TechnicalDomains {
		if d == known {
			return true
		}
	}
	return false
}

// NonTechnicalDomain is the optional non-technical interest of an applicant.
type NonTechnicalDomain string

const (
	DomainDesign     NonTechnicalDomain = "design"
	DomainContent    NonTechnicalDomain = "content"
	DomainMarketing  NonTechnicalDomain = "marketing"
	DomainManagement NonTechnicalDomain = "management"
)

// Verdict is a reviewer's suitability call for one track.
type Verdict string

const (
	VerdictUndecided Verdict = "undecided"
	VerdictYes       Verdict = "yes"
	VerdictNo        Verdict = "no"
)

// Suitability holds the per-track verdicts.
type Suitability struct {
	Technical    Verdict `json:"technical"`
	NonTechnical Verdict `json:"nonTechnical"`
}

// Ratings are the reviewer sub-scores (0..5). Overall is derived.
type Ratings struct {
	Communication  int     `json:"communication"`
	Technical      int     `json:"technical"`
	ProblemSolving int     `json:"problemSolving"`
	TeamFit        int     `json:"teamFit"`
	Overall        float64 `json:"overall"`
}

// ComputeOverall returns the mean of the non-zero sub-ratings rounded to two
// decimals, or 0 when nothing has been rated.
func (r Ratings) ComputeOverall() float64 {
	sum, n := 0, 0
	for _, v := range []int{r.Communication, r.Technical, r.ProblemSolving, r.TeamFit} {
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*100) / 100
}

// Normalized returns a copy whose Overall is recomputed from the sub-ratings.
func (r Ratings) Normalized() Ratings {
	r.Overall = r.ComputeOverall()
	return r
}

// Application is one candidate submission together with its review state.
type Application struct {
	// ID is the internal identifier.
	ID uuid.UUID `json:"id"`
	// ReferenceID is the shareable identifier used for public status lookup.
	ReferenceID string `json:"referenceId"`

	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	RollNo   string            `json:"rollNo"`
	Branch   string            `json:"branch"`
	Section  string            `json:"section"`
	Year     int               `json:"year"`
	CGPA     float64           `json:"cgpa"`
	Backlogs int               `json:"backlogs"`
	Answers  map[string]string `json:"answers"`
	LinkedIn string            `json:"linkedIn,omitempty"`
	// ResumeSummary is filled asynchronously after submission.
	ResumeSummary string `json:"resumeSummary,omitempty"`

	TechnicalDomain    TechnicalDomain    `json:"technicalDomain"`
	NonTechnicalDomain NonTechnicalDomain `json:"nonTechnicalDomain,omitempty"`

	Status        Status      `json:"status"`
	IsRecommended bool        `json:"isRecommended"`
	Suitability   Suitability `json:"suitability"`
	Ratings       Ratings     `json:"ratings"`
	Remarks       string      `json:"remarks"`
	// ReviewedBy is the username of the last reviewer to touch the record.
	ReviewedBy string `json:"reviewedBy,omitempty"`

	SubmittedAt time.Time `json:"submittedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ApplicationSubmission is the public intake payload.
type ApplicationSubmission struct {
	Name               string            `json:"name" validate:"required,max=100"`
	Email              string            `json:"email" validate:"required,email,max=254"`
	Phone              string            `json:"phone" validate:"required,numeric,len=10"`
	RollNo             string            `json:"rollNo" validate:"required,alphanum,max=20"`
	Branch             string            `json:"branch" validate:"required,max=50"`
	Section            string            `json:"section" validate:"required,max=10"`
	Year               int               `json:"year" validate:"required,gte=1,lte=5"`
	CGPA               float64           `json:"cgpa" validate:"gte=0,lte=10"`
	Backlogs           int               `json:"backlogs" validate:"gte=0,lte=50"`
	Answers            map[string]string `json:"answers" validate:"max=10,dive,keys,required,max=200,endkeys,max=2000"`
	LinkedIn           string            `json:"linkedIn" validate:"omitempty,url,max=300"`
	TechnicalDomain    string            `json:"technicalDomain" validate:"required,oneof=web app aiml cybersec"`
	NonTechnicalDomain string            `json:"nonTechnicalDomain" validate:"omitempty,oneof=design content marketing management"`
}

// Resume is an uploaded resume file.
type Resume struct {
	Filename string
	Data     []byte
}

// ReviewUpdate is a partial review payload. Nil fields are left unchanged.
// There is deliberately no Overall field: it is always derived.
type ReviewUpdate struct {
	ID            uuid.UUID    `json:"-"`
	Status        *Status      `json:"status,omitempty"`
	IsRecommended *bool        `json:"isRecommended,omitempty"`
	Suitability   *Suitability `json:"suitability,omitempty"`
	Ratings       *Ratings     `json:"ratings,omitempty"`
	Remarks       *string      `json:"remarks,omitempty"`
}

// ApplicationFilter narrows application listings and bulk operations.
type ApplicationFilter struct {
	Search             string
	Status             Status
	Year               int
	Branch             string
	TechnicalDomain    TechnicalDomain
	NonTechnicalDomain NonTechnicalDomain
	ByPerformance      bool
	ByRecommended      bool
	// Cursor is the opaque position returned as NextCursor by a previous page.
	Cursor   string
	PageSize int
}

// ApplicationPage is one page of a listing.
type ApplicationPage struct {
	Items      []*Application `json:"items"`
	Total      int64          `json:"total"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// StatusLookup is what the public status page shows for a reference ID.
type StatusLookup struct {
	ReferenceID string    `json:"referenceId"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// BulkHireResult reports the outcome of a CSV-driven hiring pass.
type BulkHireResult struct {
	Hired     int      `json:"hired"`
	Rejected  int      `json:"rejected"`
	Unmatched []string `json:"unmatched"`
}
