package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/controller"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/gartstein/clubhire/internal/hiring/summarizer"
)

type submissionReceipt struct {
	ReferenceID string        `json:"referenceId"`
	Status      models.Status `json:"status"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// submitApplication accepts either a JSON body or a multipart form with a
// "payload" JSON field and an optional "resume" file.
func (h *Handler) submitApplication(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var sub models.ApplicationSubmission
	var resume *models.Resume

	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, controller.MaxResumeBytes+maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			h.writeError(w, r, fmt.Errorf("%w: malformed multipart body", e.ErrInvalidInput))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		if err := decodeJSON(strings.NewReader(r.FormValue("payload")), &sub); err != nil {
			h.writeError(w, r, err)
			return
		}
		var err error
		resume, err = readResume(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	} else if err := decodeJSON(r.Body, &sub); err != nil {
		h.writeError(w, r, err)
		return
	}

	app, err := h.svc.Applications.Submit(r.Context(), &sub, resume)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionReceipt{
		ReferenceID: app.ReferenceID,
		Status:      app.Status,
		SubmittedAt: app.SubmittedAt,
	})
}

func readResume(r *http.Request) (*models.Resume, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable resume", e.ErrInvalidInput)
	}
	defer file.Close()

	if !summarizer.Supported(header.Filename) {
		return nil, e.NewValidationError(map[string]string{"resume": "must be a PDF, TXT or MD file"})
	}
	data, err := io.ReadAll(io.LimitReader(file, controller.MaxResumeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable resume", e.ErrInvalidInput)
	}
	return &models.Resume{Filename: header.Filename, Data: data}, nil
}

func (h *Handler) lookupStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	lookup, err := h.svc.Applications.LookupStatus(r.Context(), params["ref"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lookup)
}

// filterParams is the JSON form of an application filter.
type filterParams struct {
	Search             string `json:"search"`
	Status             string `json:"status"`
	Year               int    `json:"year"`
	Branch             string `json:"branch"`
	TechnicalDomain    string `json:"technicalDomain"`
	NonTechnicalDomain string `json:"nonTechnicalDomain"`
}

func (p filterParams) filter() models.ApplicationFilter {
	return models.ApplicationFilter{
		Search:             strings.TrimSpace(p.Search),
		Status:             models.Status(p.Status),
		Year:               p.Year,
		Branch:             strings.TrimSpace(p.Branch),
		TechnicalDomain:    models.TechnicalDomain(strings.ToLower(p.TechnicalDomain)),
		NonTechnicalDomain: models.NonTechnicalDomain(strings.ToLower(p.NonTechnicalDomain)),
	}
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	year, err := queryInt(r, "year")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := filterParams{
		Search:             q.Get("search"),
		Status:             q.Get("status"),
		Year:               year,
		Branch:             q.Get("branch"),
		TechnicalDomain:    q.Get("technicalDomain"),
		NonTechnicalDomain: q.Get("nonTechnicalDomain"),
	}.filter()
	filter.ByPerformance = queryBool(r, "byPerformance")
	filter.ByRecommended = queryBool(r, "byRecommended")
	filter.Cursor = q.Get("cursor")
	filter.PageSize = pageSize

	page, err := h.svc.Applications.List(r.Context(), session(r), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type applicationView struct {
	Application     *models.Application `json:"application"`
	AllowedStatuses []models.Status     `json:"allowedStatuses"`
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s := session(r)
	app, err := h.svc.Applications.Get(r.Context(), s, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationView{
		Application:     app,
		AllowedStatuses: controller.AllowedStatuses(s, app.Status),
	})
}

func (h *Handler) reviewApplication(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var update models.ReviewUpdate
	if err := decodeJSON(r.Body, &update); err != nil {
		h.writeError(w, r, err)
		return
	}
	update.ID = id

	s := session(r)
	app, err := h.svc.Applications.Review(r.Context(), s, &update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationView{
		Application:     app,
		AllowedStatuses: controller.AllowedStatuses(s, app.Status),
	})
}

type bulkStatusRequest struct {
	Status models.Status `json:"status"`
	Filter filterParams  `json:"filter"`
}

func (h *Handler) bulkUpdateStatus(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req bulkStatusRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.Applications.BulkUpdateStatus(r.Context(), session(r), req.Filter.filter(), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// bulkHire takes the CSV either as the raw body or as a multipart "file".
func (h *Handler) bulkHire(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var src io.Reader = io.LimitReader(r.Body, controller.MaxResumeBytes)
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, controller.MaxResumeBytes)
		file, _, err := r.FormFile("file")
		if err != nil {
			h.writeError(w, r, e.NewValidationError(map[string]string{"file": "is required"}))
			return
		}
		defer file.Close()
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		src = file
	}

	rollNos, err := controller.ParseRollNumbers(src)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Applications.BulkHire(r.Context(), session(r), rollNos)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) exportHired(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var buf bytes.Buffer
	if err := h.svc.Applications.ExportHired(r.Context(), session(r), &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCSV(w, "hired.csv", &buf)
}

func writeCSV(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
