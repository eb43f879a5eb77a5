package handlers

import (
	"bytes"
	"net/http"

	"github.com/gartstein/clubhire/internal/hiring/models"
)

func (h *Handler) roster(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	roster, err := h.svc.Team.Roster(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// inviteView is what the onboarding page learns about a pending invite.
type inviteView struct {
	Email      string `json:"email"`
	CategoryID string `json:"categoryId"`
}

func (h *Handler) getInvite(w http.ResponseWriter, r *http.Request, params map[string]string) {
	member, err := h.svc.Team.GetInvite(r.Context(), params["token"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inviteView{Email: member.Email, CategoryID: member.CategoryID.String()})
}

func (h *Handler) onboard(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var in models.Onboarding
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	member, err := h.svc.Team.Onboard(r.Context(), params["token"], &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	members, err := h.svc.Team.ListMembers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var in models.TeamInvite
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	member, err := h.svc.Team.Invite(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *Handler) activateMember(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	member, err := h.svc.Team.Activate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *Handler) deleteMember(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Team.DeleteMember(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	categories, err := h.svc.Team.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var in models.NewCategory
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	category, err := h.svc.Team.CreateCategory(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Team.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	events, err := h.svc.Events.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var in models.EventInput
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.svc.Events.Create(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.EventInput
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	event, err := h.svc.Events.Update(r.Context(), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Events.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) registerForEvent(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.RegistrationInput
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Events.Register(r.Context(), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (h *Handler) exportRegistrations(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Events.ExportRegistrations(r.Context(), id, &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCSV(w, "registrations-"+id.String()+".csv", &buf)
}

func (h *Handler) listActiveNotices(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.listNotices(w, r, true)
}

func (h *Handler) listAllNotices(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.listNotices(w, r, false)
}

func (h *Handler) listNotices(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	notices, err := h.svc.Content.ListNotices(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

func (h *Handler) createNotice(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var in models.NoticeInput
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	notice, err := h.svc.Content.CreateNotice(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}

func (h *Handler) updateNotice(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.NoticeInput
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	notice, err := h.svc.Content.UpdateNotice(r.Context(), id, &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (h *Handler) deleteNotice(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := pathUUID(params, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Content.DeleteNotice(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visitRequest struct {
	Path string `json:"path"`
}

func (h *Handler) recordVisit(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req visitRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Content.RecordVisit(r.Context(), req.Path, h.proxies.ClientIP(r), r.UserAgent()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listVisitors(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	pageSize, err := queryInt(r, "pageSize")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Content.ListVisits(r.Context(), r.URL.Query().Get("cursor"), pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
