package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) adminGetUsers(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	users, err := h.adminSvc.GetUsers(r.Context(), adminID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) adminFindUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.adminSvc.FindUser(r.Context(), adminID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) adminSetUserBlocked(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Blocked bool `json:"blocked"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.adminSvc.SetUserBlocked(
		r.Context(), adminID, userID, req.Blocked,
	); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"blocked": req.Blocked})
}

func (h *Handler) adminGetOpenTickets(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}

	tickets, err := h.adminSvc.GetOpenTickets(r.Context(), adminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) adminGetTicket(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}

	ticket, err := h.adminSvc.GetTicket(
		r.Context(), adminID, chi.URLParam(r, "ticketID"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) adminReplyTicket(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := h.adminSvc.ReplyTicket(
		r.Context(), adminID, chi.URLParam(r, "ticketID"), req.Text,
	); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminCloseTicket(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}

	if err := h.adminSvc.CloseTicket(
		r.Context(), adminID, chi.URLParam(r, "ticketID"),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminGetStatistics(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}

	stats, err := h.adminSvc.GetStatistics(r.Context(), adminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) adminGetMarkup(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}

	markup, err := h.adminSvc.GetMarkup(r.Context(), adminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"markup_percentage": markup})
}

func (h *Handler) adminSetMarkup(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	var req struct {
		MarkupPercentage string `json:"markup_percentage"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.adminSvc.SetMarkup(
		r.Context(), adminID, req.MarkupPercentage,
	); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"markup_percentage": req.MarkupPercentage,
	})
}

func (h *Handler) adminBroadcast(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDHeader(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.adminSvc.Broadcast(r.Context(), adminID, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
