package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tabadex/tabadex-bot/internal/locales"
)

type createUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

func (h *Handler) getOrCreateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.accountSvc.GetOrCreateUser(
		r.Context(), userID, req.Username, req.FirstName,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) changeLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !locales.Supported(req.Language) {
		writeError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	if err := h.accountSvc.ChangeLanguage(
		r.Context(), userID, req.Language,
	); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	orders, err := h.accountSvc.GetOrders(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.accountSvc.GetOrder(
		r.Context(), userID, chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type addAddressRequest struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	CurrencyTicker string `json:"currency_ticker"`
}

func (h *Handler) getSavedAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	addresses, err := h.accountSvc.GetSavedAddresses(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

func (h *Handler) addSavedAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req addAddressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "name and address are required")
		return
	}

	saved, err := h.accountSvc.AddSavedAddress(
		r.Context(), userID, req.Name, req.Address, req.CurrencyTicker,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) deleteSavedAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.accountSvc.DeleteSavedAddress(
		r.Context(), userID, chi.URLParam(r, "addressID"),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTicketRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h *Handler) createTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req createTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}

	ticket, err := h.supportSvc.CreateTicket(
		r.Context(), userID, req.Title, req.Message,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) getTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	tickets, err := h.supportSvc.GetTickets(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	ticket, err := h.supportSvc.GetTicket(
		r.Context(), userID, chi.URLParam(r, "ticketID"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) replyTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
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

	if err := h.supportSvc.ReplyTicket(
		r.Context(), userID, chi.URLParam(r, "ticketID"), req.Text,
	); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) closeTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.supportSvc.CloseTicket(
		r.Context(), userID, chi.URLParam(r, "ticketID"),
	); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
