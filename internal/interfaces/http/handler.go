// Package httpinterface exposes the bot backend over HTTP. A chat frontend
// delivers user inputs to it and renders the localized payloads it returns.
package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/tabadex/tabadex-bot/internal/core/application"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
)

type Handler struct {
	exchangeSvc application.ExchangeService
	accountSvc  application.AccountService
	supportSvc  application.SupportService
	adminSvc    application.AdminService
}

func NewHandler(
	exchangeSvc application.ExchangeService,
	accountSvc application.AccountService,
	supportSvc application.SupportService,
	adminSvc application.AdminService,
) *Handler {
	return &Handler{
		exchangeSvc: exchangeSvc,
		accountSvc:  accountSvc,
		supportSvc:  supportSvc,
		adminSvc:    adminSvc,
	}
}

// Router builds the gateway routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(countRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/", h.getOrCreateUser)
			r.Put("/language", h.changeLanguage)

			r.Post("/exchange", h.startExchange)
			r.Post("/exchange/events", h.handleExchangeEvent)

			r.Get("/orders", h.getOrders)
			r.Get("/orders/{orderID}", h.getOrder)

			r.Get("/addresses", h.getSavedAddresses)
			r.Post("/addresses", h.addSavedAddress)
			r.Delete("/addresses/{addressID}", h.deleteSavedAddress)

			r.Post("/tickets", h.createTicket)
			r.Get("/tickets", h.getTickets)
			r.Get("/tickets/{ticketID}", h.getTicket)
			r.Post("/tickets/{ticketID}/reply", h.replyTicket)
			r.Post("/tickets/{ticketID}/close", h.closeTicket)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", h.adminGetUsers)
			r.Get("/users/{userID}", h.adminFindUser)
			r.Put("/users/{userID}/blocked", h.adminSetUserBlocked)
			r.Get("/tickets", h.adminGetOpenTickets)
			r.Get("/tickets/{ticketID}", h.adminGetTicket)
			r.Post("/tickets/{ticketID}/reply", h.adminReplyTicket)
			r.Post("/tickets/{ticketID}/close", h.adminCloseTicket)
			r.Get("/statistics", h.adminGetStatistics)
			r.Get("/markup", h.adminGetMarkup)
			r.Put("/markup", h.adminSetMarkup)
			r.Post("/broadcast", h.adminBroadcast)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to encode http response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrAddressNotFound),
		errors.Is(err, domain.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTicketClosed),
		errors.Is(err, application.ErrNoActiveExchange),
		errors.Is(err, application.ErrStaleSession):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrNotAdmin):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, application.ErrInvalidMarkup),
		errors.Is(err, application.ErrEmptyBroadcast):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("internal error serving request")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
