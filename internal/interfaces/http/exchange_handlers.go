package httpinterface

import (
	"context"
	"net/http"

	"github.com/tabadex/tabadex-bot/internal/core/application"
	"github.com/tabadex/tabadex-bot/internal/locales"
)

// eventTypes maps the wire names of user inputs onto the state machine
// event types.
var eventTypes = map[string]application.EventType{
	"pick_currency": application.EventPickCurrency,
	"pick_network":  application.EventPickNetwork,
	"text":          application.EventText,
	"search":        application.EventSearch,
	"view_all":      application.EventViewAll,
	"confirm":       application.EventConfirm,
	"cancel":        application.EventCancel,
}

type exchangeEventRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type choicePayload struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// replyPayload is the rendered display payload a frontend shows as-is.
type replyPayload struct {
	Text     string          `json:"text"`
	Choices  []choicePayload `json:"choices,omitempty"`
	State    string          `json:"state"`
	Terminal bool            `json:"terminal"`
	OrderID  string          `json:"order_id,omitempty"`
}

func (h *Handler) startExchange(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	reply, err := h.exchangeSvc.Start(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderReply(r.Context(), userID, reply))
}

func (h *Handler) handleExchangeEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req exchangeEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	eventType, ok := eventTypes[req.Type]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	reply, err := h.exchangeSvc.HandleEvent(
		r.Context(), userID,
		application.Event{Type: eventType, Data: req.Data},
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderReply(r.Context(), userID, reply))
}

// renderReply resolves the reply's text keys in the user's language.
func (h *Handler) renderReply(
	ctx context.Context, userID int64, reply *application.Reply,
) replyPayload {
	lang := h.userLanguage(ctx, userID)

	choices := make([]choicePayload, 0, len(reply.Choices))
	for _, choice := range reply.Choices {
		label := choice.Label
		if choice.LabelKey != "" {
			label = locales.Text(lang, choice.LabelKey)
		}
		choices = append(choices, choicePayload{Label: label, Data: choice.Data})
	}

	return replyPayload{
		Text:     locales.Render(lang, reply.TextKey, reply.Args),
		Choices:  choices,
		State:    reply.State.String(),
		Terminal: reply.Terminal(),
		OrderID:  reply.OrderID,
	}
}

func (h *Handler) userLanguage(ctx context.Context, userID int64) string {
	user, err := h.accountSvc.GetOrCreateUser(ctx, userID, "", "")
	if err != nil {
		return locales.DefaultLanguage
	}
	return user.LanguageCode
}
