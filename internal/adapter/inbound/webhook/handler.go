package webhook

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/uxwatch/uxwatch/internal/domain/model"
	"github.com/uxwatch/uxwatch/internal/domain/port/inbound"
)

// update mirrors the provider-shaped webhook body. Edited messages count as
// input too.
type update struct {
	Message       *updateMessage `json:"message"`
	EditedMessage *updateMessage `json:"edited_message"`
}

type updateMessage struct {
	Chat updateChat `json:"chat"`
	Text string     `json:"text"`
}

type updateChat struct {
	ID int64 `json:"id"`
}

// Handler is the webhook ingress variant of the control surface: it extracts
// the chat id and text from a provider-shaped JSON body and routes it to the
// control relay. The response is always {"ok": true} regardless of match
// outcome, so validation results never leak to the caller.
type Handler struct {
	relay inbound.ControlInputPort
}

// NewHandler creates a Handler routing to the given relay.
func NewHandler(relay inbound.ControlInputPort) *Handler {
	return &Handler{relay: relay}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeOK(w)
		return
	}

	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg != nil && msg.Text != "" {
		chatID := strconv.FormatInt(msg.Chat.ID, 10)
		_ = h.relay.HandleControlMessage(r.Context(), model.NewControlMessage(chatID, msg.Text))
	}

	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// HealthHandler returns an http.HandlerFunc for the /health endpoint.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
