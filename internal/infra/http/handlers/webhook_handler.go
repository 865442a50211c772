package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

// Meta webhook envelope. Every notification arrives as entries of field
// changes; the value shape depends on the field.
type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	MessagingProduct string          `json:"messaging_product,omitempty"`
	Statuses         []messageStatus `json:"statuses,omitempty"`

	// message_template_status_update fields
	Event               string `json:"event,omitempty"`
	MessageTemplateName string `json:"message_template_name,omitempty"`
	MessageTemplateLang string `json:"message_template_language,omitempty"`
	Reason              string `json:"reason,omitempty"`
}

type messageStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

type WebhookHandler struct {
	VerifyToken string
	ProcessUC   *usecase.ProcessWebhookUseCase
}

func NewWebhookHandler(verifyToken string, processUC *usecase.ProcessWebhookUseCase) *WebhookHandler {
	return &WebhookHandler{VerifyToken: verifyToken, ProcessUC: processUC}
}

// HandleVerify answers Meta's subscription handshake: echo hub.challenge
// when the token matches, 403 otherwise.
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.VerifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	writeErrorResponse(w, http.StatusForbidden, "VERIFICATION_FAILED", "verify token mismatch")
}

// HandleEvent consumes a webhook notification. Meta retries on non-200, so
// processing errors are logged and acknowledged anyway.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			h.applyChange(r, change)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h *WebhookHandler) applyChange(r *http.Request, change webhookChange) {
	switch change.Field {
	case "messages":
		for _, status := range change.Value.Statuses {
			input := usecase.MessageStatusInput{
				ProviderID: status.ID,
				Status:     status.Status,
			}
			if err := h.ProcessUC.HandleMessageStatus(r.Context(), input); err != nil {
				log.Printf("webhook: message status %s not applied: %v", status.ID, err)
			}
		}
	case "message_template_status_update":
		input := usecase.TemplateStatusInput{
			Name:     change.Value.MessageTemplateName,
			Language: change.Value.MessageTemplateLang,
			Event:    change.Value.Event,
			Reason:   change.Value.Reason,
		}
		middleware.RecordTemplateStatus(input.Event)
		if err := h.ProcessUC.HandleTemplateStatus(r.Context(), input); err != nil {
			log.Printf("webhook: template status for %s not applied: %v", input.Name, err)
		}
	default:
		log.Printf("webhook: ignoring field %q", change.Field)
	}
}
