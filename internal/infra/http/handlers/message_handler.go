package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

type MessageHandler struct {
	SendUC *usecase.SendMessageUseCase
}

func NewMessageHandler(sendUC *usecase.SendMessageUseCase) *MessageHandler {
	return &MessageHandler{SendUC: sendUC}
}

func (h *MessageHandler) HandleSendText(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendTextInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	output, err := h.SendUC.SendText(r.Context(), input)
	h.respond(w, output, err)
}

func (h *MessageHandler) HandleSendMedia(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendMediaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	output, err := h.SendUC.SendMedia(r.Context(), input)
	h.respond(w, output, err)
}

func (h *MessageHandler) HandleSendLocation(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendLocationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	output, err := h.SendUC.SendLocation(r.Context(), input)
	h.respond(w, output, err)
}

func (h *MessageHandler) HandleSendReaction(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendReactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	output, err := h.SendUC.SendReaction(r.Context(), input)
	h.respond(w, output, err)
}

func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "id")

	if err := h.SendUC.MarkRead(r.Context(), messageID); err != nil {
		if usecase.IsDomainError(err) {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read", "message_id": messageID})
}

func (h *MessageHandler) respond(w http.ResponseWriter, output *usecase.SendMessageOutput, err error) {
	if err != nil {
		if usecase.IsDomainError(err) {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	middleware.RecordDispatch(output.Kind, output.Status)
	writeJSON(w, http.StatusAccepted, output)
}
