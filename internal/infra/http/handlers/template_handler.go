package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
	"github.com/canalzap/waba-gateway/internal/usecase"
)

type TemplateHandler struct {
	CreateUC *usecase.CreateTemplateUseCase
	SendUC   *usecase.SendTemplateUseCase
	Gateway  usecase.TemplateGateway
}

func NewTemplateHandler(createUC *usecase.CreateTemplateUseCase, sendUC *usecase.SendTemplateUseCase, gateway usecase.TemplateGateway) *TemplateHandler {
	return &TemplateHandler{CreateUC: createUC, SendUC: sendUC, Gateway: gateway}
}

// HandleCreate validates and, when the verdict is clean, submits the
// template. An invalid template returns 422 with every violation found.
func (h *TemplateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateTemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	output, verdict, err := h.CreateUC.Execute(r.Context(), input)
	middleware.RecordValidation(verdict.IsValid)

	if !verdict.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, usecase.FormatValidationErrors(verdict))
		return
	}
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, output)
}

// HandleValidate runs the validation engine only; nothing is forwarded.
func (h *TemplateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateTemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	verdict := usecase.ValidateCompleteTemplate(usecase.BuildTemplate(input))
	middleware.RecordValidation(verdict.IsValid)

	response := usecase.FormatValidationErrors(verdict)
	if verdict.IsValid {
		response.Message = "Template data is valid and ready for creation"
		writeJSON(w, http.StatusOK, response)
		return
	}

	writeJSON(w, http.StatusUnprocessableEntity, response)
}

func (h *TemplateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := meta.TemplateFilter{
		Name:     r.URL.Query().Get("name"),
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Language: r.URL.Query().Get("language"),
		Limit:    100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	list, err := h.Gateway.ListTemplates(r.Context(), filter)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *TemplateHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "template name is required")
		return
	}

	if err := h.Gateway.DeleteTemplate(r.Context(), name); err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

func (h *TemplateHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendTemplateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	output, err := h.SendUC.Execute(r.Context(), input)
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
