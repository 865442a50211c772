package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// FlowHandler forwards WhatsApp Flow operations to the Graph API flows edge.
// Flows are managed as drafts until published; publishing is irreversible.
type FlowHandler struct {
	Client *meta.Client
}

func NewFlowHandler(client *meta.Client) *FlowHandler {
	return &FlowHandler{Client: client}
}

type createFlowRequest struct {
	Name        string   `json:"name"`
	Categories  []string `json:"categories"`
	CloneFlowID string   `json:"clone_flow_id"`
	EndpointURI string   `json:"endpoint_uri"`
}

type updateFlowRequest struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

type uploadFlowJSONRequest struct {
	FlowJSON json.RawMessage `json:"flow_json"`
}

type migrateFlowsRequest struct {
	SourceWABAID    string   `json:"source_waba_id"`
	SourceFlowNames []string `json:"source_flow_names"`
}

func (h *FlowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.Name == "" || len(req.Categories) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "name and categories are required")
		return
	}

	id, err := h.Client.CreateFlow(r.Context(), meta.CreateFlowPayload{
		Name:        req.Name,
		Categories:  req.Categories,
		CloneFlowID: req.CloneFlowID,
		EndpointURI: req.EndpointURI,
	})
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *FlowHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	body, err := h.Client.ListFlows(r.Context(), limit)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *FlowHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	body, err := h.Client.GetFlow(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *FlowHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.Name == "" && len(req.Categories) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "at least one of name or categories is required")
		return
	}

	err := h.Client.UpdateFlow(r.Context(), chi.URLParam(r, "id"), meta.UpdateFlowPayload{
		Name:       req.Name,
		Categories: req.Categories,
	})
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FlowHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if err := h.Client.PublishFlow(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FlowHandler) HandleUploadJSON(w http.ResponseWriter, r *http.Request) {
	var req uploadFlowJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if len(req.FlowJSON) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "flow_json is required")
		return
	}

	body, err := h.Client.UploadFlowJSON(r.Context(), chi.URLParam(r, "id"), req.FlowJSON)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *FlowHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	invalidate := r.URL.Query().Get("invalidate") == "true"

	body, err := h.Client.GetFlowPreview(r.Context(), chi.URLParam(r, "id"), invalidate)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *FlowHandler) HandleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateFlowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.SourceWABAID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "source_waba_id is required")
		return
	}

	body, err := h.Client.MigrateFlows(r.Context(), meta.MigrateFlowsPayload{
		SourceWABAID:    req.SourceWABAID,
		SourceFlowNames: req.SourceFlowNames,
	})
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleMetrics reads endpoint request metrics for a flow. Defaults:
// ENDPOINT_REQUEST_COUNT at DAY granularity.
func (h *FlowHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	query := meta.FlowMetricsQuery{
		MetricName:  r.URL.Query().Get("metric_name"),
		Granularity: r.URL.Query().Get("granularity"),
		Since:       r.URL.Query().Get("since"),
		Until:       r.URL.Query().Get("until"),
	}
	if query.MetricName == "" {
		query.MetricName = "ENDPOINT_REQUEST_COUNT"
	}
	if query.Granularity == "" {
		query.Granularity = "DAY"
	}
	switch query.Granularity {
	case "DAY", "HOUR", "LIFETIME":
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_GRANULARITY", "granularity must be DAY, HOUR or LIFETIME")
		return
	}

	body, err := h.Client.GetFlowMetrics(r.Context(), chi.URLParam(r, "id"), query)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}
