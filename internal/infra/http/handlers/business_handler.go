package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// BusinessHandler exposes read-only account endpoints. Responses are the
// Graph API bodies untouched. PortfolioID is the Meta business portfolio
// that owns the WABAs; the portfolio-scoped endpoints require it.
type BusinessHandler struct {
	Client      *meta.Client
	PortfolioID string
}

func NewBusinessHandler(client *meta.Client, portfolioID string) *BusinessHandler {
	return &BusinessHandler{Client: client, PortfolioID: portfolioID}
}

func (h *BusinessHandler) HandlePhoneNumbers(w http.ResponseWriter, r *http.Request) {
	body, err := h.Client.GetPhoneNumbers(r.Context())
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *BusinessHandler) HandlePhoneNumberInfo(w http.ResponseWriter, r *http.Request) {
	body, err := h.Client.GetPhoneNumberInfo(r.Context(), r.URL.Query().Get("phone_number_id"))
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *BusinessHandler) HandleBusinessAccount(w http.ResponseWriter, r *http.Request) {
	body, err := h.Client.GetBusinessAccount(r.Context())
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleAnalytics pulls message analytics. Defaults: last 30 days at DAY
// granularity.
func (h *BusinessHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = "DAY"
	}
	switch granularity {
	case "HALF_HOUR", "DAY", "MONTH":
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_GRANULARITY", "granularity must be HALF_HOUR, DAY or MONTH")
		return
	}

	start, end, ok := h.timeRange(w, r)
	if !ok {
		return
	}

	body, err := h.Client.GetAnalytics(r.Context(), granularity, start, end)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleConversationAnalytics pulls conversation counts and costs. Defaults:
// last 30 days at MONTHLY granularity.
func (h *BusinessHandler) HandleConversationAnalytics(w http.ResponseWriter, r *http.Request) {
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = "MONTHLY"
	}
	switch granularity {
	case "HALF_HOUR", "DAILY", "MONTHLY":
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_GRANULARITY", "granularity must be HALF_HOUR, DAILY or MONTHLY")
		return
	}

	start, end, ok := h.timeRange(w, r)
	if !ok {
		return
	}

	body, err := h.Client.GetConversationAnalytics(r.Context(), granularity, start, end)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HandleQualityRating reads the sender's quality rating over a time range
// (optional phone_number_id query overrides the configured sender).
func (h *BusinessHandler) HandleQualityRating(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.timeRange(w, r)
	if !ok {
		return
	}

	body, err := h.Client.GetQualityRating(r.Context(), r.URL.Query().Get("phone_number_id"), start, end)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *BusinessHandler) HandleOwnedWABAs(w http.ResponseWriter, r *http.Request) {
	h.listWABAs(w, r, h.Client.GetOwnedWABAs)
}

func (h *BusinessHandler) HandleSharedWABAs(w http.ResponseWriter, r *http.Request) {
	h.listWABAs(w, r, h.Client.GetSharedWABAs)
}

func (h *BusinessHandler) HandleWABADetails(w http.ResponseWriter, r *http.Request) {
	body, err := h.Client.GetWABADetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *BusinessHandler) listWABAs(w http.ResponseWriter, r *http.Request, list func(context.Context, string, int) (json.RawMessage, error)) {
	if h.PortfolioID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_PORTFOLIO", "META_BUSINESS_PORTFOLIO_ID is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	body, err := list(r.Context(), h.PortfolioID, limit)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// timeRange parses start/end query params, defaulting to the last 30 days.
func (h *BusinessHandler) timeRange(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	now := time.Now()
	start := now.AddDate(0, 0, -30).Unix()
	end := now.Unix()

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_RANGE", "start must be a unix timestamp")
			return 0, 0, false
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_RANGE", "end must be a unix timestamp")
			return 0, 0, false
		}
		end = parsed
	}
	if end <= start {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_RANGE", "end must be after start")
		return 0, 0, false
	}

	return start, end, true
}
