package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canalzap/waba-gateway/internal/infra/http/middleware"
	"github.com/canalzap/waba-gateway/internal/infra/integration/meta"
)

// 16MB covers every media type the Cloud API accepts over this endpoint.
const maxUploadBytes = 16 << 20

type MediaHandler struct {
	Client *meta.Client
}

func NewMediaHandler(client *meta.Client) *MediaHandler {
	return &MediaHandler{Client: client}
}

func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_MIME", "file part must carry a Content-Type")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "READ_ERROR", err.Error())
		return
	}

	mediaID, err := h.Client.UploadMedia(r.Context(), header.Filename, mimeType, data)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": mediaID})
}

func (h *MediaHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	info, err := h.Client.GetMediaInfo(r.Context(), mediaID)
	if err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *MediaHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	if err := h.Client.DeleteMedia(r.Context(), mediaID); err != nil {
		middleware.RecordIntegrationError("meta")
		writeErrorResponse(w, http.StatusBadGateway, "PROVIDER_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": mediaID})
}
