package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/statuskeeper/statuskeeper/internal/pkg/httputil"
)

// Handler handles HTTP requests for the status module.
type Handler struct {
	service *Service
}

// NewHandler creates a new status handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes registers the anonymous snapshot endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/status", h.GetSnapshot)
}

// RegisterOperatorRoutes registers the internal metrics endpoint.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Get("/status/metrics", h.GetTodayMetrics)
}

// GetSnapshot handles GET /status.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.PublicSnapshot(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.JSON(w, http.StatusOK, snapshot)
}

// GetTodayMetrics handles GET /status/metrics.
func (h *Handler) GetTodayMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.TodayMetrics(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.JSON(w, http.StatusOK, m)
}
