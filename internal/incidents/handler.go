package incidents

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/statuskeeper/statuskeeper/internal/pkg/httputil"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterOperatorRoutes registers routes that require an authenticated operator.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Post("/", h.OpenIncident)
		r.Get("/", h.ListIncidents)
		r.Get("/{id}", h.GetIncident)
		r.Post("/{id}/transition", h.Transition)
		r.Post("/{id}/updates", h.AppendUpdate)
		r.Get("/{id}/updates", h.ListUpdates)
		r.Post("/{id}/resolution", h.RecordResolution)
	})
}

// OpenIncidentRequest represents the request body for opening an incident.
type OpenIncidentRequest struct {
	ServiceID   string   `json:"service_id" validate:"required,uuid"`
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Severity    string   `json:"severity" validate:"required,oneof=low medium high critical"`
	Description string   `json:"description"`
	ImpactScope string   `json:"impact_scope"`
	Assignee    *string  `json:"assignee"`
	Tags        []string `json:"tags"`
}

// OpenIncident handles POST /incidents.
func (h *Handler) OpenIncident(w http.ResponseWriter, r *http.Request) {
	var req OpenIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.OpenIncident(r.Context(), OpenIncidentInput{
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Severity:    domain.IncidentSeverity(req.Severity),
		Description: req.Description,
		ImpactScope: req.ImpactScope,
		Assignee:    req.Assignee,
		Tags:        req.Tags,
	}, httputil.GetActorID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/{id}.
func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	incident, err := h.service.GetIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// ListIncidents handles GET /incidents.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Limit: 50}
	if r.URL.Query().Get("active") == "true" {
		filter.ActiveOnly = true
	}
	if sid := r.URL.Query().Get("service_id"); sid != "" {
		filter.ServiceID = &sid
	}

	list, err := h.service.ListIncidents(r.Context(), filter)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, list)
}

// TransitionRequest represents the request body for a status transition.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=open investigating monitoring resolved"`
}

// Transition handles POST /incidents/{id}/transition.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.Transition(r.Context(), chi.URLParam(r, "id"),
		domain.IncidentStatus(req.Status), httputil.GetActorID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// AppendUpdateRequest represents the request body for a timeline update.
type AppendUpdateRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// AppendUpdate handles POST /incidents/{id}/updates.
func (h *Handler) AppendUpdate(w http.ResponseWriter, r *http.Request) {
	var req AppendUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	update, err := h.service.AppendUpdate(r.Context(), chi.URLParam(r, "id"),
		httputil.GetActorID(r.Context()), req.Message)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusCreated, update)
}

// ListUpdates handles GET /incidents/{id}/updates.
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := h.service.ListUpdates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, updates)
}

// RecordResolutionRequest represents the request body for resolution narrative.
type RecordResolutionRequest struct {
	RootCause         string `json:"root_cause" validate:"required,min=1"`
	ResolutionSummary string `json:"resolution_summary" validate:"required,min=1"`
}

// RecordResolution handles POST /incidents/{id}/resolution.
func (h *Handler) RecordResolution(w http.ResponseWriter, r *http.Request) {
	var req RecordResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.RecordResolution(r.Context(), chi.URLParam(r, "id"),
		req.RootCause, req.ResolutionSummary)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}
