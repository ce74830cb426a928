package maintenance

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskeeper/statuskeeper/internal/domain"
	"github.com/statuskeeper/statuskeeper/internal/pkg/httputil"
)

// Handler handles HTTP requests for the maintenance module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new maintenance handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterOperatorRoutes registers routes that require an authenticated operator.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Route("/maintenance", func(r chi.Router) {
		r.Post("/", h.Schedule)
		r.Get("/", h.ListCalendar)
		r.Get("/{id}", h.GetMaintenance)
		r.Post("/{id}/cancel", h.Cancel)
	})
}

// maintenanceView decorates the stored event with its effective status.
type maintenanceView struct {
	*domain.MaintenanceEvent
	EffectiveStatus domain.MaintenanceStatus `json:"effective_status"`
}

func view(event *domain.MaintenanceEvent, now time.Time) maintenanceView {
	return maintenanceView{
		MaintenanceEvent: event,
		EffectiveStatus:  event.EffectiveStatus(now),
	}
}

// ScheduleRequest represents the request body for scheduling maintenance.
type ScheduleRequest struct {
	Title        string    `json:"title" validate:"required,min=1,max=255"`
	Description  string    `json:"description"`
	AppliesToAll bool      `json:"applies_to_all"`
	ServiceID    *string   `json:"service_id" validate:"omitempty,uuid"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
}

// Schedule handles POST /maintenance.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	event, err := h.service.Schedule(r.Context(), ScheduleInput{
		Title:        req.Title,
		Description:  req.Description,
		AppliesToAll: req.AppliesToAll,
		ServiceID:    req.ServiceID,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
	}, httputil.GetActorID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusCreated, view(event, time.Now()))
}

// GetMaintenance handles GET /maintenance/{id}.
func (h *Handler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetMaintenance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, view(event, time.Now()))
}

// ListCalendar handles GET /maintenance. The window defaults to the
// coming 30 days; from/to accept RFC 3339 timestamps.
func (h *Handler) ListCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	window := Window{From: now, To: now.Add(30 * 24 * time.Hour)}

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		window.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		window.To = t
	}
	if !window.To.After(window.From) {
		httputil.Error(w, http.StatusBadRequest, "to must be after from")
		return
	}

	events, err := h.service.ListWindow(r.Context(), window)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	views := make([]maintenanceView, 0, len(events))
	for _, ev := range events {
		views = append(views, view(ev, now))
	}
	httputil.Success(w, http.StatusOK, views)
}

// Cancel handles POST /maintenance/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), httputil.GetActorID(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, view(event, time.Now()))
}
