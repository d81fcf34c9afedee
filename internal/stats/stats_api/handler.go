package stats_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
	"ms-gifting/internal/session"
	"ms-gifting/internal/stats"
	"ms-gifting/internal/utils"
)

type Handler struct {
	StatsService *stats.Service
	Sessions     *session.Manager
	Logger       *logger.Logger
}

func NewHandler(statsService *stats.Service, sessions *session.Manager, log *logger.Logger) *Handler {
	return &Handler{
		StatsService: statsService,
		Sessions:     sessions,
		Logger:       log,
	}
}

// RegisterRoutes mounts the statistics API. The event calendar is public;
// aggregates and the dashboard need an active session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/events", h.ListEvents)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.Sessions))

		r.Get("/api/stats", h.GetStats)
		r.Get("/api/stats/dashboard", h.GetDashboard)
	})
}

// ListEvents returns the event calendar, soonest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.StatsService.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list events", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Events", events))
}

// GetStats aggregates gifts narrowed by the query filters. All filters are
// optional and combine conjunctively.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter := models.GiftFilter{
		PerformerID: r.URL.Query().Get("performer_id"),
		EventID:     r.URL.Query().Get("event_id"),
		UserID:      r.URL.Query().Get("user_id"),
	}

	aggregated, err := h.StatsService.GetStats(r.Context(), filter)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetStats: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to aggregate gifts", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Gift statistics", aggregated))
}

// GetDashboard returns the calling performer's dashboard. Fans have no
// dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Dashboard failed", "no active session"))
		return
	}
	if sess.Role != models.RolePerformer {
		writeJSON(w, http.StatusForbidden, utils.ErrorResponse("Dashboard failed", "performer session required"))
		return
	}

	dashboard, err := h.StatsService.GetDashboard(r.Context(), sess.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetDashboard: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Dashboard failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Performer dashboard", dashboard))
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
