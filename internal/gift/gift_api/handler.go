package gift_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-gifting/internal/draft"
	"ms-gifting/internal/gift"
	"ms-gifting/internal/gift/db"
	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
	"ms-gifting/internal/session"
	"ms-gifting/internal/utils"
)

type Handler struct {
	GiftService *gift.Service
	Sequencer   *draft.Sequencer
	Sessions    *session.Manager
	DB          *db.DB
	Logger      *logger.Logger
}

func NewHandler(giftService *gift.Service, sequencer *draft.Sequencer, sessions *session.Manager, database *db.DB, log *logger.Logger) *Handler {
	return &Handler{
		GiftService: giftService,
		Sequencer:   sequencer,
		Sessions:    sessions,
		DB:          database,
		Logger:      log,
	}
}

// RegisterRoutes mounts the gifting API. The draft flow and history require
// an active session; login, the roster and the live streams do not.
func (h *Handler) RegisterRoutes(r chi.Router, sseHandler *SSEHandler) {
	r.Post("/api/session", h.Login)
	r.Delete("/api/session", h.Logout)

	r.Get("/api/performers", h.ListPerformers)

	r.Get("/api/gifting/stream/performer/{performerID}", sseHandler.HandlePerformerGifts)
	r.Get("/api/gifting/stream/event/{eventID}", sseHandler.HandleEventGifts)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.Sessions))

		r.Put("/api/gifting/draft", h.ComposeDraft)
		r.Get("/api/gifting/draft", h.ReviewDraft)
		r.Delete("/api/gifting/draft", h.AbandonDraft)
		r.Post("/api/gifting/confirm", h.ConfirmGift)
		r.Post("/api/gifting/thanks", h.Thanks)
		r.Get("/api/gifting/history", h.History)
	})
}

// Login resolves the principal by email and role, checks the shared access
// code and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to decode request body: %v", err))
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	principalID, displayName, err := h.resolvePrincipal(r, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Login: principal lookup failed for %s/%s: %v", req.Role, req.Email, err))
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", "invalid credentials"))
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = displayName
	}

	token, sess, err := h.Sessions.StartSession(r.Context(), req, principalID)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.Logger.Warn("API", fmt.Sprintf("Login: rejected credentials for %s", req.Email))
			writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", "invalid credentials"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: failed to start session: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", err.Error()))
		return
	}

	h.Logger.LogSession("STARTED", fmt.Sprintf("session %s for %s (%s)", sess.ID, sess.DisplayName, sess.Role))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Session started", models.LoginResponse{Token: token, Session: *sess}))
}

func (h *Handler) resolvePrincipal(r *http.Request, req models.LoginRequest) (string, string, error) {
	switch req.Role {
	case models.RolePerformer:
		performer, err := h.DB.GetPerformerByEmail(r.Context(), req.Email)
		if err != nil {
			return "", "", err
		}
		return performer.ID, performer.Name, nil
	default:
		user, err := h.DB.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			return "", "", err
		}
		return user.ID, user.DisplayName, nil
	}
}

// Logout ends the session named by the bearer token. Ending an already-ended
// session still returns 200.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Logout failed", "missing bearer token"))
		return
	}

	if err := h.Sessions.EndSession(r.Context(), token); err != nil && !errors.Is(err, session.ErrNoSession) {
		h.Logger.Error("API", fmt.Sprintf("Logout: failed to end session: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Logout failed", err.Error()))
		return
	}

	h.Logger.LogSession("ENDED", "session ended via logout")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Session ended", nil))
}

// ComposeDraft stores the gift draft in the session's single slot,
// overwriting whatever was there.
func (h *Handler) ComposeDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Draft rejected", "no active session"))
		return
	}

	var d models.GiftDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ComposeDraft: failed to decode request body: %v", err))
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.Sequencer.Compose(r.Context(), sess.ID, d); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("ComposeDraft: rejected draft: %v", err))
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Draft rejected", err.Error()))
		return
	}

	h.Logger.Debug("API", fmt.Sprintf("ComposeDraft: draft stored for session %s", sess.ID))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Draft stored", d))
}

// ReviewDraft returns the pending draft for the confirm screen.
func (h *Handler) ReviewDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Review failed", "no active session"))
		return
	}

	d, err := h.Sequencer.Review(r.Context(), sess.ID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("No pending draft", "compose a gift first"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ReviewDraft: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Review failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Pending draft", d))
}

// AbandonDraft clears the slot without creating a gift.
func (h *Handler) AbandonDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Abandon failed", "no active session"))
		return
	}

	if err := h.Sequencer.Abandon(r.Context(), sess.ID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AbandonDraft: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Abandon failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Draft abandoned", nil))
}

// ConfirmGift commits the pending draft as a gift. The draft survives every
// failure here so the sender can retry without re-entering anything.
func (h *Handler) ConfirmGift(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Confirm failed", "no active session"))
		return
	}

	created, err := h.Sequencer.Confirm(r.Context(), sess)
	if err != nil {
		switch {
		case errors.Is(err, draft.ErrNoDraft):
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("No pending draft", "compose a gift first"))
		case errors.Is(err, draft.ErrSessionRequired):
			writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Confirm failed", "active session required"))
		case errors.Is(err, gift.ErrConfirmInFlight):
			h.Logger.Warn("API", fmt.Sprintf("ConfirmGift: duplicate confirm for session %s", sess.ID))
			writeJSON(w, http.StatusConflict, utils.ErrorResponse("Confirm already in progress", "this gift is already being processed"))
		case db.IsNotFound(err):
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Confirm failed", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("ConfirmGift: %v", err))
			writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Confirm failed", err.Error()))
		}
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Gift created", created))
}

// Thanks returns the confirmed draft for the thanks screen and clears the
// slot. A second call finds the slot empty and sends the client back to
// compose.
func (h *Handler) Thanks(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Thanks failed", "no active session"))
		return
	}

	d, err := h.Sequencer.Thanks(r.Context(), sess.ID)
	if err != nil {
		if errors.Is(err, draft.ErrNoDraft) {
			writeJSON(w, http.StatusNotFound, utils.ErrorResponse("No pending draft", "compose a gift first"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Thanks: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Thanks failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Gift completed", d))
}

// History lists the caller's gifts, newest first. Performers see gifts they
// received, fans see gifts they sent. Optional filters narrow by performer
// and event.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("History failed", "no active session"))
		return
	}

	filter := models.GiftFilter{
		PerformerID: r.URL.Query().Get("performer_id"),
		EventID:     r.URL.Query().Get("event_id"),
	}
	if sess.Role == models.RolePerformer {
		filter.PerformerID = sess.UserID
	} else {
		filter.UserID = sess.UserID
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("History failed", "limit must be an integer"))
			return
		}
		limit = parsed
	}

	gifts, err := h.GiftService.History(r.Context(), filter, limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("History: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("History failed", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Gift history", gifts))
}

// ListPerformers returns the performer roster for the compose screen.
func (h *Handler) ListPerformers(w http.ResponseWriter, r *http.Request) {
	performers, err := h.DB.ListPerformers(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPerformers: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list performers", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Performers", performers))
}

func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
