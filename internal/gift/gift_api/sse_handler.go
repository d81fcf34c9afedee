package gift_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
	"ms-gifting/internal/sse"
)

// SSEHandler streams newly created gifts to connected dashboards over
// Server-Sent Events.
type SSEHandler struct {
	Logger       *logger.Logger
	EventEmitter *sse.GiftEventEmitter
}

func NewSSEHandler(log *logger.Logger) *SSEHandler {
	return &SSEHandler{
		Logger:       log,
		EventEmitter: sse.NewGiftEventEmitter(),
	}
}

// HandlePerformerGifts streams gifts for one performer as they arrive.
func (h *SSEHandler) HandlePerformerGifts(w http.ResponseWriter, r *http.Request) {
	performerID := chi.URLParam(r, "performerID")
	if performerID == "" {
		http.Error(w, "Performer ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	giftChan := h.EventEmitter.SubscribeToPerformer(ctx, performerID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"performerID\":\"%s\"}\n\n", performerID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to gift stream for performer: %s", performerID))

	for {
		select {
		case gift, ok := <-giftChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for performer: %s", performerID))
				return
			}

			jsonData, err := json.Marshal(gift)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize gift event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: gift\ndata: %s\n\n", jsonData)
			w.(http.Flusher).Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from performer gift stream: %s", performerID))
			return
		}
	}
}

// HandleEventGifts streams gifts for one event as they arrive.
func (h *SSEHandler) HandleEventGifts(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	giftChan := h.EventEmitter.SubscribeToEvent(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventID\":\"%s\"}\n\n", eventID)
	w.(http.Flusher).Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to gift stream for event: %s", eventID))

	for {
		select {
		case gift, ok := <-giftChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for event: %s", eventID))
				return
			}

			jsonData, err := json.Marshal(gift)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize gift event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: gift\ndata: %s\n\n", jsonData)
			w.(http.Flusher).Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from event gift stream: %s", eventID))
			return
		}
	}
}

// EmitGift broadcasts a created gift to all subscribed clients. Called from
// the Kafka consumer loop.
func (h *SSEHandler) EmitGift(gift models.Gift) {
	h.EventEmitter.EmitGift(gift)
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
