package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/service-lgtm/pw-next-sub000/internal/eventlog"
)

// HistoryReader reads the mining audit trail
type HistoryReader interface {
	History(ctx context.Context, userID, eventType string, limit int) ([]eventlog.Event, error)
}

// HistoryResponse wraps logged events
type HistoryResponse struct {
	Events []eventlog.Event `json:"events"`
	Count  int              `json:"count"`
}

// HistoryHandler serves the event history endpoint
type HistoryHandler struct {
	history HistoryReader
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// HandleHistory lists the caller's session and emission events, newest first
// GET /api/v1/mining/history?type=session.stopped&limit=20
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	eventType := GetOptionalQueryParam(r, "type", "")
	if eventType != "" && !isLoggedEventType(eventType) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidEventType, eventType))
		return
	}

	limit := 0
	if raw := GetOptionalQueryParam(r, "limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidIntParam, "limit"))
			return
		}
		limit = n
	}

	events, err := h.history.History(r.Context(), userID, eventType, limit)
	if err != nil {
		respondServiceError(w, r, OpHistory, err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryResponse{Events: events, Count: len(events)})
}

func isLoggedEventType(t string) bool {
	for _, known := range eventlog.LoggedEventTypes {
		if string(known) == t {
			return true
		}
	}
	return false
}
