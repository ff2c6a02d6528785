package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Helper functions for responding

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, so only log
		slog.Error(LogMsgEncodeResponseFailed, "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteResponseFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a service failure and answers with the mapped status and message
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName, "error", err)
	} else {
		log.Warn(opName, "error", err)
	}
	respondError(w, status, msg)
}

// Log messages for response writing
const (
	LogMsgEncodeResponseFailed = "Failed to encode JSON response"
	LogMsgWriteResponseFailed  = "Failed to write response buffer"
)

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"
	ErrMsgUnavailableError   = "Server is temporarily unavailable. Please try again later."

	// Lookup messages
	ErrMsgUserNotFoundError    = "User not found"
	ErrMsgLandNotFoundError    = "Land not found"
	ErrMsgSessionNotFoundError = "Mining session not found"

	// Start and tool messages
	ErrMsgLandNotMineableError   = "That land cannot be mined"
	ErrMsgLandNotOwnedError      = "You do not own that land"
	ErrMsgIncompatibleToolError  = "Those tools cannot work this land"
	ErrMsgToolUnavailableError   = "One or more tools are unavailable"
	ErrMsgLevelCapExceededError  = "Too many tools for your level"
	ErrMsgSessionNotActiveError  = "Mining session is not active"
	ErrMsgInsufficientFoodError  = "Not enough food"
	ErrMsgRateUnavailableError   = "Output rates are unavailable right now"
	ErrMsgStopDeferredError      = "Finished hours could not be settled yet. Try stopping again shortly."
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and
// messages users can act on
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrLandNotFound):
		return http.StatusNotFound, ErrMsgLandNotFoundError
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, ErrMsgSessionNotFoundError
	case errors.Is(err, domain.ErrLandNotMineable):
		return http.StatusBadRequest, ErrMsgLandNotMineableError
	case errors.Is(err, domain.ErrLandNotOwned):
		return http.StatusForbidden, ErrMsgLandNotOwnedError
	case errors.Is(err, domain.ErrIncompatibleTool):
		return http.StatusBadRequest, ErrMsgIncompatibleToolError
	case errors.Is(err, domain.ErrLevelCapExceeded):
		return http.StatusBadRequest, ErrMsgLevelCapExceededError
	case errors.Is(err, domain.ErrToolUnavailable):
		return http.StatusConflict, ErrMsgToolUnavailableError
	case errors.Is(err, domain.ErrSessionNotActive):
		return http.StatusConflict, ErrMsgSessionNotActiveError
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return http.StatusBadRequest, ErrMsgInsufficientFoodError
	case errors.Is(err, domain.ErrInvalidInput):
		// Domain validation messages are written for users
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrSettlementDeferred):
		return http.StatusServiceUnavailable, ErrMsgStopDeferredError
	case errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusServiceUnavailable, ErrMsgRateUnavailableError
	case errors.Is(err, domain.ErrDatabaseError):
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
