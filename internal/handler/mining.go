package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// SessionService is the session registry surface used by the HTTP layer
type SessionService interface {
	StartSession(ctx context.Context, userID, landID string, toolIDs []string) (*domain.MiningSession, error)
	StopSession(ctx context.Context, userID, sessionID string) (*domain.Settlement, error)
	StopAll(ctx context.Context, userID string) *domain.StopAllResult
	AddTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error)
	RemoveTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error)
	Get(ctx context.Context, userID, sessionID string) (*domain.MiningSession, error)
	List(ctx context.Context, userID string, includeClosed bool) []*domain.MiningSession
	Summarize(ctx context.Context, userID string) *domain.MiningSummary
}

// Preflighter reports whether a session could start
type Preflighter interface {
	Check(ctx context.Context, userID, landID string, candidateToolCount int) (*domain.PreflightResult, error)
}

// ToolLister lists a user's idle tools
type ToolLister interface {
	ListAvailable(ctx context.Context, userID string, category *domain.ToolCategory) ([]domain.Tool, error)
}

// EmissionReader reads daily cap state
type EmissionReader interface {
	Statuses(ctx context.Context) []domain.CapStatus
}

// StartSessionRequest starts a session on a land with the given tools
type StartSessionRequest struct {
	LandID  string   `json:"land_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ToolIDs []string `json:"tool_ids" validate:"required,min=1,max=100,unique,dive,required,max=64"`
}

// ToolsRequest adds or removes tools on a running session
type ToolsRequest struct {
	ToolIDs []string `json:"tool_ids" validate:"required,min=1,max=100,unique,dive,required,max=64"`
}

// PreflightRequest asks whether a session could start
type PreflightRequest struct {
	LandID    string `json:"land_id" validate:"required,max=64,excludesall=\x00\n\r\t"`
	ToolCount int    `json:"tool_count" validate:"min=0,max=100"`
}

// SessionListResponse wraps a session listing
type SessionListResponse struct {
	Sessions []*domain.MiningSession `json:"sessions"`
	Count    int                     `json:"count"`
}

// ToolListResponse wraps an idle-tool listing
type ToolListResponse struct {
	Tools []domain.Tool `json:"tools"`
	Count int           `json:"count"`
}

// EmissionResponse lists the daily caps
type EmissionResponse struct {
	Caps []domain.CapStatus `json:"caps"`
}

// MiningHandler serves the mining session endpoints
type MiningHandler struct {
	sessions  SessionService
	preflight Preflighter
	tools     ToolLister
	emission  EmissionReader
}

// NewMiningHandler creates a new MiningHandler
func NewMiningHandler(sessions SessionService, preflight Preflighter, tools ToolLister, emission EmissionReader) *MiningHandler {
	return &MiningHandler{
		sessions:  sessions,
		preflight: preflight,
		tools:     tools,
		emission:  emission,
	}
}

// HandleStartSession starts a mining session
// POST /api/v1/mining/sessions
func (h *MiningHandler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Start session"); err != nil {
		return
	}

	session, err := h.sessions.StartSession(r.Context(), userID, req.LandID, req.ToolIDs)
	if err != nil {
		respondServiceError(w, r, OpStartSession, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// HandleListSessions lists the caller's sessions, newest first
// GET /api/v1/mining/sessions?include_closed=true
func (h *MiningHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}
	includeClosed, ok := GetBoolQueryParam(r, w, "include_closed", false)
	if !ok {
		return
	}

	sessions := h.sessions.List(r.Context(), userID, includeClosed)
	if sessions == nil {
		sessions = []*domain.MiningSession{}
	}
	respondJSON(w, http.StatusOK, SessionListResponse{Sessions: sessions, Count: len(sessions)})
}

// HandleGetSession returns one session
// GET /api/v1/mining/sessions/{id}
func (h *MiningHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	session, err := h.sessions.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, OpGetSession, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// HandleStopSession closes a session and returns its settlement
// POST /api/v1/mining/sessions/{id}/stop
func (h *MiningHandler) HandleStopSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	settlement, err := h.sessions.StopSession(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, OpStopSession, err)
		return
	}
	respondJSON(w, http.StatusOK, settlement)
}

// HandleStopAll closes every open session of the caller
// POST /api/v1/mining/sessions/stop-all
func (h *MiningHandler) HandleStopAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	result := h.sessions.StopAll(r.Context(), userID)
	status := http.StatusOK
	if result.Failed > 0 {
		// Some sessions stay in stopping and will be retried by the tick loop
		status = http.StatusMultiStatus
		logger.FromContext(r.Context()).Warn(OpStopAll, "user_id", userID, "failed", result.Failed)
	}
	respondJSON(w, status, result)
}

// HandleAddTools assigns more tools to a running session
// POST /api/v1/mining/sessions/{id}/tools/add
func (h *MiningHandler) HandleAddTools(w http.ResponseWriter, r *http.Request) {
	h.handleTools(w, r, "Add tools", OpAddTools, h.sessions.AddTools)
}

// HandleRemoveTools releases tools from a running session
// POST /api/v1/mining/sessions/{id}/tools/remove
func (h *MiningHandler) HandleRemoveTools(w http.ResponseWriter, r *http.Request) {
	h.handleTools(w, r, "Remove tools", OpRemoveTools, h.sessions.RemoveTools)
}

func (h *MiningHandler) handleTools(
	w http.ResponseWriter,
	r *http.Request,
	actionName, opName string,
	action func(context.Context, string, string, []string) (*domain.MiningSession, error),
) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req ToolsRequest
	if err := DecodeAndValidateRequest(r, w, &req, actionName); err != nil {
		return
	}

	session, err := action(r.Context(), userID, chi.URLParam(r, "id"), req.ToolIDs)
	if err != nil {
		respondServiceError(w, r, opName, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// HandleSummary aggregates the caller's active sessions
// GET /api/v1/mining/summary
func (h *MiningHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.sessions.Summarize(r.Context(), userID))
}

// HandlePreflight reports every issue that would block or weaken a start
// POST /api/v1/mining/preflight
func (h *MiningHandler) HandlePreflight(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req PreflightRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Preflight"); err != nil {
		return
	}

	result, err := h.preflight.Check(r.Context(), userID, req.LandID, req.ToolCount)
	if err != nil {
		respondServiceError(w, r, OpPreflight, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleEmission returns the daily emission caps
// GET /api/v1/mining/emission
func (h *MiningHandler) HandleEmission(w http.ResponseWriter, r *http.Request) {
	caps := h.emission.Statuses(r.Context())
	if caps == nil {
		caps = []domain.CapStatus{}
	}
	respondJSON(w, http.StatusOK, EmissionResponse{Caps: caps})
}

// HandleAvailableTools lists the caller's idle tools, best durability first
// GET /api/v1/tools/available?category=pickaxe
func (h *MiningHandler) HandleAvailableTools(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var category *domain.ToolCategory
	if raw := GetOptionalQueryParam(r, "category", ""); raw != "" {
		c := domain.ToolCategory(strings.ToLower(raw))
		if !c.IsValid() {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidCategory, raw))
			return
		}
		category = &c
	}

	tools, err := h.tools.ListAvailable(r.Context(), userID, category)
	if err != nil {
		respondServiceError(w, r, OpListTools, err)
		return
	}
	if tools == nil {
		tools = []domain.Tool{}
	}
	respondJSON(w, http.StatusOK, ToolListResponse{Tools: tools, Count: len(tools)})
}
