package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// RateAdmin reads and changes per-tool output rates
type RateAdmin interface {
	Rates() map[domain.ResourceType]decimal.Decimal
	SetRate(resource domain.ResourceType, rate decimal.Decimal) error
}

// LimitSetter changes a daily emission limit
type LimitSetter interface {
	SetLimit(ctx context.Context, resource domain.ResourceType, limit decimal.Decimal) (domain.CapStatus, error)
}

// RolloverTrigger forces the emission day check
type RolloverTrigger interface {
	TriggerNow(ctx context.Context) []domain.CapStatus
}

// SetRateRequest sets the hourly output of one tool for a resource
type SetRateRequest struct {
	Resource string          `json:"resource" validate:"required,resource"`
	Rate     decimal.Decimal `json:"rate"`
}

// SetLimitRequest sets the daily emission limit of a capped resource
type SetLimitRequest struct {
	Resource string          `json:"resource" validate:"required,resource"`
	Limit    decimal.Decimal `json:"limit"`
}

// RatesResponse lists every configured rate
type RatesResponse struct {
	Rates map[domain.ResourceType]decimal.Decimal `json:"rates"`
}

// RolloverResponse lists the counters reset by a manual rollover
type RolloverResponse struct {
	Rolled []domain.CapStatus `json:"rolled"`
}

// AdminHandler serves operator endpoints for rates and emission caps
type AdminHandler struct {
	rates  RateAdmin
	caps   LimitSetter
	roller RolloverTrigger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(rates RateAdmin, caps LimitSetter, roller RolloverTrigger) *AdminHandler {
	return &AdminHandler{rates: rates, caps: caps, roller: roller}
}

// HandleGetRates returns the rate table
// GET /api/v1/admin/rates
func (h *AdminHandler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RatesResponse{Rates: h.rates.Rates()})
}

// HandleSetRate changes one rate. Running sessions pick it up on their next settled hour.
// PUT /api/v1/admin/rates
func (h *AdminHandler) HandleSetRate(w http.ResponseWriter, r *http.Request) {
	var req SetRateRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set rate"); err != nil {
		return
	}
	if req.Rate.IsNegative() {
		respondError(w, http.StatusBadRequest, ErrMsgNegativeAmount)
		return
	}

	resource := domain.ResourceType(strings.ToLower(req.Resource))
	if err := h.rates.SetRate(resource, req.Rate); err != nil {
		respondServiceError(w, r, OpSetRate, err)
		return
	}

	logger.FromContext(r.Context()).Info("Rate updated", "resource", resource, "rate", req.Rate)
	respondJSON(w, http.StatusOK, RatesResponse{Rates: h.rates.Rates()})
}

// HandleSetEmissionLimit changes today's limit of a capped resource
// PUT /api/v1/admin/emission/limit
func (h *AdminHandler) HandleSetEmissionLimit(w http.ResponseWriter, r *http.Request) {
	var req SetLimitRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Set emission limit"); err != nil {
		return
	}
	if req.Limit.IsNegative() {
		respondError(w, http.StatusBadRequest, ErrMsgNegativeAmount)
		return
	}

	resource := domain.ResourceType(strings.ToLower(req.Resource))
	status, err := h.caps.SetLimit(r.Context(), resource, req.Limit)
	if err != nil {
		respondServiceError(w, r, OpSetLimit, err)
		return
	}

	logger.FromContext(r.Context()).Info("Emission limit updated", "resource", resource, "limit", req.Limit)
	respondJSON(w, http.StatusOK, status)
}

// HandleRollover forces the day check on every counter
// POST /api/v1/admin/emission/rollover
func (h *AdminHandler) HandleRollover(w http.ResponseWriter, r *http.Request) {
	rolled := h.roller.TriggerNow(r.Context())
	if rolled == nil {
		rolled = []domain.CapStatus{}
	}
	respondJSON(w, http.StatusOK, RolloverResponse{Rolled: rolled})
}
