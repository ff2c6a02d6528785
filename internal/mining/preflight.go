package mining

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/rules"
)

// PreflightChecker reports every reason a session could not, or should not, start.
// Rules are evaluated independently so the caller can show all issues at once.
type PreflightChecker struct {
	lands  LandDirectory
	tools  ToolPool
	ledger Ledger
	caps   EmissionCaps
	cfg    Config
}

// NewPreflightChecker creates a checker
func NewPreflightChecker(lands LandDirectory, tools ToolPool, ledger Ledger, caps EmissionCaps, cfg Config) *PreflightChecker {
	return &PreflightChecker{lands: lands, tools: tools, ledger: ledger, caps: caps, cfg: cfg}
}

func issue(code, format string, args ...interface{}) domain.PreflightIssue {
	return domain.PreflightIssue{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Check evaluates a start request for candidateToolCount tools on landID.
// Only lookup failures are returned as errors.
func (c *PreflightChecker) Check(ctx context.Context, userID, landID string, candidateToolCount int) (*domain.PreflightResult, error) {
	res := &domain.PreflightResult{
		FoodHours: decimal.Zero,
		Warnings:  make([]domain.PreflightIssue, 0),
		Errors:    make([]domain.PreflightIssue, 0),
	}

	land, err := c.lands.GetLand(ctx, landID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetLand, err)
	}
	level, err := c.lands.GetUserLevel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetUserLevel, err)
	}
	res.MaxTools = rules.MaxToolsForLevel(level)

	if land.OwnerID != userID {
		res.Errors = append(res.Errors, issue(IssueLandNotOwned, MsgLandNotOwned))
	}

	required, mineable := rules.RequiredTool(land.Category)
	if !mineable {
		res.Errors = append(res.Errors, issue(IssueLandNotMineable, MsgLandNotMineable))
	} else {
		res.Resource, _ = rules.ProducedResource(land.Category)
		idle, err := c.tools.CountIdle(ctx, userID, required)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgCountIdleTools, err)
		}
		res.IdleTools = idle
		if idle == 0 {
			res.Errors = append(res.Errors, issue(IssueNoIdleTools, MsgNoIdleTools, required))
		} else if candidateToolCount > idle {
			res.Warnings = append(res.Warnings, issue(IssueNotEnoughIdleTools, MsgNotEnoughIdleTools, idle))
		}
	}

	if candidateToolCount <= 0 {
		res.Errors = append(res.Errors, issue(IssueNoToolsSelected, MsgNoToolsSelected))
	} else if c.cfg.FoodPerToolHour.IsPositive() {
		food, err := c.ledger.Balance(ctx, userID, domain.ResourceFood)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgGetFoodBalance, err)
		}
		draw := c.cfg.FoodPerToolHour.Mul(decimal.NewFromInt(int64(candidateToolCount)))
		hours := food.Available().Div(draw)
		res.FoodHours = hours.Truncate(2)

		if hours.LessThan(decimal.NewFromInt(1)) {
			res.Errors = append(res.Errors, issue(IssueFoodInsufficient, MsgFoodInsufficient, res.FoodHours))
		} else if hours.LessThan(c.cfg.LowFoodHours) {
			res.Warnings = append(res.Warnings, issue(IssueFoodLow, MsgFoodLow, res.FoodHours))
		}
	}

	if res.Resource != "" && c.caps.IsCapped(res.Resource) {
		if status, ok := c.caps.Status(ctx, res.Resource); ok && !status.Remaining.IsPositive() {
			res.Warnings = append(res.Warnings, issue(IssueEmissionExhausted, MsgEmissionExhausted, res.Resource))
		}
	}

	if candidateToolCount > res.MaxTools {
		res.Errors = append(res.Errors, issue(IssueLevelCapExceeded, MsgLevelCapExceeded, level, res.MaxTools))
	}

	res.CanStart = len(res.Errors) == 0
	return res, nil
}
