package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/validation"
)

// Seed is reference data loaded from a JSON file: player levels, lands, tools and opening balances
type Seed struct {
	Levels   map[string]int `json:"levels"`
	Lands    []domain.Land  `json:"lands"`
	Tools    []domain.Tool  `json:"tools"`
	Balances []SeedBalance  `json:"balances"`
}

// SeedBalance credits amount of a resource to a user
type SeedBalance struct {
	UserID   string              `json:"user_id"`
	Resource domain.ResourceType `json:"resource"`
	Amount   decimal.Decimal     `json:"amount"`
}

// SeedResult counts the applied records
type SeedResult struct {
	Levels   int
	Lands    int
	Tools    int
	Balances int
}

// LoadSeed reads a seed file and validates it against the seed schema
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgFailedReadSeed, path, err)
	}

	if err := validation.NewSchemaValidator().ValidateBytes(data, validation.SchemaSeed); err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgInvalidSeed, path, err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrMsgFailedParseSeed, path, err)
	}
	return &seed, nil
}

// ApplySeed writes the seed through s. Tools without a status are normal and a
// missing max durability defaults to the current durability. Balances are credited,
// so applying the same seed twice doubles them.
func ApplySeed(ctx context.Context, s Seeder, seed *Seed) (SeedResult, error) {
	var result SeedResult

	for userID, level := range seed.Levels {
		if err := s.SetUserLevel(ctx, userID, level); err != nil {
			return result, fmt.Errorf("%s: level %s: %w", ErrMsgFailedApplySeed, userID, err)
		}
		result.Levels++
	}

	for _, land := range seed.Lands {
		if err := s.UpsertLand(ctx, land); err != nil {
			return result, fmt.Errorf("%s: land %s: %w", ErrMsgFailedApplySeed, land.ID, err)
		}
		result.Lands++
	}

	for _, tool := range seed.Tools {
		if tool.Status == "" {
			tool.Status = domain.ToolStatusNormal
		}
		if tool.MaxDurability < tool.Durability {
			tool.MaxDurability = tool.Durability
		}
		if err := s.UpsertTool(ctx, tool); err != nil {
			return result, fmt.Errorf("%s: tool %s: %w", ErrMsgFailedApplySeed, tool.ID, err)
		}
		result.Tools++
	}

	for _, b := range seed.Balances {
		if err := s.Credit(ctx, b.UserID, b.Resource, b.Amount); err != nil {
			return result, fmt.Errorf("%s: balance %s/%s: %w", ErrMsgFailedApplySeed, b.UserID, b.Resource, err)
		}
		result.Balances++
	}

	slog.Info(LogMsgSeedApplied,
		"levels", result.Levels,
		"lands", result.Lands,
		"tools", result.Tools,
		"balances", result.Balances)

	return result, nil
}
