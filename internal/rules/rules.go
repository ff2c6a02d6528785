// Package rules holds the fixed land, tool and resource compatibility tables.
package rules

import "github.com/service-lgtm/pw-next-sub000/internal/domain"

const (
	// ToolsPerLevel is how many concurrent tools each user level unlocks
	ToolsPerLevel = 10
	// MaxLevel is the highest level that raises the tool cap
	MaxLevel = 7
)

type landRule struct {
	tool     domain.ToolCategory
	resource domain.ResourceType
}

// Mineable categories only. Anything absent here fails closed.
var landRules = map[domain.LandCategory]landRule{
	domain.LandOreMine:   {tool: domain.ToolPickaxe, resource: domain.ResourceIron},
	domain.LandStoneMine: {tool: domain.ToolPickaxe, resource: domain.ResourceStone},
	domain.LandYLDMine:   {tool: domain.ToolPickaxe, resource: domain.ResourceYLD},
	domain.LandForest:    {tool: domain.ToolAxe, resource: domain.ResourceWood},
	domain.LandFarm:      {tool: domain.ToolHoe, resource: domain.ResourceFood},
}

// RequiredTool returns the tool category a land category needs
func RequiredTool(category domain.LandCategory) (domain.ToolCategory, bool) {
	r, ok := landRules[category]
	return r.tool, ok
}

// ProducedResource returns what a land category yields
func ProducedResource(category domain.LandCategory) (domain.ResourceType, bool) {
	r, ok := landRules[category]
	return r.resource, ok
}

// IsMineable reports whether sessions can be started on the category
func IsMineable(category domain.LandCategory) bool {
	_, ok := landRules[category]
	return ok
}

// MaxToolsForLevel is the concurrent tool cap for a user level.
// Levels below 1 count as 1 and levels above MaxLevel are clamped.
func MaxToolsForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return level * ToolsPerLevel
}

// MineableCategories lists categories in a stable order, used for display
func MineableCategories() []domain.LandCategory {
	return []domain.LandCategory{
		domain.LandOreMine,
		domain.LandStoneMine,
		domain.LandYLDMine,
		domain.LandForest,
		domain.LandFarm,
	}
}
