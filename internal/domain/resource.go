package domain

import "github.com/shopspring/decimal"

// ResourceType identifies a ledger resource
type ResourceType string

const (
	ResourceFood  ResourceType = "food"
	ResourceIron  ResourceType = "iron"
	ResourceStone ResourceType = "stone"
	ResourceWood  ResourceType = "wood"
	ResourceYLD   ResourceType = "yld"

	// Crafted goods are never produced by mining; they only live in the ledger
	ResourceBrick ResourceType = "brick"
	ResourceSeed  ResourceType = "seed"
)

// AllResources lists every known resource type
var AllResources = []ResourceType{
	ResourceFood,
	ResourceIron,
	ResourceStone,
	ResourceWood,
	ResourceYLD,
	ResourceBrick,
	ResourceSeed,
}

// IsValid reports whether r is a known resource type
func (r ResourceType) IsValid() bool {
	for _, known := range AllResources {
		if r == known {
			return true
		}
	}
	return false
}

// LedgerEntry is a user's balance for one resource
type LedgerEntry struct {
	UserID   string          `json:"user_id"`
	Resource ResourceType    `json:"resource"`
	Total    decimal.Decimal `json:"total"`
	Frozen   decimal.Decimal `json:"frozen"`
}

// Available is the spendable part of the balance
func (e LedgerEntry) Available() decimal.Decimal {
	avail := e.Total.Sub(e.Frozen)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}
