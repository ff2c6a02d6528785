package domain

import "github.com/shopspring/decimal"

// LandCategory is the fixed land classification
type LandCategory string

const (
	LandOreMine   LandCategory = "ore_mine"
	LandStoneMine LandCategory = "stone_mine"
	LandForest    LandCategory = "forest"
	LandFarm      LandCategory = "farm"
	LandYLDMine   LandCategory = "yld_mine"

	// Non-mineable categories
	LandUrban       LandCategory = "urban"
	LandResidential LandCategory = "residential"
	LandCommercial  LandCategory = "commercial"
)

// Land is a parcel owned by a user. Lands are immutable once fetched.
type Land struct {
	ID       string       `json:"id"`
	OwnerID  string       `json:"owner_id"`
	Name     string       `json:"name"`
	Category LandCategory `json:"category"`
	// Reserve is the finite resource capacity; nil means unlimited
	Reserve *decimal.Decimal `json:"reserve,omitempty"`
}
