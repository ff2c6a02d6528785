package domain

// ToolCategory is one of the three implement types
type ToolCategory string

const (
	ToolPickaxe ToolCategory = "pickaxe"
	ToolAxe     ToolCategory = "axe"
	ToolHoe     ToolCategory = "hoe"
)

// IsValid reports whether c is a known tool category
func (c ToolCategory) IsValid() bool {
	switch c {
	case ToolPickaxe, ToolAxe, ToolHoe:
		return true
	}
	return false
}

// ToolStatus is the repair state of a tool
type ToolStatus string

const (
	ToolStatusNormal    ToolStatus = "normal"
	ToolStatusDamaged   ToolStatus = "damaged"
	ToolStatusRepairing ToolStatus = "repairing"
)

// Tool is an implement owned by a user. Durability and InUse are only
// changed by mining session transitions.
type Tool struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	Category      ToolCategory `json:"category"`
	Status        ToolStatus   `json:"status"`
	Durability    int          `json:"durability"`
	MaxDurability int          `json:"max_durability"`
	InUse         bool         `json:"in_use"`
}

// Idle reports whether the tool can be reserved by a new session
func (t Tool) Idle() bool {
	return t.Status == ToolStatusNormal && !t.InUse && t.Durability > 0
}

// ApplyWear subtracts durability and marks the tool damaged once it is worn out
func (t *Tool) ApplyWear(loss int) {
	if loss <= 0 {
		return
	}
	t.Durability -= loss
	if t.Durability <= 0 {
		t.Durability = 0
		t.Status = ToolStatusDamaged
	}
}
