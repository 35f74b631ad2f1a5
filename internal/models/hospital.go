package models

// Hospital is an isolated tenant organisation. Work orders, assets, and most
// permission overrides are scoped to one hospital.
type Hospital struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Code     string `gorm:"uniqueIndex;not null" json:"code"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Timezone string `gorm:"default:'UTC'" json:"timezone"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
