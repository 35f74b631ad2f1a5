package models

// Asset is a maintainable piece of equipment or infrastructure inside a
// hospital. Work orders reference the asset they were raised against.
type Asset struct {
	BaseModel

	HospitalID string `gorm:"type:uuid;index;not null" json:"hospital_id"`
	Name       string `gorm:"not null" json:"name"`
	Tag        string `gorm:"index" json:"tag"`
	Category   string `gorm:"index" json:"category"`
	Location   string `json:"location"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}
