package models

// Role identifies a coarse job function. System roles carry the codes the
// workflow and capability table understand; custom roles belong to a single
// hospital and only participate in the database-backed permission entries.
type Role struct {
	BaseModel

	Code        string  `gorm:"uniqueIndex;not null" json:"code"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	IsSystem    bool    `gorm:"default:false" json:"is_system"`
	HospitalID  *string `gorm:"type:uuid;index" json:"hospital_id"`

	PermissionEntries []RolePermissionEntry `gorm:"foreignKey:RoleID" json:"permission_entries,omitempty"`
}

// UserRoleAssignment binds a user to a role, either globally (nil hospital)
// or inside one hospital.
type UserRoleAssignment struct {
	BaseModel

	UserID     string  `gorm:"type:uuid;index:idx_user_role_scope,unique;not null" json:"user_id"`
	RoleID     string  `gorm:"type:uuid;index:idx_user_role_scope,unique;not null" json:"role_id"`
	HospitalID *string `gorm:"type:uuid;index:idx_user_role_scope,unique" json:"hospital_id"`

	Role     Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}
