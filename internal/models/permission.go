package models

// Permission mirrors a registered permission key in the database so role and
// user entries can reference it with referential integrity. The primary key
// is the dotted, case-sensitive permission key itself.
type Permission struct {
	BaseModel

	Module      string `gorm:"not null;index" json:"module"`
	Description string `json:"description"`
}

// RolePermissionEntry grants or denies one permission key to a role. The row
// with a nil hospital scope is the global default; a row with a hospital id
// is that tenant's override of the default. At most one row exists per
// (role, permission, scope).
type RolePermissionEntry struct {
	BaseModel

	RoleID       string  `gorm:"type:uuid;index:idx_role_perm_scope,unique;not null" json:"role_id"`
	PermissionID string  `gorm:"index:idx_role_perm_scope,unique;not null" json:"permission_id"`
	HospitalID   *string `gorm:"type:uuid;index:idx_role_perm_scope,unique" json:"hospital_id"`
	Allowed      bool    `gorm:"not null" json:"allowed"`

	Role       Role       `gorm:"foreignKey:RoleID" json:"-"`
	Permission Permission `gorm:"foreignKey:PermissionID" json:"-"`
}

// Override effects applied after role-derived permissions.
const (
	OverrideGrant = "grant"
	OverrideDeny  = "deny"
)

// UserPermissionOverride pins one permission key for one user. It is applied
// after role resolution and always wins for that exact key.
type UserPermissionOverride struct {
	BaseModel

	UserID       string `gorm:"type:uuid;index:idx_user_perm,unique;not null" json:"user_id"`
	PermissionID string `gorm:"index:idx_user_perm,unique;not null" json:"permission_id"`
	Effect       string `gorm:"type:varchar(8);not null" json:"effect"`

	Permission Permission `gorm:"foreignKey:PermissionID" json:"-"`
}
