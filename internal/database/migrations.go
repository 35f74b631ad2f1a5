package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/permissions"
	"github.com/medifixhq/medifix/internal/rbac"
	"github.com/medifixhq/medifix/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Hospital{},
		&models.Role{},
		&models.UserRoleAssignment{},
		&models.Permission{},
		&models.RolePermissionEntry{},
		&models.UserPermissionOverride{},
		&models.Asset{},
		&models.WorkOrder{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedData populates the permission catalog, system roles, their global
// default permission entries, and a bootstrap administrator account.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	if err := seedSystemRoles(db); err != nil {
		return err
	}

	if err := seedRoleDefaults(db); err != nil {
		return err
	}

	return seedDefaultAdmin(db)
}

var systemRoleNames = map[string]string{
	rbac.RoleGlobalAdmin:        "Global Administrator",
	rbac.RoleHospitalAdmin:      "Hospital Administrator",
	rbac.RoleFacilityManager:    "Facility Manager",
	rbac.RoleMaintenanceManager: "Maintenance Manager",
	rbac.RoleEngineer:           "Engineer",
	rbac.RoleSupervisor:         "Supervisor",
	rbac.RoleSeniorTechnician:   "Senior Technician",
	rbac.RoleTechnician:         "Technician",
	rbac.RoleReporter:           "Reporter",
}

func seedSystemRoles(db *gorm.DB) error {
	for _, code := range rbac.SystemRoleCodes() {
		role := models.Role{
			Code:     code,
			Name:     systemRoleNames[code],
			IsSystem: true,
		}
		if err := db.Where(models.Role{Code: code}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", code, err)
		}
	}
	return nil
}

// roleDefaultGrants lists the global-default permission entries created for
// each system role. Tenants override individual rows with hospital-scoped
// entries; users override individual keys with grant/deny rows.
var roleDefaultGrants = map[string][]string{
	rbac.RoleGlobalAdmin: {
		"work_orders.view", "work_orders.create", "work_orders.approve",
		"work_orders.review", "work_orders.reject", "work_orders.reassign",
		"work_orders.update", "assets.view", "assets.manage", "users.view",
		"users.manage", "hospitals.view", "hospitals.manage",
		"notifications.view", "notifications.manage", "permissions.view",
		"permissions.manage", "audit.view", "reports.view",
	},
	rbac.RoleHospitalAdmin: {
		"work_orders.view", "work_orders.create", "work_orders.approve",
		"work_orders.review", "work_orders.reject", "work_orders.reassign",
		"work_orders.update", "assets.view", "assets.manage", "users.view",
		"users.manage", "hospitals.view", "notifications.view",
		"permissions.view", "permissions.manage", "audit.view", "reports.view",
	},
	rbac.RoleFacilityManager: {
		"work_orders.view", "work_orders.create", "work_orders.approve",
		"work_orders.review", "work_orders.reject", "work_orders.reassign",
		"work_orders.update", "assets.view", "assets.manage",
		"notifications.view", "reports.view",
	},
	rbac.RoleMaintenanceManager: {
		"work_orders.view", "work_orders.create", "work_orders.review",
		"work_orders.reject", "work_orders.reassign", "work_orders.update",
		"assets.view", "notifications.view", "reports.view",
	},
	rbac.RoleEngineer: {
		"work_orders.view", "work_orders.review", "work_orders.reject",
		"work_orders.reassign", "work_orders.update", "assets.view",
		"notifications.view",
	},
	rbac.RoleSupervisor: {
		"work_orders.view", "work_orders.approve", "work_orders.reject",
		"work_orders.reassign", "work_orders.update", "assets.view",
		"notifications.view",
	},
	rbac.RoleSeniorTechnician: {
		"work_orders.view", "work_orders.start_work",
		"work_orders.complete_work", "work_orders.reject", "assets.view",
		"notifications.view",
	},
	rbac.RoleTechnician: {
		"work_orders.view", "work_orders.start_work",
		"work_orders.complete_work", "work_orders.reject", "assets.view",
		"notifications.view",
	},
	rbac.RoleReporter: {
		"work_orders.view", "work_orders.create", "work_orders.close",
		"work_orders.reject", "notifications.view",
	},
}

func seedRoleDefaults(db *gorm.DB) error {
	for code, grants := range roleDefaultGrants {
		var role models.Role
		if err := db.Where("code = ?", code).First(&role).Error; err != nil {
			return fmt.Errorf("seed defaults for %s: %w", code, err)
		}

		for _, key := range grants {
			entry := models.RolePermissionEntry{
				RoleID:       role.ID,
				PermissionID: key,
				Allowed:      true,
			}
			err := db.Where("role_id = ? AND permission_id = ? AND hospital_id IS NULL", role.ID, key).
				Attrs(entry).
				FirstOrCreate(&models.RolePermissionEntry{}).Error
			if err != nil {
				return fmt.Errorf("seed entry %s/%s: %w", code, key, err)
			}
		}
	}
	return nil
}

// DefaultAdminUsername is the bootstrap account created on first start with
// an unscoped global_admin assignment.
const DefaultAdminUsername = "admin"

func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", DefaultAdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword(DefaultAdminUsername)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}

	admin := models.User{
		Username:  DefaultAdminUsername,
		Email:     "admin@medifix.local",
		Password:  hash,
		FirstName: "Default",
		LastName:  "Administrator",
		IsActive:  true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	var role models.Role
	if err := db.Where("code = ?", rbac.RoleGlobalAdmin).First(&role).Error; err != nil {
		return err
	}

	assignment := models.UserRoleAssignment{
		UserID: admin.ID,
		RoleID: role.ID,
	}
	return db.Create(&assignment).Error
}
