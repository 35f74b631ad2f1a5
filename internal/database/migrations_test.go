package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/rbac"
)

func openMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:?cache=private&_foreign_keys=1"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))
	return db
}

func TestSeedCreatesSystemRoles(t *testing.T) {
	db := openMigratedDB(t)

	var roles []models.Role
	require.NoError(t, db.Where("is_system = ?", true).Find(&roles).Error)
	require.Len(t, roles, len(rbac.SystemRoleCodes()))

	codes := make(map[string]bool, len(roles))
	for _, role := range roles {
		codes[role.Code] = true
	}
	for _, code := range rbac.SystemRoleCodes() {
		require.True(t, codes[code], "missing seeded role %s", code)
	}
}

func TestSeedSyncsPermissionCatalog(t *testing.T) {
	db := openMigratedDB(t)

	var perm models.Permission
	require.NoError(t, db.First(&perm, "id = ?", "work_orders.start_work").Error)
	require.Equal(t, "work_orders", perm.Module)
}

func TestSeedCreatesGlobalDefaults(t *testing.T) {
	db := openMigratedDB(t)

	var role models.Role
	require.NoError(t, db.Where("code = ?", rbac.RoleTechnician).First(&role).Error)

	var entries []models.RolePermissionEntry
	require.NoError(t, db.Where("role_id = ? AND hospital_id IS NULL", role.ID).Find(&entries).Error)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		require.True(t, entry.Allowed)
	}
}

func TestSeedCreatesDefaultAdminOnce(t *testing.T) {
	db := openMigratedDB(t)

	// Seeding twice must not duplicate the bootstrap account.
	require.NoError(t, SeedData(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", DefaultAdminUsername).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var admin models.User
	require.NoError(t, db.Where("username = ?", DefaultAdminUsername).First(&admin).Error)

	var assignments []models.UserRoleAssignment
	require.NoError(t, db.Preload("Role").Where("user_id = ?", admin.ID).Find(&assignments).Error)
	require.Len(t, assignments, 1)
	require.Equal(t, rbac.RoleGlobalAdmin, assignments[0].Role.Code)
	require.Nil(t, assignments[0].HospitalID)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}
