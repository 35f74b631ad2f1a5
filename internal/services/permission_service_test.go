package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medifixhq/medifix/internal/database/testutil"
	"github.com/medifixhq/medifix/internal/models"
	apperrors "github.com/medifixhq/medifix/pkg/errors"
)

func newPermissionServiceFixture(t *testing.T) (*PermissionService, *models.User, *models.Hospital) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
	svc, err := NewPermissionService(db, nil)
	require.NoError(t, err)

	user := models.User{Username: "tech1", Email: "tech1@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	hospital := models.Hospital{Name: "St. Anne General", Code: "ANNE"}
	require.NoError(t, db.Create(&hospital).Error)

	return svc, &user, &hospital
}

func TestPermissionServiceRoleLifecycle(t *testing.T) {
	svc, _, hospital := newPermissionServiceFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{
		Code:       "Night_Shift_Lead",
		Name:       "Night Shift Lead",
		HospitalID: &hospital.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "night_shift_lead", role.Code)
	require.False(t, role.IsSystem)

	_, err = svc.CreateRole(ctx, CreateRoleInput{Code: "night_shift_lead", Name: "Duplicate"})
	require.Error(t, err)

	updated, err := svc.UpdateRole(ctx, role.ID, UpdateRoleInput{Name: "Night Lead"})
	require.NoError(t, err)
	require.Equal(t, "Night Lead", updated.Name)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	require.ErrorIs(t, svc.DeleteRole(ctx, role.ID), ErrRoleNotFound)
}

func TestPermissionServiceSystemRoleImmutable(t *testing.T) {
	svc, _, _ := newPermissionServiceFixture(t)
	ctx := context.Background()

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, roles)

	var system *models.Role
	for i := range roles {
		if roles[i].IsSystem {
			system = &roles[i]
			break
		}
	}
	require.NotNil(t, system)

	_, err = svc.UpdateRole(ctx, system.ID, UpdateRoleInput{Name: "Renamed"})
	require.ErrorIs(t, err, ErrSystemRoleImmutable)
	require.ErrorIs(t, svc.DeleteRole(ctx, system.ID), ErrSystemRoleImmutable)
}

func TestPermissionServiceRoleEntries(t *testing.T) {
	svc, user, hospital := newPermissionServiceFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{Code: "contractor", Name: "Contractor"})
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, user.ID, role.ID, &hospital.ID))

	_, err = svc.SetRoleEntry(ctx, SetRoleEntryInput{
		RoleID:       role.ID,
		PermissionID: "work_orders.start_work",
		Allowed:      true,
	})
	require.NoError(t, err)

	allowed, err := svc.Resolver().Resolve(ctx, user.ID, "work_orders.start_work", &hospital.ID)
	require.NoError(t, err)
	require.True(t, allowed)

	// A hospital-scoped entry flips the result inside that hospital.
	_, err = svc.SetRoleEntry(ctx, SetRoleEntryInput{
		RoleID:       role.ID,
		PermissionID: "work_orders.start_work",
		Allowed:      false,
		HospitalID:   &hospital.ID,
	})
	require.NoError(t, err)

	allowed, err = svc.Resolver().Resolve(ctx, user.ID, "work_orders.start_work", &hospital.ID)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, svc.RemoveRoleEntry(ctx, role.ID, "work_orders.start_work", &hospital.ID))

	allowed, err = svc.Resolver().Resolve(ctx, user.ID, "work_orders.start_work", &hospital.ID)
	require.NoError(t, err)
	require.True(t, allowed)

	_, err = svc.SetRoleEntry(ctx, SetRoleEntryInput{RoleID: role.ID, PermissionID: "nope.nope"})
	require.Error(t, err)
}

func TestPermissionServiceUserOverrides(t *testing.T) {
	svc, user, hospital := newPermissionServiceFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{Code: "contractor", Name: "Contractor"})
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, user.ID, role.ID, &hospital.ID))
	_, err = svc.SetRoleEntry(ctx, SetRoleEntryInput{
		RoleID:       role.ID,
		PermissionID: "work_orders.approve",
		Allowed:      true,
	})
	require.NoError(t, err)

	override, err := svc.SetUserOverride(ctx, user.ID, "work_orders.approve", "deny")
	require.NoError(t, err)
	require.Equal(t, models.OverrideDeny, override.Effect)

	allowed, err := svc.Resolver().Resolve(ctx, user.ID, "work_orders.approve", &hospital.ID)
	require.NoError(t, err)
	require.False(t, allowed)

	override, err = svc.SetUserOverride(ctx, user.ID, "work_orders.approve", "grant")
	require.NoError(t, err)
	require.Equal(t, models.OverrideGrant, override.Effect)

	require.NoError(t, svc.RemoveUserOverride(ctx, user.ID, "work_orders.approve"))
	require.ErrorIs(t, svc.RemoveUserOverride(ctx, user.ID, "work_orders.approve"), apperrors.ErrNotFound)

	_, err = svc.SetUserOverride(ctx, user.ID, "work_orders.approve", "maybe")
	require.Error(t, err)
}

func TestPermissionServiceAssignAndRevoke(t *testing.T) {
	svc, user, hospital := newPermissionServiceFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{Code: "contractor", Name: "Contractor"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(ctx, user.ID, role.ID, &hospital.ID))
	// Re-assigning the same scope is a no-op.
	require.NoError(t, svc.AssignRole(ctx, user.ID, role.ID, &hospital.ID))

	codes, err := svc.Resolver().RoleCodesFor(ctx, user.ID, &hospital.ID)
	require.NoError(t, err)
	require.Contains(t, codes, "contractor")

	require.NoError(t, svc.RevokeRole(ctx, user.ID, role.ID, &hospital.ID))
	require.ErrorIs(t, svc.RevokeRole(ctx, user.ID, role.ID, &hospital.ID), apperrors.ErrNotFound)
}

func TestPermissionServiceUserPermissionsMap(t *testing.T) {
	svc, user, hospital := newPermissionServiceFixture(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, CreateRoleInput{Code: "contractor", Name: "Contractor"})
	require.NoError(t, err)
	require.NoError(t, svc.AssignRole(ctx, user.ID, role.ID, &hospital.ID))
	_, err = svc.SetRoleEntry(ctx, SetRoleEntryInput{
		RoleID:       role.ID,
		PermissionID: "work_orders.view",
		Allowed:      true,
	})
	require.NoError(t, err)

	perms, err := svc.UserPermissions(ctx, user.ID, &hospital.ID)
	require.NoError(t, err)
	require.True(t, perms["work_orders.view"])
	require.False(t, perms["hospitals.manage"])

	catalog := svc.Catalog()
	require.NotEmpty(t, catalog)
	require.Len(t, perms, len(catalog))
}
