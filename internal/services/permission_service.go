package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/permissions"
	apperrors "github.com/medifixhq/medifix/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrSystemRoleImmutable prevents destructive operations on system roles.
	ErrSystemRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "System roles cannot be modified", http.StatusBadRequest)
)

// PermissionService manages roles, role permission entries, user overrides
// and role assignments. Effective permission resolution lives in the
// permissions package; this service owns the writes that feed it.
type PermissionService struct {
	db           *gorm.DB
	resolver     *permissions.Resolver
	auditService *AuditService
}

// NewPermissionService constructs a PermissionService using the provided database handle.
func NewPermissionService(db *gorm.DB, audit *AuditService) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	resolver, err := permissions.NewResolver(db)
	if err != nil {
		return nil, err
	}
	return &PermissionService{
		db:           db,
		resolver:     resolver,
		auditService: audit,
	}, nil
}

// Resolver exposes the underlying permission resolver for request gating.
func (s *PermissionService) Resolver() *permissions.Resolver {
	return s.resolver
}

// CreateRoleInput describes the payload accepted by CreateRole. Created roles
// are always custom roles; system roles are seeded at startup.
type CreateRoleInput struct {
	Code        string
	Name        string
	Description string
	HospitalID  *string
}

// UpdateRoleInput describes mutable fields on a role.
type UpdateRoleInput struct {
	Name        string
	Description string
}

// CreateRole registers a new custom role.
func (s *PermissionService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	code := strings.ToLower(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, apperrors.NewBadRequest("role code is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("role name is required")
	}

	role := &models.Role{
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		HospitalID:  input.HospitalID,
	}

	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("role code already exists")
		}
		return nil, fmt.Errorf("permission service: create role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		HospitalID: role.HospitalID,
		Action:     "role.create",
		Resource:   role.ID,
		Result:     "success",
		Metadata: map[string]any{
			"code": role.Code,
			"name": role.Name,
		},
	})

	return role, nil
}

// UpdateRole modifies existing role metadata. System role codes and names are
// fixed because the workflow tables key off them.
func (s *PermissionService) UpdateRole(ctx context.Context, roleID string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("permission service: load role: %w", err)
	}

	if role.IsSystem {
		if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
			return nil, ErrSystemRoleImmutable
		}
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != role.Name {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(input.Description); desc != role.Description {
		updates["description"] = desc
	}

	if len(updates) == 0 {
		return &role, nil
	}

	if err := s.db.WithContext(ctx).Model(&role).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("permission service: update role: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		return nil, fmt.Errorf("permission service: reload role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		HospitalID: role.HospitalID,
		Action:     "role.update",
		Resource:   role.ID,
		Result:     "success",
		Metadata:   updates,
	})

	return &role, nil
}

// DeleteRole removes a custom role together with its permission entries and
// user assignments.
func (s *PermissionService) DeleteRole(ctx context.Context, roleID string) error {
	ctx = ensureContext(ctx)

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("permission service: load role: %w", err)
	}

	if role.IsSystem {
		return ErrSystemRoleImmutable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionEntry{}).Error; err != nil {
			return fmt.Errorf("permission service: delete role entries: %w", err)
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.UserRoleAssignment{}).Error; err != nil {
			return fmt.Errorf("permission service: delete role assignments: %w", err)
		}
		if err := tx.Delete(&role).Error; err != nil {
			return fmt.Errorf("permission service: delete role: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		HospitalID: role.HospitalID,
		Action:     "role.delete",
		Resource:   role.ID,
		Result:     "success",
		Metadata: map[string]any{
			"code": role.Code,
		},
	})

	return nil
}

// ListRoles returns all roles with their permission entries.
func (s *PermissionService) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	if err := s.db.WithContext(ctx).
		Preload("PermissionEntries").
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("permission service: list roles: %w", err)
	}
	return roles, nil
}

// SetRoleEntryInput describes one permission entry write. A nil hospital
// targets the role's global default row; a hospital id targets that tenant's
// override row.
type SetRoleEntryInput struct {
	RoleID       string
	PermissionID string
	Allowed      bool
	HospitalID   *string
}

// SetRoleEntry creates or updates a role permission entry.
func (s *PermissionService) SetRoleEntry(ctx context.Context, input SetRoleEntryInput) (*models.RolePermissionEntry, error) {
	ctx = ensureContext(ctx)

	permissionID := strings.TrimSpace(input.PermissionID)
	if _, ok := permissions.Get(permissionID); !ok {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown permission %q", permissionID))
	}

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", strings.TrimSpace(input.RoleID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("permission service: load role: %w", err)
	}

	var entry models.RolePermissionEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("role_id = ? AND permission_id = ?", role.ID, permissionID)
		query = scopeQuery(query, input.HospitalID)

		err := query.First(&entry).Error
		switch {
		case err == nil:
			return tx.Model(&entry).Update("allowed", input.Allowed).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.RolePermissionEntry{
				RoleID:       role.ID,
				PermissionID: permissionID,
				HospitalID:   input.HospitalID,
				Allowed:      input.Allowed,
			}
			return tx.Create(&entry).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("permission service: set role entry: %w", err)
	}
	entry.Allowed = input.Allowed

	recordAudit(s.auditService, ctx, AuditEntry{
		HospitalID: input.HospitalID,
		Action:     "role.set_entry",
		Resource:   role.ID,
		Result:     "success",
		Metadata: map[string]any{
			"permission": permissionID,
			"allowed":    input.Allowed,
		},
	})

	return &entry, nil
}

// RemoveRoleEntry deletes a role permission entry, restoring the fallback
// behavior for that scope.
func (s *PermissionService) RemoveRoleEntry(ctx context.Context, roleID, permissionID string, hospitalID *string) error {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", strings.TrimSpace(roleID), strings.TrimSpace(permissionID))
	query = scopeQuery(query, hospitalID)

	result := query.Delete(&models.RolePermissionEntry{})
	if result.Error != nil {
		return fmt.Errorf("permission service: remove role entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		HospitalID: hospitalID,
		Action:     "role.remove_entry",
		Resource:   roleID,
		Result:     "success",
		Metadata: map[string]any{
			"permission": permissionID,
		},
	})
	return nil
}

// SetUserOverride pins one permission key for one user. The override wins
// over any role-derived result for that exact key.
func (s *PermissionService) SetUserOverride(ctx context.Context, userID, permissionID, effect string) (*models.UserPermissionOverride, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	permissionID = strings.TrimSpace(permissionID)
	if _, ok := permissions.Get(permissionID); !ok {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown permission %q", permissionID))
	}
	effect = strings.ToLower(strings.TrimSpace(effect))
	if effect != models.OverrideGrant && effect != models.OverrideDeny {
		return nil, apperrors.NewBadRequest("effect must be grant or deny")
	}

	var override models.UserPermissionOverride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND permission_id = ?", userID, permissionID).
			First(&override).Error
		switch {
		case err == nil:
			return tx.Model(&override).Update("effect", effect).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			override = models.UserPermissionOverride{
				UserID:       userID,
				PermissionID: permissionID,
				Effect:       effect,
			}
			return tx.Create(&override).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("permission service: set user override: %w", err)
	}
	override.Effect = effect

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "permission.set_override",
		Resource: permissionID,
		Result:   "success",
		Metadata: map[string]any{
			"effect": effect,
		},
	})

	return &override, nil
}

// RemoveUserOverride lifts a user override, returning control to role-derived
// resolution.
func (s *PermissionService) RemoveUserOverride(ctx context.Context, userID, permissionID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", strings.TrimSpace(userID), strings.TrimSpace(permissionID)).
		Delete(&models.UserPermissionOverride{})
	if result.Error != nil {
		return fmt.Errorf("permission service: remove user override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "permission.remove_override",
		Resource: permissionID,
		Result:   "success",
	})
	return nil
}

// AssignRole binds a user to a role, globally when hospitalID is nil or
// inside one hospital otherwise. Assigning an already held role is a no-op.
func (s *PermissionService) AssignRole(ctx context.Context, userID, roleID string, hospitalID *string) error {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("user id is required")
	}

	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", strings.TrimSpace(roleID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("permission service: load role: %w", err)
	}

	query := s.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, role.ID)
	query = scopeQuery(query, hospitalID)

	var existing models.UserRoleAssignment
	err := query.First(&existing).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return fmt.Errorf("permission service: load role assignment: %w", err)
	}

	assignment := models.UserRoleAssignment{
		UserID:     userID,
		RoleID:     role.ID,
		HospitalID: hospitalID,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil
		}
		return fmt.Errorf("permission service: assign role: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &userID,
		HospitalID: hospitalID,
		Action:     "role.assign",
		Resource:   role.ID,
		Result:     "success",
		Metadata: map[string]any{
			"code": role.Code,
		},
	})
	return nil
}

// RevokeRole removes a role assignment for the given scope.
func (s *PermissionService) RevokeRole(ctx context.Context, userID, roleID string, hospitalID *string) error {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", strings.TrimSpace(userID), strings.TrimSpace(roleID))
	query = scopeQuery(query, hospitalID)

	result := query.Delete(&models.UserRoleAssignment{})
	if result.Error != nil {
		return fmt.Errorf("permission service: revoke role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &userID,
		HospitalID: hospitalID,
		Action:     "role.revoke",
		Resource:   roleID,
		Result:     "success",
	})
	return nil
}

// UserPermissions resolves every registered permission key for the user in
// the supplied scope. The result powers client-side gating; server-side
// checks still resolve per request.
func (s *PermissionService) UserPermissions(ctx context.Context, userID string, hospitalID *string) (map[string]bool, error) {
	ctx = ensureContext(ctx)

	catalog := permissions.GetAll()
	out := make(map[string]bool, len(catalog))
	for id := range catalog {
		allowed, err := s.resolver.Resolve(ctx, userID, id, hospitalID)
		if err != nil {
			return nil, err
		}
		out[id] = allowed
	}
	return out, nil
}

// Catalog lists every registered permission ordered by key.
func (s *PermissionService) Catalog() []*permissions.Permission {
	catalog := permissions.GetAll()
	out := make([]*permissions.Permission, 0, len(catalog))
	for _, perm := range catalog {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// scopeQuery narrows a query to one tenant scope, treating nil as the global
// (NULL) scope rather than as a wildcard.
func scopeQuery(query *gorm.DB, hospitalID *string) *gorm.DB {
	if hospitalID != nil {
		return query.Where("hospital_id = ?", *hospitalID)
	}
	return query.Where("hospital_id IS NULL")
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
