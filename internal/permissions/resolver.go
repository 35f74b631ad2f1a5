package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/pkg/logger"
)

// Resolver computes effective permissions from the three database-backed
// sources: global role defaults, per-hospital role overrides, and per-user
// grant/deny overrides.
type Resolver struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewResolver constructs a permission resolver backed by the provided database.
func NewResolver(db *gorm.DB) (*Resolver, error) {
	if db == nil {
		return nil, errors.New("permission resolver: db is required")
	}
	return &Resolver{db: db, log: logger.WithModule("permissions")}, nil
}

// Resolve computes the effective boolean for one user and one permission key,
// optionally scoped to a hospital. Precedence, highest last:
//
//  1. per-role entry scoped to the hospital, falling back to the role's
//     global default entry;
//  2. boolean OR across all held roles (the least-restrictive role wins);
//  3. the user-level override, which wins unconditionally for its exact key.
//
// Absence of any matching entry resolves to false. This is the definitive
// variant used by administrative paths; UI gating should call Allowed.
func (r *Resolver) Resolve(ctx context.Context, userID, permissionKey string, hospitalID *string) (bool, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("permission resolver: user id is required")
	}
	permissionKey = strings.TrimSpace(permissionKey)
	if permissionKey == "" {
		return false, errors.New("permission resolver: permission key is required")
	}
	if _, ok := Get(permissionKey); !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownPermission, permissionKey)
	}

	roleIDs, err := r.heldRoleIDs(ctx, userID, hospitalID)
	if err != nil {
		return false, err
	}

	allowed := false
	if len(roleIDs) > 0 {
		allowed, err = r.roleDerived(ctx, roleIDs, permissionKey, hospitalID)
		if err != nil {
			return false, err
		}
	}

	var override models.UserPermissionOverride
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND permission_id = ?", userID, permissionKey).
		First(&override).Error
	switch {
	case err == nil:
		return override.Effect == models.OverrideGrant, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return allowed, nil
	default:
		return false, fmt.Errorf("permission resolver: load user override: %w", err)
	}
}

// Allowed is the fail-closed variant for UI gating: any store failure
// degrades to false and is logged instead of propagating.
func (r *Resolver) Allowed(ctx context.Context, userID, permissionKey string, hospitalID *string) bool {
	allowed, err := r.Resolve(ctx, userID, permissionKey, hospitalID)
	if err != nil {
		r.log.Warn("permission resolution failed, denying",
			zap.String("user_id", userID),
			zap.String("permission", permissionKey),
			zap.Error(err))
		return false
	}
	return allowed
}

// HasAny reports whether any key resolves to true. Every key is evaluated;
// resolution is side-effect-free so there is nothing to save by skipping.
func (r *Resolver) HasAny(ctx context.Context, userID string, permissionKeys []string, hospitalID *string) (bool, error) {
	result := false
	for _, key := range permissionKeys {
		allowed, err := r.Resolve(ctx, userID, key, hospitalID)
		if err != nil {
			return false, err
		}
		result = result || allowed
	}
	return result, nil
}

// HasAll reports whether every key resolves to true.
func (r *Resolver) HasAll(ctx context.Context, userID string, permissionKeys []string, hospitalID *string) (bool, error) {
	result := len(permissionKeys) > 0
	for _, key := range permissionKeys {
		allowed, err := r.Resolve(ctx, userID, key, hospitalID)
		if err != nil {
			return false, err
		}
		result = result && allowed
	}
	return result, nil
}

// RoleCodesFor returns the role codes held by the user. A hospital scope
// keeps unscoped (global) assignments alongside assignments for that
// hospital; without a scope only unscoped assignments count.
func (r *Resolver) RoleCodesFor(ctx context.Context, userID string, hospitalID *string) ([]string, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission resolver: user id is required")
	}

	var assignments []models.UserRoleAssignment
	query := r.db.WithContext(ctx).Preload("Role").Where("user_id = ?", userID)
	if hospitalID != nil {
		query = query.Where("hospital_id = ? OR hospital_id IS NULL", *hospitalID)
	} else {
		query = query.Where("hospital_id IS NULL")
	}
	if err := query.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("permission resolver: load role assignments: %w", err)
	}

	seen := make(map[string]struct{}, len(assignments))
	codes := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if a.Role.Code == "" {
			continue
		}
		if _, ok := seen[a.Role.Code]; ok {
			continue
		}
		seen[a.Role.Code] = struct{}{}
		codes = append(codes, a.Role.Code)
	}
	return codes, nil
}

func (r *Resolver) heldRoleIDs(ctx context.Context, userID string, hospitalID *string) ([]string, error) {
	var assignments []models.UserRoleAssignment
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if hospitalID != nil {
		query = query.Where("hospital_id = ? OR hospital_id IS NULL", *hospitalID)
	} else {
		query = query.Where("hospital_id IS NULL")
	}
	if err := query.Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("permission resolver: load role assignments: %w", err)
	}

	seen := make(map[string]struct{}, len(assignments))
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := seen[a.RoleID]; ok {
			continue
		}
		seen[a.RoleID] = struct{}{}
		ids = append(ids, a.RoleID)
	}
	return ids, nil
}

// roleDerived merges entries across roles: each role uses its hospital-scoped
// entry when present, otherwise its global default, and the results are
// OR-combined.
func (r *Resolver) roleDerived(ctx context.Context, roleIDs []string, permissionKey string, hospitalID *string) (bool, error) {
	var entries []models.RolePermissionEntry
	query := r.db.WithContext(ctx).
		Where("role_id IN ? AND permission_id = ?", roleIDs, permissionKey)
	if hospitalID != nil {
		query = query.Where("hospital_id = ? OR hospital_id IS NULL", *hospitalID)
	} else {
		query = query.Where("hospital_id IS NULL")
	}
	if err := query.Find(&entries).Error; err != nil {
		return false, fmt.Errorf("permission resolver: load role entries: %w", err)
	}

	type pair struct {
		global *models.RolePermissionEntry
		scoped *models.RolePermissionEntry
	}
	byRole := make(map[string]*pair, len(roleIDs))
	for i := range entries {
		e := &entries[i]
		p := byRole[e.RoleID]
		if p == nil {
			p = &pair{}
			byRole[e.RoleID] = p
		}
		if e.HospitalID == nil {
			p.global = e
		} else {
			p.scoped = e
		}
	}

	for _, p := range byRole {
		effective := p.global
		if p.scoped != nil {
			effective = p.scoped
		}
		if effective != nil && effective.Allowed {
			return true, nil
		}
	}
	return false, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
