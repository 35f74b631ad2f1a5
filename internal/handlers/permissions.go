package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/response"
)

// PermissionHandler exposes the permission catalog and role administration.
type PermissionHandler struct {
	svc *services.PermissionService
}

func NewPermissionHandler(svc *services.PermissionService) (*PermissionHandler, error) {
	if svc == nil {
		return nil, errors.ErrInternalServer.WithMessage("permission handler: service is required")
	}
	return &PermissionHandler{svc: svc}, nil
}

// GET /api/permissions/catalog
func (h *PermissionHandler) Catalog(c *gin.Context) {
	response.Success(c, http.StatusOK, h.svc.Catalog())
}

// GET /api/permissions/my
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	perms, err := h.svc.UserPermissions(requestContext(c), userID, middleware.HospitalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permissions/users/:userID
func (h *PermissionHandler) UserPermissions(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	perms, err := h.svc.UserPermissions(requestContext(c), userID, middleware.HospitalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}

// GET /api/permissions/roles
func (h *PermissionHandler) ListRoles(c *gin.Context) {
	roles, err := h.svc.ListRoles(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

type createRoleRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	HospitalID  *string `json:"hospital_id"`
}

// POST /api/permissions/roles
func (h *PermissionHandler) CreateRole(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := h.svc.CreateRole(requestContext(c), services.CreateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		HospitalID:  req.HospitalID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PATCH /api/permissions/roles/:id
func (h *PermissionHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.NewBadRequest("invalid JSON payload"))
		return
	}

	role, err := h.svc.UpdateRole(requestContext(c), c.Param("id"), services.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// DELETE /api/permissions/roles/:id
func (h *PermissionHandler) DeleteRole(c *gin.Context) {
	if err := h.svc.DeleteRole(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type roleEntryRequest struct {
	PermissionID string  `json:"permission_id" validate:"required"`
	Allowed      *bool   `json:"allowed" validate:"required"`
	HospitalID   *string `json:"hospital_id"`
}

// PUT /api/permissions/roles/:id/entries
func (h *PermissionHandler) SetRoleEntry(c *gin.Context) {
	var req roleEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.svc.SetRoleEntry(requestContext(c), services.SetRoleEntryInput{
		RoleID:       c.Param("id"),
		PermissionID: req.PermissionID,
		Allowed:      *req.Allowed,
		HospitalID:   req.HospitalID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entry)
}

// DELETE /api/permissions/roles/:id/entries/:permissionID
func (h *PermissionHandler) RemoveRoleEntry(c *gin.Context) {
	err := h.svc.RemoveRoleEntry(requestContext(c), c.Param("id"), c.Param("permissionID"), middleware.HospitalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

type userOverrideRequest struct {
	PermissionID string `json:"permission_id" validate:"required"`
	Effect       string `json:"effect" validate:"required,oneof=grant deny"`
}

// PUT /api/permissions/users/:userID/overrides
func (h *PermissionHandler) SetUserOverride(c *gin.Context) {
	var req userOverrideRequest
	if !bindAndValidate(c, &req) {
		return
	}

	override, err := h.svc.SetUserOverride(requestContext(c), c.Param("userID"), req.PermissionID, req.Effect)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, override)
}

// DELETE /api/permissions/users/:userID/overrides/:permissionID
func (h *PermissionHandler) RemoveUserOverride(c *gin.Context) {
	err := h.svc.RemoveUserOverride(requestContext(c), c.Param("userID"), c.Param("permissionID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

type roleAssignmentRequest struct {
	RoleID     string  `json:"role_id" validate:"required"`
	HospitalID *string `json:"hospital_id"`
}

// POST /api/permissions/users/:userID/roles
func (h *PermissionHandler) AssignRole(c *gin.Context) {
	var req roleAssignmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.svc.AssignRole(requestContext(c), c.Param("userID"), req.RoleID, req.HospitalID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assigned": true})
}

// DELETE /api/permissions/users/:userID/roles/:roleID
func (h *PermissionHandler) RevokeRole(c *gin.Context) {
	err := h.svc.RevokeRole(requestContext(c), c.Param("userID"), c.Param("roleID"), middleware.HospitalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}
