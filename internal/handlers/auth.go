package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/medifixhq/medifix/internal/auth"
	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/response"
)

// AuthHandler manages login and the current-user endpoint.
type AuthHandler struct {
	auth        *iauth.Service
	permissions *services.PermissionService
}

func NewAuthHandler(auth *iauth.Service, permissions *services.PermissionService) (*AuthHandler, error) {
	if auth == nil {
		return nil, errors.ErrInternalServer.WithMessage("auth handler: auth service is required")
	}
	if permissions == nil {
		return nil, errors.ErrInternalServer.WithMessage("auth handler: permission service is required")
	}
	return &AuthHandler{auth: auth, permissions: permissions}, nil
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, token, err := h.auth.Login(requestContext(c), req.Identifier, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"user":         userPayload(user),
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.auth.GetUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	perms, err := h.permissions.UserPermissions(requestContext(c), user.ID, middleware.HospitalScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := userPayload(user)
	payload["permissions"] = perms
	response.Success(c, http.StatusOK, payload)
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"is_active":  user.IsActive,
	}
}
