package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medifixhq/medifix/internal/middleware"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/internal/workflow"
	"github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/response"
)

// WorkOrderHandler exposes the work-order lifecycle over HTTP.
type WorkOrderHandler struct {
	svc *services.WorkOrderService
}

func NewWorkOrderHandler(svc *services.WorkOrderService) (*WorkOrderHandler, error) {
	if svc == nil {
		return nil, errors.ErrInternalServer.WithMessage("work order handler: service is required")
	}
	return &WorkOrderHandler{svc: svc}, nil
}

type createWorkOrderRequest struct {
	HospitalID  string  `json:"hospital_id" validate:"required"`
	AssetID     *string `json:"asset_id"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" validate:"omitempty,priority"`
	AssigneeID  *string `json:"assignee_id"`
}

// POST /api/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createWorkOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.svc.Create(requestContext(c), services.CreateWorkOrderInput{
		HospitalID:  req.HospitalID,
		AssetID:     req.AssetID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ReporterID:  actorID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, record)
}

// GET /api/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	record, err := h.svc.Get(requestContext(c), c.Param("id"), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

// GET /api/work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	records, err := h.svc.List(requestContext(c), services.ListWorkOrdersInput{
		ActorID:    actorID,
		HospitalID: strings.TrimSpace(c.Query("hospital_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		AssigneeID: strings.TrimSpace(c.Query("assignee_id")),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, records)
}

// GET /api/work-orders/:id/actions
func (h *WorkOrderHandler) Actions(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	actions, err := h.svc.Actions(requestContext(c), c.Param("id"), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, actions)
}

type performActionRequest struct {
	Action string `json:"action" validate:"required"`
	Notes  string `json:"notes"`
}

// POST /api/work-orders/:id/actions
func (h *WorkOrderHandler) PerformAction(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req performActionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.svc.PerformAction(requestContext(c), services.PerformActionInput{
		WorkOrderID: c.Param("id"),
		ActorID:     actorID,
		Action:      workflow.Action(strings.TrimSpace(req.Action)),
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

type reassignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// POST /api/work-orders/:id/reassign
func (h *WorkOrderHandler) Reassign(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req reassignRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.svc.Reassign(requestContext(c), c.Param("id"), actorID, req.AssigneeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

type updateWorkOrderRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority" validate:"omitempty,priority"`
}

// PATCH /api/work-orders/:id
func (h *WorkOrderHandler) Update(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateWorkOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.svc.UpdateDetails(requestContext(c), c.Param("id"), actorID, services.UpdateWorkOrderInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// POST /api/work-orders/:id/cancel
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserIDKey)
	if actorID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req cancelRequest
	if !bindAndValidate(c, &req) {
		return
	}

	record, err := h.svc.Cancel(requestContext(c), c.Param("id"), actorID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, record)
}
