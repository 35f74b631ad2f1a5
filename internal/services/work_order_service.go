package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/permissions"
	"github.com/medifixhq/medifix/internal/rbac"
	"github.com/medifixhq/medifix/internal/workflow"
	apperrors "github.com/medifixhq/medifix/pkg/errors"
	"github.com/medifixhq/medifix/pkg/logger"
	"github.com/medifixhq/medifix/pkg/metrics"
)

// DefaultActionCooldown is the minimum gap between workflow actions by the
// same actor on the same work order. It absorbs accidental double submits;
// legitimate conflicts are caught by the status-guarded update regardless.
const DefaultActionCooldown = 2 * time.Second

// WorkOrderService orchestrates work order writes: creation, the approval
// workflow transitions, reassignment and detail updates. Every transition is
// validated against the workflow tables locally and re-checked by a
// status-guarded update inside the transaction.
type WorkOrderService struct {
	db            *gorm.DB
	resolver      *permissions.Resolver
	auditService  *AuditService
	notifications *NotificationService
	log           *zap.Logger

	now      func() time.Time
	cooldown time.Duration

	mu          sync.Mutex
	lastActions map[string]time.Time
}

// WorkOrderServiceOption customises a WorkOrderService.
type WorkOrderServiceOption func(*WorkOrderService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) WorkOrderServiceOption {
	return func(s *WorkOrderService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithActionCooldown overrides the per-actor action cooldown. Zero disables
// the guard.
func WithActionCooldown(d time.Duration) WorkOrderServiceOption {
	return func(s *WorkOrderService) {
		s.cooldown = d
	}
}

// NewWorkOrderService constructs a WorkOrderService.
func NewWorkOrderService(db *gorm.DB, resolver *permissions.Resolver, audit *AuditService, notifier *NotificationService, opts ...WorkOrderServiceOption) (*WorkOrderService, error) {
	if db == nil {
		return nil, errors.New("work order service: db is required")
	}
	if resolver == nil {
		return nil, errors.New("work order service: resolver is required")
	}

	svc := &WorkOrderService{
		db:            db,
		resolver:      resolver,
		auditService:  audit,
		notifications: notifier,
		log:           logger.WithModule("work_orders"),
		now:           time.Now,
		cooldown:      DefaultActionCooldown,
		lastActions:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateWorkOrderInput describes a new maintenance request.
type CreateWorkOrderInput struct {
	HospitalID  string
	AssetID     *string
	Title       string
	Description string
	Priority    string
	ReporterID  string
	AssigneeID  *string
}

// Create registers a new work order. Records with an assignee start in
// assigned, otherwise pending.
func (s *WorkOrderService) Create(ctx context.Context, input CreateWorkOrderInput) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	hospitalID := strings.TrimSpace(input.HospitalID)
	if hospitalID == "" {
		return nil, apperrors.NewBadRequest("hospital id is required")
	}
	reporterID := strings.TrimSpace(input.ReporterID)
	if reporterID == "" {
		return nil, apperrors.NewBadRequest("reporter id is required")
	}

	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	switch priority {
	case "":
		priority = "medium"
	case "low", "medium", "high", "critical":
	default:
		return nil, apperrors.NewBadRequest("priority must be one of low, medium, high, critical")
	}

	status := workflow.StatusPending
	if input.AssigneeID != nil && strings.TrimSpace(*input.AssigneeID) != "" {
		status = workflow.StatusAssigned
	}

	record := &models.WorkOrder{
		HospitalID:  hospitalID,
		AssetID:     input.AssetID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
		Status:      string(status),
		ReporterID:  reporterID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("work order service: create: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &record.ReporterID,
		HospitalID: &record.HospitalID,
		Action:     "work_order.create",
		Resource:   record.ID,
		Result:     "success",
		Metadata: map[string]any{
			"status":   record.Status,
			"priority": record.Priority,
		},
	})

	if record.AssigneeID != nil {
		s.notify(*record.AssigneeID, "work_order.assigned", "Work order assigned",
			fmt.Sprintf("%s was assigned to you", record.Title), record)
	}

	return record, nil
}

// Get loads a work order provided the actor's view scope covers it.
func (s *WorkOrderService) Get(ctx context.Context, workOrderID, actorID string) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	record, err := s.load(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	scope, _, err := s.actorScope(ctx, actorID, record.HospitalID)
	if err != nil {
		return nil, err
	}
	if !s.scopeCovers(scope, record, actorID) {
		return nil, apperrors.ErrForbidden
	}
	return record, nil
}

// ListWorkOrdersInput filters the work order listing.
type ListWorkOrdersInput struct {
	ActorID    string
	HospitalID string
	Status     string
	AssigneeID string
	Limit      int
	Offset     int
}

// List returns work orders in a hospital narrowed to the actor's view scope:
// managers see all, team scopes see the hospital's records, own scopes see
// only records they reported or hold.
func (s *WorkOrderService) List(ctx context.Context, input ListWorkOrdersInput) ([]models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	hospitalID := strings.TrimSpace(input.HospitalID)
	if hospitalID == "" {
		return nil, apperrors.NewBadRequest("hospital id is required")
	}

	scope, _, err := s.actorScope(ctx, input.ActorID, hospitalID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("created_at DESC").
		Limit(limit).
		Offset(max(0, input.Offset))

	if status := strings.TrimSpace(input.Status); status != "" {
		if !workflow.Status(status).Valid() {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown status %q", status))
		}
		query = query.Where("status = ?", status)
	}
	if assignee := strings.TrimSpace(input.AssigneeID); assignee != "" {
		query = query.Where("assignee_id = ?", assignee)
	}

	// ScopeAll and ScopeTeam both cover the whole hospital here; team scopes
	// are still fenced to a single hospital by the mandatory filter above.
	if scope == rbac.ScopeOwn {
		query = query.Where("reporter_id = ? OR assignee_id = ?", input.ActorID, input.ActorID)
	}

	var records []models.WorkOrder
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("work order service: list: %w", err)
	}
	return records, nil
}

// Actions reports the workflow affordances the actor has on a record right
// now. It is a read-only combination of identity, role capabilities and the
// transition table.
func (s *WorkOrderService) Actions(ctx context.Context, workOrderID, actorID string) (workflow.ActionSet, error) {
	ctx = ensureContext(ctx)

	record, err := s.load(ctx, workOrderID)
	if err != nil {
		return workflow.ActionSet{}, err
	}

	roles, err := s.resolver.RoleCodesFor(ctx, actorID, &record.HospitalID)
	if err != nil {
		return workflow.ActionSet{}, err
	}

	isReporter := record.ReporterID == actorID
	return workflow.AvailableActions(workflow.Status(record.Status), roles, record, isReporter), nil
}

// PerformActionInput describes one workflow action attempt.
type PerformActionInput struct {
	WorkOrderID string
	ActorID     string
	Action      workflow.Action
	Notes       string
}

// PerformAction executes a workflow transition. Validation failures come back
// as structured AppErrors; only store failures surface as wrapped internal
// errors. The status change and its milestone fields are written in a single
// guarded update so concurrent actors cannot double-apply a transition.
func (s *WorkOrderService) PerformAction(ctx context.Context, input PerformActionInput) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)
	action := string(input.Action)

	actorID := strings.TrimSpace(input.ActorID)
	if actorID == "" {
		metrics.WorkflowTransitions.WithLabelValues(action, "invalid").Inc()
		return nil, apperrors.NewBadRequest("actor id is required")
	}

	record, err := s.load(ctx, input.WorkOrderID)
	if err != nil {
		metrics.WorkflowTransitions.WithLabelValues(action, "error").Inc()
		return nil, err
	}

	if !s.cooldownPassed(record.ID, actorID) {
		metrics.WorkflowTransitions.WithLabelValues(action, "denied").Inc()
		return nil, apperrors.ErrActionCooldown
	}

	from := workflow.Status(record.Status)
	transition, ok := workflow.FindByAction(from, input.Action)
	if !ok {
		metrics.WorkflowTransitions.WithLabelValues(action, "invalid").Inc()
		return nil, apperrors.ErrInvalidTransition.WithMessage(
			fmt.Sprintf("action %s is not available from status %s", input.Action, from))
	}

	roles, err := s.resolver.RoleCodesFor(ctx, actorID, &record.HospitalID)
	if err != nil {
		metrics.WorkflowTransitions.WithLabelValues(action, "error").Inc()
		return nil, err
	}

	result := workflow.ValidateTransition(from, transition.To, roles, record, record.ReporterID == actorID)
	if !result.Valid {
		switch {
		case errors.Is(result.Err, workflow.ErrRoleNotPermitted):
			metrics.WorkflowTransitions.WithLabelValues(action, "denied").Inc()
			return nil, apperrors.ErrForbidden
		case errors.Is(result.Err, workflow.ErrInvalidTransition):
			metrics.WorkflowTransitions.WithLabelValues(action, "invalid").Inc()
			return nil, apperrors.ErrInvalidTransition
		default:
			metrics.WorkflowTransitions.WithLabelValues(action, "invalid").Inc()
			return nil, apperrors.ErrPreconditionFailed.WithMessage(result.Err.Error())
		}
	}

	notes := strings.TrimSpace(input.Notes)
	if len(transition.RequiredFields) > 0 && notes == "" {
		metrics.WorkflowTransitions.WithLabelValues(action, "invalid").Inc()
		return nil, apperrors.ErrMissingField.WithMessage(
			fmt.Sprintf("%s is required for this action", transition.RequiredFields[0]))
	}

	now := s.now().UTC()
	updates := s.transitionUpdates(transition, record, actorID, notes, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WorkOrder{}).
			Where("id = ? AND status = ?", record.ID, string(from)).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("work order service: apply transition: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrPreconditionFailed.WithMessage(
				"work order changed while the action was being processed")
		}
		return nil
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			metrics.WorkflowTransitions.WithLabelValues(action, "stale").Inc()
		} else {
			metrics.WorkflowTransitions.WithLabelValues(action, "error").Inc()
		}
		return nil, err
	}

	s.markAction(record.ID, actorID, now)
	metrics.WorkflowTransitions.WithLabelValues(action, "success").Inc()

	updated, err := s.load(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &actorID,
		HospitalID: &updated.HospitalID,
		Action:     "work_order." + action,
		Resource:   updated.ID,
		Result:     "success",
		Metadata: map[string]any{
			"from": string(from),
			"to":   string(transition.To),
		},
	})

	s.fanOutTransition(updated, actorID, input.Action)

	return updated, nil
}

// Reassign hands a work order to another technician. Manager-class roles
// only; records rejected by a technician return to the active flow with their
// rejection and progress milestones cleared.
func (s *WorkOrderService) Reassign(ctx context.Context, workOrderID, actorID, assigneeID string) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID == "" {
		return nil, apperrors.NewBadRequest("assignee id is required")
	}

	record, err := s.load(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	_, roles, err := s.actorScope(ctx, actorID, record.HospitalID)
	if err != nil {
		return nil, err
	}
	if !rbac.IsManagerClass(roles) {
		return nil, apperrors.ErrForbidden
	}

	from := workflow.Status(record.Status)
	set := workflow.AvailableActions(from, roles, record, record.ReporterID == actorID)
	if !set.CanReassign {
		return nil, apperrors.ErrPreconditionFailed.WithMessage(
			fmt.Sprintf("work orders in status %s cannot be reassigned", from))
	}

	updates := map[string]any{
		"assignee_id": assigneeID,
		"status":      string(workflow.StatusAssigned),
	}
	switch from {
	case workflow.StatusRejectedByTechnician, workflow.StatusInProgress:
		// The new assignee starts from a clean slate.
		updates["work_started_at"] = nil
		updates["work_started_by"] = nil
		updates["rejected_at"] = nil
		updates["rejected_by"] = nil
		updates["rejection_reason"] = ""
	case workflow.StatusPendingSupervisorApproval:
		// Pulling the record back out of the approval queue discards the
		// previous assignee's completion as well.
		updates["work_started_at"] = nil
		updates["work_started_by"] = nil
		updates["technician_completed_at"] = nil
		updates["technician_completed_by"] = nil
		updates["technician_notes"] = ""
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WorkOrder{}).
			Where("id = ? AND status = ?", record.ID, string(from)).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("work order service: reassign: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrPreconditionFailed.WithMessage(
				"work order changed while the action was being processed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &actorID,
		HospitalID: &updated.HospitalID,
		Action:     "work_order.reassign",
		Resource:   updated.ID,
		Result:     "success",
		Metadata: map[string]any{
			"assignee_id": assigneeID,
			"from":        string(from),
		},
	})

	s.notify(assigneeID, "work_order.assigned", "Work order assigned",
		fmt.Sprintf("%s was assigned to you", updated.Title), updated)

	return updated, nil
}

// UpdateWorkOrderInput describes mutable detail fields.
type UpdateWorkOrderInput struct {
	Title       string
	Description *string
	Priority    string
}

// UpdateDetails edits title, description and priority. Manager-class roles
// only; terminal records are frozen.
func (s *WorkOrderService) UpdateDetails(ctx context.Context, workOrderID, actorID string, input UpdateWorkOrderInput) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	record, err := s.load(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	_, roles, err := s.actorScope(ctx, actorID, record.HospitalID)
	if err != nil {
		return nil, err
	}
	if !rbac.IsManagerClass(roles) {
		return nil, apperrors.ErrForbidden
	}
	if workflow.Status(record.Status).Terminal() {
		return nil, apperrors.ErrPreconditionFailed.WithMessage("closed work orders cannot be edited")
	}

	updates := map[string]any{}
	if title := strings.TrimSpace(input.Title); title != "" && title != record.Title {
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if priority := strings.ToLower(strings.TrimSpace(input.Priority)); priority != "" {
		switch priority {
		case "low", "medium", "high", "critical":
			updates["priority"] = priority
		default:
			return nil, apperrors.NewBadRequest("priority must be one of low, medium, high, critical")
		}
	}

	if len(updates) == 0 {
		return record, nil
	}

	if err := s.db.WithContext(ctx).Model(record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("work order service: update details: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &actorID,
		HospitalID: &record.HospitalID,
		Action:     "work_order.update",
		Resource:   record.ID,
		Result:     "success",
		Metadata:   updates,
	})

	return s.load(ctx, record.ID)
}

// Cancel retires a work order outside the approval flow. Manager-class roles
// only; already terminal records stay untouched.
func (s *WorkOrderService) Cancel(ctx context.Context, workOrderID, actorID, reason string) (*models.WorkOrder, error) {
	ctx = ensureContext(ctx)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.ErrMissingField.WithMessage("a cancellation reason is required")
	}

	record, err := s.load(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	_, roles, err := s.actorScope(ctx, actorID, record.HospitalID)
	if err != nil {
		return nil, err
	}
	if !rbac.IsManagerClass(roles) {
		return nil, apperrors.ErrForbidden
	}

	from := workflow.Status(record.Status)
	if from.Terminal() {
		return nil, apperrors.ErrPreconditionFailed.WithMessage("work order is already closed")
	}

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WorkOrder{}).
			Where("id = ? AND status = ?", record.ID, string(from)).
			Updates(map[string]any{
				"status":           string(workflow.StatusCancelled),
				"rejected_at":      now,
				"rejected_by":      actorID,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return fmt.Errorf("work order service: cancel: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrPreconditionFailed.WithMessage(
				"work order changed while the action was being processed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:     &actorID,
		HospitalID: &updated.HospitalID,
		Action:     "work_order.cancel",
		Resource:   updated.ID,
		Result:     "success",
		Metadata:   map[string]any{"reason": reason},
	})

	s.notify(updated.ReporterID, "work_order.cancelled", "Work order cancelled",
		fmt.Sprintf("%s was cancelled: %s", updated.Title, reason), updated)

	return updated, nil
}

// transitionUpdates builds the single column set written by a transition:
// the new status, the milestone triple the action completes, and for reject
// edges the cleared forward-looking milestones.
func (s *WorkOrderService) transitionUpdates(t *workflow.Transition, record *models.WorkOrder, actorID, notes string, now time.Time) map[string]any {
	updates := map[string]any{
		"status": string(t.To),
	}

	switch t.Action {
	case workflow.ActionStartWork:
		updates["work_started_at"] = now
		updates["work_started_by"] = actorID
		if record.AssigneeID == nil {
			updates["assignee_id"] = actorID
		}
	case workflow.ActionCompleteWork:
		updates["technician_completed_at"] = now
		updates["technician_completed_by"] = actorID
		updates["technician_notes"] = notes
	case workflow.ActionSupervisorApprove:
		updates["supervisor_approved_at"] = now
		updates["supervisor_approved_by"] = actorID
		updates["supervisor_notes"] = notes
	case workflow.ActionEngineerApprove:
		updates["engineer_approved_at"] = now
		updates["engineer_approved_by"] = actorID
		updates["engineer_notes"] = notes
	case workflow.ActionReporterClose:
		updates["customer_reviewed_at"] = now
		updates["customer_reviewed_by"] = actorID
		if notes != "" {
			updates["customer_notes"] = notes
		}
	case workflow.ActionTechnicianReject:
		updates["rejected_at"] = now
		updates["rejected_by"] = actorID
		updates["rejection_reason"] = notes
	case workflow.ActionSupervisorReject:
		updates["rejected_at"] = now
		updates["rejected_by"] = actorID
		updates["rejection_reason"] = notes
		// Rework restarts at completion; everything from that stage on is
		// forward-looking and must be cleared.
		updates["technician_completed_at"] = nil
		updates["technician_completed_by"] = nil
		updates["technician_notes"] = ""
		clearSupervisorOnward(updates)
	case workflow.ActionEngineerReject:
		updates["rejected_at"] = now
		updates["rejected_by"] = actorID
		updates["rejection_reason"] = notes
		clearSupervisorOnward(updates)
	case workflow.ActionReporterReject:
		updates["rejected_at"] = now
		updates["rejected_by"] = actorID
		updates["rejection_reason"] = notes
		updates["engineer_approved_at"] = nil
		updates["engineer_approved_by"] = nil
		updates["engineer_notes"] = ""
		clearCustomerFields(updates)
	}

	return updates
}

func clearSupervisorOnward(updates map[string]any) {
	updates["supervisor_approved_at"] = nil
	updates["supervisor_approved_by"] = nil
	updates["supervisor_notes"] = ""
	updates["engineer_approved_at"] = nil
	updates["engineer_approved_by"] = nil
	updates["engineer_notes"] = ""
	clearCustomerFields(updates)
}

func clearCustomerFields(updates map[string]any) {
	updates["customer_reviewed_at"] = nil
	updates["customer_reviewed_by"] = nil
	updates["customer_notes"] = ""
}

func (s *WorkOrderService) load(ctx context.Context, workOrderID string) (*models.WorkOrder, error) {
	workOrderID = strings.TrimSpace(workOrderID)
	if workOrderID == "" {
		return nil, apperrors.NewBadRequest("work order id is required")
	}

	var record models.WorkOrder
	if err := s.db.WithContext(ctx).First(&record, "id = ?", workOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("work order service: load: %w", err)
	}
	return &record, nil
}

// actorScope resolves the actor's roles in the hospital and the resulting
// work order view scope. Users without a system role fall back to own-only
// visibility.
func (s *WorkOrderService) actorScope(ctx context.Context, actorID, hospitalID string) (rbac.ViewScope, []string, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return "", nil, apperrors.NewBadRequest("actor id is required")
	}

	roles, err := s.resolver.RoleCodesFor(ctx, actorID, &hospitalID)
	if err != nil {
		return "", nil, err
	}

	cfg := rbac.Lookup(roles)
	if cfg == nil {
		return rbac.ScopeOwn, roles, nil
	}
	return cfg.WorkOrders.View, roles, nil
}

func (s *WorkOrderService) scopeCovers(scope rbac.ViewScope, record *models.WorkOrder, actorID string) bool {
	switch scope {
	case rbac.ScopeAll, rbac.ScopeTeam:
		return true
	default:
		return record.ReporterID == actorID ||
			(record.AssigneeID != nil && *record.AssigneeID == actorID)
	}
}

func (s *WorkOrderService) cooldownPassed(workOrderID, actorID string) bool {
	if s.cooldown <= 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.lastActions[workOrderID+"|"+actorID]
	if !ok {
		return true
	}
	return s.now().Sub(last) >= s.cooldown
}

func (s *WorkOrderService) markAction(workOrderID, actorID string, at time.Time) {
	if s.cooldown <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActions[workOrderID+"|"+actorID] = at
}

// fanOutTransition sends best-effort notifications to the record's reporter
// and assignee, skipping the acting user. Failures are logged and never
// propagate.
func (s *WorkOrderService) fanOutTransition(record *models.WorkOrder, actorID string, action workflow.Action) {
	targets := make(map[string]struct{}, 2)
	if record.ReporterID != "" && record.ReporterID != actorID {
		targets[record.ReporterID] = struct{}{}
	}
	if record.AssigneeID != nil && *record.AssigneeID != "" && *record.AssigneeID != actorID {
		targets[*record.AssigneeID] = struct{}{}
	}

	for userID := range targets {
		s.notify(userID, "work_order."+string(action), "Work order updated",
			fmt.Sprintf("%s moved to %s", record.Title, record.Status), record)
	}
}

func (s *WorkOrderService) notify(userID, eventType, title, message string, record *models.WorkOrder) {
	if s.notifications == nil || userID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := s.notifications.Create(ctx, CreateNotificationInput{
			UserID:  userID,
			Type:    eventType,
			Title:   title,
			Message: message,
			Metadata: map[string]any{
				"work_order_id": record.ID,
				"status":        record.Status,
			},
		})
		if err != nil {
			s.log.Warn("work order notification failed",
				zap.String("user_id", userID),
				zap.String("work_order_id", record.ID),
				zap.Error(err))
		}
	}()
}
