package workflow

import (
	"errors"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/rbac"
)

// Action tags the business meaning of a transition edge.
type Action string

const (
	ActionStartWork         Action = "start_work"
	ActionCompleteWork      Action = "complete_work"
	ActionSupervisorApprove Action = "supervisor_approve"
	ActionEngineerApprove   Action = "engineer_approve"
	ActionReporterClose     Action = "reporter_close"
	ActionTechnicianReject  Action = "technician_reject"
	ActionSupervisorReject  Action = "supervisor_reject"
	ActionEngineerReject    Action = "engineer_reject"
	ActionReporterReject    Action = "reporter_reject"
)

// Field names a required free-text input on a transition.
const (
	FieldTechnicianNotes = "technician_notes"
	FieldSupervisorNotes = "supervisor_notes"
	FieldEngineerNotes   = "engineer_notes"
	FieldRejectionReason = "rejection_reason"
)

// Precondition failure reasons surfaced to users. These are expected
// validation outcomes, not errors.
var (
	ErrAlreadyStarted     = errors.New("work has already been started")
	ErrNotStarted         = errors.New("work has not been started yet")
	ErrAlreadyCompleted   = errors.New("work has already been completed by the technician")
	ErrNotCompleted       = errors.New("work must be completed by the technician first")
	ErrAlreadyApproved    = errors.New("work has already been approved by a supervisor")
	ErrNotApproved        = errors.New("work must be approved by a supervisor first")
	ErrAlreadyReviewed    = errors.New("work has already been reviewed by an engineer")
	ErrNotReviewed        = errors.New("work must be reviewed by an engineer first")
	ErrAlreadyClosed      = errors.New("work order has already been closed by the reporter")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrRoleNotPermitted   = errors.New("actor role is not permitted for this transition")
)

// Transition is one licensed edge in the status graph. The table below is
// the sole source of truth for legal workflow moves; it is defined at
// compile time and never mutated.
type Transition struct {
	From           Status
	To             Status
	Action         Action
	Roles          []string
	RequiredFields []string
	Precondition   func(*models.WorkOrder) error
}

var technicianRoles = []string{rbac.RoleTechnician, rbac.RoleSeniorTechnician}

var supervisorApprovalRoles = []string{
	rbac.RoleSupervisor, rbac.RoleFacilityManager, rbac.RoleHospitalAdmin,
}

var engineerReviewRoles = []string{
	rbac.RoleEngineer, rbac.RoleMaintenanceManager,
	rbac.RoleFacilityManager, rbac.RoleHospitalAdmin,
}

var transitions = []Transition{
	{
		From:   StatusPending,
		To:     StatusInProgress,
		Action: ActionStartWork,
		Roles:  technicianRoles,
		Precondition: func(wo *models.WorkOrder) error {
			if wo.WorkStartedAt != nil {
				return ErrAlreadyStarted
			}
			return nil
		},
	},
	{
		From:   StatusAssigned,
		To:     StatusInProgress,
		Action: ActionStartWork,
		Roles:  technicianRoles,
		Precondition: func(wo *models.WorkOrder) error {
			if wo.WorkStartedAt != nil {
				return ErrAlreadyStarted
			}
			return nil
		},
	},
	{
		From:           StatusInProgress,
		To:             StatusPendingSupervisorApproval,
		Action:         ActionCompleteWork,
		Roles:          technicianRoles,
		RequiredFields: []string{FieldTechnicianNotes},
		Precondition: func(wo *models.WorkOrder) error {
			if wo.WorkStartedAt == nil {
				return ErrNotStarted
			}
			if wo.TechnicianCompletedAt != nil {
				return ErrAlreadyCompleted
			}
			return nil
		},
	},
	{
		From:           StatusPendingSupervisorApproval,
		To:             StatusPendingEngineerReview,
		Action:         ActionSupervisorApprove,
		Roles:          supervisorApprovalRoles,
		RequiredFields: []string{FieldSupervisorNotes},
		Precondition: func(wo *models.WorkOrder) error {
			if wo.TechnicianCompletedAt == nil {
				return ErrNotCompleted
			}
			if wo.SupervisorApprovedAt != nil {
				return ErrAlreadyApproved
			}
			return nil
		},
	},
	{
		From:           StatusPendingEngineerReview,
		To:             StatusPendingReporterClosure,
		Action:         ActionEngineerApprove,
		Roles:          engineerReviewRoles,
		RequiredFields: []string{FieldEngineerNotes},
		Precondition: func(wo *models.WorkOrder) error {
			if wo.SupervisorApprovedAt == nil {
				return ErrNotApproved
			}
			if wo.EngineerApprovedAt != nil {
				return ErrAlreadyReviewed
			}
			return nil
		},
	},
	{
		From:   StatusPendingReporterClosure,
		To:     StatusCompleted,
		Action: ActionReporterClose,
		Roles:  []string{rbac.RoleReporter},
		Precondition: func(wo *models.WorkOrder) error {
			if wo.EngineerApprovedAt == nil {
				return ErrNotReviewed
			}
			if wo.CustomerReviewedAt != nil {
				return ErrAlreadyClosed
			}
			return nil
		},
	},
	{
		From:           StatusAssigned,
		To:             StatusRejectedByTechnician,
		Action:         ActionTechnicianReject,
		Roles:          technicianRoles,
		RequiredFields: []string{FieldRejectionReason},
	},
	{
		From:           StatusInProgress,
		To:             StatusRejectedByTechnician,
		Action:         ActionTechnicianReject,
		Roles:          technicianRoles,
		RequiredFields: []string{FieldRejectionReason},
	},
	{
		From:           StatusPendingSupervisorApproval,
		To:             StatusInProgress,
		Action:         ActionSupervisorReject,
		Roles:          supervisorApprovalRoles,
		RequiredFields: []string{FieldRejectionReason},
	},
	{
		From:           StatusPendingEngineerReview,
		To:             StatusPendingSupervisorApproval,
		Action:         ActionEngineerReject,
		Roles:          engineerReviewRoles,
		RequiredFields: []string{FieldRejectionReason},
	},
	{
		From:           StatusPendingReporterClosure,
		To:             StatusPendingEngineerReview,
		Action:         ActionReporterReject,
		Roles:          []string{rbac.RoleReporter},
		RequiredFields: []string{FieldRejectionReason},
		Precondition: func(wo *models.WorkOrder) error {
			if wo.EngineerApprovedAt == nil {
				return ErrNotReviewed
			}
			return nil
		},
	},
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Find returns the unique transition matching (from, to).
func Find(from, to Status) (*Transition, bool) {
	for i := range transitions {
		if transitions[i].From == from && transitions[i].To == to {
			return &transitions[i], true
		}
	}
	return nil, false
}

// FindByAction returns the unique transition leaving from with the given
// action tag.
func FindByAction(from Status, action Action) (*Transition, bool) {
	for i := range transitions {
		if transitions[i].From == from && transitions[i].Action == action {
			return &transitions[i], true
		}
	}
	return nil, false
}

// permits applies the actor rule for an edge: the role sets intersect, or the
// edge is reporter-only and the actor reported the record.
func (t *Transition) permits(actorRoles []string, isReporter bool) bool {
	if len(t.Roles) == 1 && t.Roles[0] == rbac.RoleReporter {
		return isReporter
	}
	for _, required := range t.Roles {
		for _, held := range actorRoles {
			if held == required {
				return true
			}
		}
	}
	return false
}

// RequiresField reports whether the transition demands a non-empty value for
// the named field before it may be applied.
func (t *Transition) RequiresField(field string) bool {
	for _, f := range t.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}
