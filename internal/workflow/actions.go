package workflow

import (
	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/rbac"
)

// ActionSet aggregates the workflow affordances available to an actor on a
// record in its current status. Multiple edges can independently license the
// same flag; the aggregation is a union.
type ActionSet struct {
	CanStart    bool `json:"can_start"`
	CanComplete bool `json:"can_complete"`
	CanApprove  bool `json:"can_approve"`
	CanReview   bool `json:"can_review"`
	CanClose    bool `json:"can_close"`
	CanReject   bool `json:"can_reject"`

	// CanReassign and CanUpdate are coarser, manager-class capabilities
	// computed independently of the transition table.
	CanReassign bool `json:"can_reassign"`
	CanUpdate   bool `json:"can_update"`
}

// Reassignment stays open through the supervisor's approval gate so a
// supervisor can hand the record to a different technician instead of
// approving or rejecting it.
var reassignableStatuses = map[Status]struct{}{
	StatusPending:                   {},
	StatusAssigned:                  {},
	StatusInProgress:                {},
	StatusPendingSupervisorApproval: {},
	StatusRejectedByTechnician:      {},
}

// AvailableActions evaluates every transition leaving the current status
// against the actor's roles and the record's milestones. It is a pure
// function: identical inputs always yield identical flags.
func AvailableActions(status Status, actorRoles []string, record *models.WorkOrder, isReporter bool) ActionSet {
	var set ActionSet

	for i := range transitions {
		t := &transitions[i]
		if t.From != status {
			continue
		}
		if !t.permits(actorRoles, isReporter) {
			continue
		}
		if t.Precondition != nil && t.Precondition(record) != nil {
			continue
		}

		switch t.Action {
		case ActionStartWork:
			set.CanStart = true
		case ActionCompleteWork:
			set.CanComplete = true
		case ActionSupervisorApprove:
			set.CanApprove = true
		case ActionEngineerApprove:
			set.CanReview = true
		case ActionReporterClose:
			set.CanClose = true
		case ActionTechnicianReject, ActionSupervisorReject, ActionEngineerReject, ActionReporterReject:
			set.CanReject = true
		}
	}

	if rbac.IsManagerClass(actorRoles) {
		if _, ok := reassignableStatuses[status]; ok {
			set.CanReassign = true
		}
		set.CanUpdate = true
	}

	return set
}
