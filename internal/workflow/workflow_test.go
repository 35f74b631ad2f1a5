package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/rbac"
)

func ts(t *testing.T) *time.Time {
	t.Helper()
	v := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &v
}

func TestTransitionTableEdgesAreUnique(t *testing.T) {
	seenPair := make(map[[2]Status]int)
	seenAction := make(map[Status]map[Action]int)
	for _, tr := range Transitions() {
		seenPair[[2]Status{tr.From, tr.To}]++
		if seenAction[tr.From] == nil {
			seenAction[tr.From] = make(map[Action]int)
		}
		seenAction[tr.From][tr.Action]++
	}
	for pair, n := range seenPair {
		require.Equal(t, 1, n, "duplicate edge %v", pair)
	}
	for from, actions := range seenAction {
		for action, n := range actions {
			require.Equal(t, 1, n, "duplicate action %s from %s", action, from)
		}
	}
}

func TestStartWorkPrecondition(t *testing.T) {
	record := &models.WorkOrder{Status: string(StatusAssigned)}
	roles := []string{rbac.RoleTechnician}

	set := AvailableActions(StatusAssigned, roles, record, false)
	require.True(t, set.CanStart)
	require.True(t, set.CanReject)
	require.False(t, set.CanComplete)
	require.False(t, set.CanReassign)

	// Once started, re-evaluating the same status yields no start action.
	record.WorkStartedAt = ts(t)
	set = AvailableActions(StatusAssigned, roles, record, false)
	require.False(t, set.CanStart)
}

func TestAvailableActionsIsPure(t *testing.T) {
	record := &models.WorkOrder{
		Status:        string(StatusInProgress),
		WorkStartedAt: ts(t),
	}
	roles := []string{rbac.RoleSeniorTechnician}

	first := AvailableActions(StatusInProgress, roles, record, false)
	second := AvailableActions(StatusInProgress, roles, record, false)
	require.Equal(t, first, second)
	require.True(t, first.CanComplete)
}

func TestSupervisorApprovalScenario(t *testing.T) {
	record := &models.WorkOrder{
		Status:                string(StatusPendingSupervisorApproval),
		WorkStartedAt:         ts(t),
		TechnicianCompletedAt: ts(t),
	}
	set := AvailableActions(StatusPendingSupervisorApproval, []string{rbac.RoleSupervisor}, record, false)
	require.True(t, set.CanApprove)
	require.True(t, set.CanReject)
	require.True(t, set.CanUpdate)
	require.True(t, set.CanReassign, "a supervisor may hand the record to another technician")
	require.False(t, set.CanReview)

	// Engineer review and beyond are out of the reassign window.
	set = AvailableActions(StatusPendingEngineerReview, []string{rbac.RoleSupervisor}, record, false)
	require.False(t, set.CanReassign)

	// A technician has no say at this stage.
	set = AvailableActions(StatusPendingSupervisorApproval, []string{rbac.RoleTechnician}, record, false)
	require.Zero(t, set)
}

func TestReporterClosureScenario(t *testing.T) {
	record := &models.WorkOrder{
		Status:                string(StatusPendingReporterClosure),
		WorkStartedAt:         ts(t),
		TechnicianCompletedAt: ts(t),
		SupervisorApprovedAt:  ts(t),
		EngineerApprovedAt:    ts(t),
	}

	set := AvailableActions(StatusPendingReporterClosure, nil, record, true)
	require.True(t, set.CanClose)
	require.True(t, set.CanReject)

	// The reporter flag, not the reporter role code, licenses the edge.
	set = AvailableActions(StatusPendingReporterClosure, []string{rbac.RoleReporter}, record, false)
	require.False(t, set.CanClose)
	require.False(t, set.CanReject)

	// Already reviewed: closing again is off the table.
	record.CustomerReviewedAt = ts(t)
	set = AvailableActions(StatusPendingReporterClosure, nil, record, true)
	require.False(t, set.CanClose)
}

func TestManagerReassignAndUpdate(t *testing.T) {
	record := &models.WorkOrder{Status: string(StatusRejectedByTechnician)}

	set := AvailableActions(StatusRejectedByTechnician, []string{rbac.RoleMaintenanceManager}, record, false)
	require.True(t, set.CanReassign)
	require.True(t, set.CanUpdate)

	// Update survives terminal statuses, reassign does not.
	set = AvailableActions(StatusCompleted, []string{rbac.RoleMaintenanceManager}, record, false)
	require.False(t, set.CanReassign)
	require.True(t, set.CanUpdate)

	set = AvailableActions(StatusRejectedByTechnician, []string{rbac.RoleTechnician}, record, false)
	require.False(t, set.CanReassign)
	require.False(t, set.CanUpdate)
}

func TestLegacyStatusesHaveNoEdges(t *testing.T) {
	for _, s := range []Status{StatusNeedsRedirection, StatusAwaitingApproval, StatusCustomerApproved, StatusCustomerRejected} {
		require.True(t, s.Valid(), s)
		record := &models.WorkOrder{Status: string(s)}
		set := AvailableActions(s, []string{rbac.RoleHospitalAdmin}, record, true)
		require.False(t, set.CanStart, s)
		require.False(t, set.CanComplete, s)
		require.False(t, set.CanApprove, s)
		require.False(t, set.CanReview, s)
		require.False(t, set.CanClose, s)
		require.False(t, set.CanReject, s)
		// Manager-class update stays available even on legacy records.
		require.True(t, set.CanUpdate, s)
	}
}

func TestValidateTransitionUnknownEdge(t *testing.T) {
	res := ValidateTransition(StatusPending, StatusCompleted, []string{rbac.RoleTechnician}, &models.WorkOrder{}, false)
	require.False(t, res.Valid)
	require.ErrorIs(t, res.Err, ErrInvalidTransition)
	require.Nil(t, res.Transition)
}

func TestValidateTransitionRoleGate(t *testing.T) {
	record := &models.WorkOrder{Status: string(StatusAssigned)}

	res := ValidateTransition(StatusAssigned, StatusInProgress, []string{rbac.RoleReporter}, record, true)
	require.False(t, res.Valid)
	require.ErrorIs(t, res.Err, ErrRoleNotPermitted)

	res = ValidateTransition(StatusAssigned, StatusInProgress, []string{rbac.RoleSeniorTechnician}, record, false)
	require.True(t, res.Valid)
	require.NotNil(t, res.Transition)
	require.Equal(t, ActionStartWork, res.Transition.Action)
}

func TestValidateTransitionPreconditions(t *testing.T) {
	record := &models.WorkOrder{Status: string(StatusInProgress)}

	// Completing unstarted work is rejected with a specific reason.
	res := ValidateTransition(StatusInProgress, StatusPendingSupervisorApproval, []string{rbac.RoleTechnician}, record, false)
	require.False(t, res.Valid)
	require.ErrorIs(t, res.Err, ErrNotStarted)

	record.WorkStartedAt = ts(t)
	res = ValidateTransition(StatusInProgress, StatusPendingSupervisorApproval, []string{rbac.RoleTechnician}, record, false)
	require.True(t, res.Valid)
	require.True(t, res.Transition.RequiresField(FieldTechnicianNotes))

	record.TechnicianCompletedAt = ts(t)
	res = ValidateTransition(StatusInProgress, StatusPendingSupervisorApproval, []string{rbac.RoleTechnician}, record, false)
	require.ErrorIs(t, res.Err, ErrAlreadyCompleted)
}

func TestValidateReporterRejectNeedsEngineerReview(t *testing.T) {
	record := &models.WorkOrder{Status: string(StatusPendingReporterClosure)}

	res := ValidateTransition(StatusPendingReporterClosure, StatusPendingEngineerReview, nil, record, true)
	require.False(t, res.Valid)
	require.ErrorIs(t, res.Err, ErrNotReviewed)

	record.EngineerApprovedAt = ts(t)
	res = ValidateTransition(StatusPendingReporterClosure, StatusPendingEngineerReview, nil, record, true)
	require.True(t, res.Valid)
	require.Equal(t, ActionReporterReject, res.Transition.Action)
	require.True(t, res.Transition.RequiresField(FieldRejectionReason))
}

func TestTerminalStatuses(t *testing.T) {
	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusAutoClosed.Terminal())
	require.True(t, StatusCancelled.Terminal())
	require.False(t, StatusRejectedByTechnician.Terminal())
	require.False(t, StatusPendingReporterClosure.Terminal())
}

func TestFindByAction(t *testing.T) {
	tr, ok := FindByAction(StatusInProgress, ActionTechnicianReject)
	require.True(t, ok)
	require.Equal(t, StatusRejectedByTechnician, tr.To)

	_, ok = FindByAction(StatusCompleted, ActionStartWork)
	require.False(t, ok)
}
