package workflow

// Status is the workflow position of a work order.
type Status string

const (
	StatusPending                   Status = "pending"
	StatusAssigned                  Status = "assigned"
	StatusInProgress                Status = "in_progress"
	StatusPendingSupervisorApproval Status = "pending_supervisor_approval"
	StatusPendingEngineerReview     Status = "pending_engineer_review"
	StatusPendingReporterClosure    Status = "pending_reporter_closure"
	StatusCompleted                 Status = "completed"
	StatusRejectedByTechnician      Status = "rejected_by_technician"
	StatusAutoClosed                Status = "auto_closed"
	StatusCancelled                 Status = "cancelled"
)

// Legacy statuses kept for historical records. No transition produces or
// consumes them; they stay valid values for parsing and storage only.
const (
	StatusNeedsRedirection Status = "needs_redirection"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusCustomerApproved Status = "customer_approved"
	StatusCustomerRejected Status = "customer_rejected"
)

var validStatuses = map[Status]struct{}{
	StatusPending:                   {},
	StatusAssigned:                  {},
	StatusInProgress:                {},
	StatusPendingSupervisorApproval: {},
	StatusPendingEngineerReview:     {},
	StatusPendingReporterClosure:    {},
	StatusCompleted:                 {},
	StatusRejectedByTechnician:      {},
	StatusAutoClosed:                {},
	StatusCancelled:                 {},
	StatusNeedsRedirection:          {},
	StatusAwaitingApproval:          {},
	StatusCustomerApproved:          {},
	StatusCustomerRejected:          {},
}

var terminalStatuses = map[Status]struct{}{
	StatusCompleted:  {},
	StatusAutoClosed: {},
	StatusCancelled:  {},
}

// Valid reports whether the status belongs to the known set, legacy values
// included.
func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Terminal reports whether the workflow is finished for this status.
// rejected_by_technician is deliberately non-terminal: a manager reassigns
// such records back into the active flow.
func (s Status) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}
