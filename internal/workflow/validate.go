package workflow

import "github.com/medifixhq/medifix/internal/models"

// Result is the structured outcome of a transition validation. Validation
// failures are expected, user-facing outcomes carried in Err; they are never
// raised as panics and callers must not treat them as store failures.
type Result struct {
	Valid      bool
	Err        error
	Transition *Transition
}

// ValidateTransition finds the unique edge matching (from, to) and checks
// the actor rule and the precondition against the record. On success the
// matched transition is returned so the caller knows which required fields
// to enforce.
func ValidateTransition(from, to Status, actorRoles []string, record *models.WorkOrder, isReporter bool) Result {
	t, ok := Find(from, to)
	if !ok {
		return Result{Err: ErrInvalidTransition}
	}

	if !t.permits(actorRoles, isReporter) {
		return Result{Err: ErrRoleNotPermitted}
	}

	if t.Precondition != nil {
		if err := t.Precondition(record); err != nil {
			return Result{Err: err}
		}
	}

	return Result{Valid: true, Transition: t}
}
