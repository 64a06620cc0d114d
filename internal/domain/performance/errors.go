package performance

import "errors"

var (
	ErrForbidden       = errors.New("not allowed for this user")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidStatus   = errors.New("status must be one of Draft, In Progress, Completed, Cancelled")
	ErrInvalidAssignee = errors.New("goal must be assigned to an existing employee")
	ErrInvalidInput    = errors.New("invalid input")
)
