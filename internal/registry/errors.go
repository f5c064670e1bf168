package registry

import "errors"

var (
	ErrUnknownUser    = errors.New("unknown user")
	ErrUnknownTask    = errors.New("unknown task")
	ErrDuplicateUser  = errors.New("duplicate user")
	ErrInvalidDueDate = errors.New("invalid due date")
	ErrTaskComplete   = errors.New("task already complete")
)
