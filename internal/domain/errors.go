package domain

import "errors"

var (
	ErrQueueNotFound     = errors.New("queue not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyMember     = errors.New("already a member of the queue")
	ErrNotMember         = errors.New("not a member of the queue")
	ErrAlreadyLast       = errors.New("already last in the queue")
	ErrTooEarly          = errors.New("queue has not opened yet")
	ErrLocationRequired  = errors.New("location required")
	ErrTooFar            = errors.New("too far from the queue location")
	ErrInvalidToken      = errors.New("invalid invite token")
	ErrCreatorMismatch   = errors.New("invite creator does not match the queue")
	ErrQueueNameRequired = errors.New("queue name required")
	ErrGroupNameRequired = errors.New("group name required")
	ErrUserNameRequired  = errors.New("user name required")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidID         = errors.New("invalid id")
)
