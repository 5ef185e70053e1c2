package store

import "errors"

// Every validation step in the registry surfaces exactly one of these
// kinds. Callers branch with errors.Is; messages may carry the offending
// key via wrapping.
var (
	ErrDuplicateUser      = errors.New("user already exists")
	ErrUnknownUser        = errors.New("user does not exist")
	ErrUserNotFound       = errors.New("user not found in any group")
	ErrDuplicateGroupName = errors.New("group name already taken")
	ErrUnknownGroup       = errors.New("group does not exist")
	ErrNotAuthorized      = errors.New("approver does not have admin rights")
	ErrNotAMember         = errors.New("user is not a member of the group")
	ErrCannotRemoveAdmin  = errors.New("cannot remove the group admin")
	ErrUnknownDraft       = errors.New("message was never drafted")
	ErrInsufficientMsgs   = errors.New("k exceeds the number of messages in range")
)
