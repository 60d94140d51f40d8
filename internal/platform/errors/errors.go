package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrSessionStalled    = errors.New("session stalled")
	ErrCollaborator      = errors.New("collaborator failure")
	ErrPersistence       = errors.New("persistence failure")
	ErrDaemonNotRunning  = errors.New("gateway daemon is not running")
	ErrDaemonStartFailed = errors.New("gateway daemon failed to start")
)
