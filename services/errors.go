package services

import "errors"

// Sentinel errors surfaced by the coordination services. Controllers map
// these onto HTTP statuses; everything else is treated as a 500.
var (
	// ErrValidation rejects a malformed request before any storage call.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both unknown ids and callers that are not part of
	// the proposal or group they tried to act on.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateProposal fires when a pending proposal already exists for
	// the same member set and date.
	ErrDuplicateProposal = errors.New("pending proposal already exists for this group")

	// ErrAlreadyResolved means the proposal reached a terminal state before
	// this action arrived.
	ErrAlreadyResolved = errors.New("proposal already resolved")

	// ErrPermission rejects actions reserved for another role, e.g. only the
	// proposer may cancel.
	ErrPermission = errors.New("not permitted")
)
