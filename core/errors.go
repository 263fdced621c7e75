package core

import "errors"

// Error taxonomy for the conversation surface. Validation failures are
// recoverable re-prompts; state errors are terminal for the current flow.
// None of these may ever carry raw secret material.
var (
	ErrInvalidSecretKey   = errors.New("invalid secret key")
	ErrInvalidDestination = errors.New("invalid destination address")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrFlowExpired        = errors.New("flow expired or missing")
	ErrTokenMismatch      = errors.New("confirmation token does not match flow")
)
