package domain

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("access denied")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrInvalidRole          = errors.New("only assistant messages can be regenerated")
	ErrAlreadyRegenerated   = errors.New("message already regenerated")
	ErrRegenerationNoChange = errors.New("regenerated response matches the original")
	ErrCorruptState         = errors.New("conversation state is corrupt")
	ErrAllBackendsFailed    = errors.New("all generation backends failed")
	ErrPersistence          = errors.New("persistence failure")

	// Per-attempt backend outcomes used by the dispatcher's decision
	// table. All of them mean "continue with the next backend".
	ErrRateLimited = errors.New("backend rate limited")
	ErrUnavailable = errors.New("backend unavailable")
)
