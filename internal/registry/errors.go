package registry

import "errors"

// Adapter failures reported by registry implementations.
var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrPayloadUnavailable = errors.New("record payload unavailable")
	ErrFlagUnavailable    = errors.New("feature flag unavailable")
	ErrTargetExists       = errors.New("rename target already exists")
	ErrContainerMissing   = errors.New("target container does not exist")
)
