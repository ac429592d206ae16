package executor

import "errors"

// Ошибки executor'а.
var (
	// ErrUnknownAgent — нет capability для данного agent_id.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrNilCapability — попытка зарегистрировать nil capability.
	ErrNilCapability = errors.New("capability is nil")
)
