package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrUnknownTask — задача не найдена в реестре оркестратора.
	ErrUnknownTask = errors.New("unknown task")

	// ErrTaskNotPending — задача не в статусе PENDING.
	ErrTaskNotPending = errors.New("task is not in PENDING status")

	// ErrTaskNotRunning — задача не в статусе RUNNING.
	ErrTaskNotRunning = errors.New("task is not in RUNNING status")

	// ErrUnsupportedMode — неизвестный режим коллаборации.
	ErrUnsupportedMode = errors.New("unsupported collaboration mode")

	// ErrAgentNotRegistered — роль ссылается на agent_id без capability.
	ErrAgentNotRegistered = errors.New("agent is not registered")

	// ErrRoleFailed — роль упала и режим прерывает выполнение.
	ErrRoleFailed = errors.New("role failed")

	// ErrAllRolesFailed — все выполнявшиеся роли завершились ошибкой.
	ErrAllRolesFailed = errors.New("all roles failed")
)
