package engine

import (
	"errors"
	"sort"
	"strings"
)

// Ошибки валидации набора ролей.
var (
	// ErrNoRoles — задача не содержит ролей.
	ErrNoRoles = errors.New("task has no agent roles")

	// ErrEmptyAgentID — роль не имеет agent_id.
	ErrEmptyAgentID = errors.New("role has empty agent_id")

	// ErrDuplicateAgentID — несколько ролей с одинаковым agent_id.
	ErrDuplicateAgentID = errors.New("duplicate agent_id")

	// ErrNegativeWeight — роль имеет отрицательный вес.
	ErrNegativeWeight = errors.New("role weight must be positive")

	// ErrSelfDependency — роль зависит от самой себя.
	ErrSelfDependency = errors.New("role depends on itself")

	// ErrUnknownDependency — роль зависит от несуществующего agent_id.
	ErrUnknownDependency = errors.New("role depends on unknown agent")

	// ErrCyclicDependency — обнаружен цикл в зависимостях ролей.
	ErrCyclicDependency = errors.New("cyclic dependency detected")
)

// ValidationError — ошибка валидации с контекстом роли.
type ValidationError struct {
	AgentID string // роль, вызвавшая ошибку
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.AgentID != "" {
		return "role " + e.AgentID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(agentID, field, message string, err error) *ValidationError {
	return &ValidationError{
		AgentID: agentID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// UnknownDependencyError — зависимость ссылается на agent_id вне набора ролей.
type UnknownDependencyError struct {
	// AgentID — роль с висячей зависимостью.
	AgentID string

	// Dependency — отсутствующий agent_id.
	Dependency string
}

// Error реализует интерфейс error.
func (e *UnknownDependencyError) Error() string {
	return "role " + e.AgentID + " depends on unknown agent " + e.Dependency
}

// Unwrap возвращает ErrUnknownDependency.
func (e *UnknownDependencyError) Unwrap() error {
	return ErrUnknownDependency
}

// CyclicDependencyError — роли, которые невозможно разместить по слоям.
type CyclicDependencyError struct {
	// AgentIDs — участники цикла, отсортированы по возрастанию.
	AgentIDs []string
}

// Error реализует интерфейс error.
func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency among roles: " + strings.Join(e.AgentIDs, ", ")
}

// Unwrap возвращает ErrCyclicDependency.
func (e *CyclicDependencyError) Unwrap() error {
	return ErrCyclicDependency
}

func newCyclicDependencyError(ids []string) *CyclicDependencyError {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return &CyclicDependencyError{AgentIDs: sorted}
}
