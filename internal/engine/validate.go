package engine

import (
	"fmt"

	"github.com/shaiso/ensemble/internal/domain"
)

// ValidateRoles проверяет набор ролей задачи.
//
// Проверяет:
//   - набор не пуст
//   - каждый agent_id непустой и уникален
//   - веса неотрицательны (ноль трактуется как «не задан»)
//   - роль не зависит от самой себя
//
// Существование зависимостей и отсутствие циклов проверяет BuildLayers.
func ValidateRoles(roles []domain.AgentRole) error {
	if len(roles) == 0 {
		return NewValidationError("", "agent_roles", "task has no agent roles", ErrNoRoles)
	}

	seen := make(map[string]bool, len(roles))
	for i := range roles {
		role := &roles[i]

		if role.AgentID == "" {
			return NewValidationError("", "agent_id", "role has empty agent_id", ErrEmptyAgentID)
		}
		if seen[role.AgentID] {
			return NewValidationError(role.AgentID, "agent_id",
				fmt.Sprintf("duplicate agent_id: %s", role.AgentID), ErrDuplicateAgentID)
		}
		seen[role.AgentID] = true

		if role.Weight < 0 {
			return NewValidationError(role.AgentID, "weight",
				fmt.Sprintf("weight must be positive, got %v", role.Weight), ErrNegativeWeight)
		}

		for _, dep := range role.Dependencies {
			if dep == role.AgentID {
				return NewValidationError(role.AgentID, "dependencies",
					"role depends on itself", ErrSelfDependency)
			}
		}
	}

	return nil
}
