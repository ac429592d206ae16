package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/engine"
	"github.com/shaiso/ensemble/internal/executor"
)

// hierarchicalStrategy — режим HIERARCHICAL.
//
// Роли выполняются слоями по зависимостям (engine.BuildLayers).
// Внутри слоя — семантика Parallel над контекстом, слитым из всех
// предыдущих слоёв. При падении роли пропускаются только её прямые
// и транзитивные зависимые; независимые ветви продолжаются.
// Задача FAILED только если не успела ни одна выполнявшаяся роль.
type hierarchicalStrategy struct{}

func (hierarchicalStrategy) Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error {
	layers, err := engine.BuildLayers(task.AgentRoles)
	if err != nil {
		return err
	}

	rolesByID := make(map[string]domain.AgentRole, len(task.AgentRoles))
	for i := range task.AgentRoles {
		rolesByID[task.AgentRoles[i].AgentID] = task.AgentRoles[i]
	}

	// agent_id → причина пропуска
	skipped := make(map[string]string)

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return err
		}

		runnable := make([]domain.AgentRole, 0, len(layer))
		for _, id := range layer {
			if reason, ok := skipped[id]; ok {
				state.Skip(id, reason)
				continue
			}
			runnable = append(runnable, rolesByID[id])
		}
		if len(runnable) == 0 {
			continue
		}

		results := runBatch(ctx, task, state, exec, runnable)
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, result := range results {
			if result.Status == domain.NodeStatusCompleted {
				continue
			}
			reason := fmt.Sprintf("dependency %s failed", result.AgentID)
			for _, dependent := range engine.TransitiveDependents(task.AgentRoles, result.AgentID) {
				if _, ok := skipped[dependent]; !ok {
					skipped[dependent] = reason
				}
			}
		}
	}

	if state.CompletedCount() == 0 {
		return ErrAllRolesFailed
	}
	return nil
}
