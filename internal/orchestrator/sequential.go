package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

// sequentialStrategy — режим SEQUENTIAL.
//
// Роли выполняются строго в порядке списка; каждая видит контекст,
// накопленный предыдущими (happens-before цепочка). Первая упавшая
// роль прерывает выполнение: остальные помечаются SKIPPED без
// вызова, задача становится FAILED.
type sequentialStrategy struct{}

func (sequentialStrategy) Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error {
	roles := task.AgentRoles

	for i := range roles {
		if err := ctx.Err(); err != nil {
			return err
		}

		role := roles[i]
		state.MarkStarted(role.AgentID)

		result := exec.Invoke(ctx, executor.Request{
			TaskID:      task.ID,
			Role:        role,
			Description: task.Description,
			Input:       state.Input(),
			Context:     state.Snapshot(),
		})
		state.StoreResult(result)

		if result.Status != domain.NodeStatusCompleted {
			if err := ctx.Err(); err != nil {
				return err
			}
			skipRemaining(state, roles[i+1:], fmt.Sprintf("role %s failed", role.AgentID))
			return fmt.Errorf("%w: %s", ErrRoleFailed, role.AgentID)
		}
	}

	return nil
}
