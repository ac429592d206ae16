package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

// pipelineStrategy — режим PIPELINE.
//
// Как Sequential, но вперёд передаётся только артефакт: роль i+1
// получает на вход Content роли i, а не накопленный контекст.
// Первая ступень получает вход задачи. Падение ступени прерывает
// конвейер: остальные SKIPPED, задача FAILED.
type pipelineStrategy struct{}

func (pipelineStrategy) Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error {
	roles := task.AgentRoles

	input := state.Input()
	snapshot := state.Snapshot()

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
			Input:       input,
			Context:     snapshot,
		})
		state.StoreResult(result)

		if result.Status != domain.NodeStatusCompleted {
			if err := ctx.Err(); err != nil {
				return err
			}
			skipRemaining(state, roles[i+1:], fmt.Sprintf("upstream stage %s failed", role.AgentID))
			return fmt.Errorf("%w: %s", ErrRoleFailed, role.AgentID)
		}

		// Дальше по конвейеру идёт только артефакт предыдущей ступени
		input = result.Content
		snapshot = nil
	}

	return nil
}
