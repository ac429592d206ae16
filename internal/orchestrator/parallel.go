package orchestrator

import (
	"context"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

// parallelStrategy — режим PARALLEL.
//
// Все роли выполняются одновременно над одним снимком контекста,
// без гарантий порядка. Ошибки отдельных ролей фиксируются
// в node results; задача становится FAILED только если упали все.
type parallelStrategy struct{}

func (parallelStrategy) Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error {
	results := runBatch(ctx, task, state, exec, task.AgentRoles)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !anyCompleted(results) {
		return ErrAllRolesFailed
	}
	return nil
}
