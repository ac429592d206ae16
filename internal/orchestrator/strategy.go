package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

// strategy — общий контракт режимов коллаборации.
//
// Run выполняет роли задачи, вливая результаты в state. Возвращаемая
// ошибка означает провал задачи по политике режима; частичные ошибки
// ролей остаются в node results и ошибкой Run не являются.
// Отмену и таймаут Run не интерпретирует: возвращает ctx.Err(),
// а терминальный статус задачи выводит оркестратор.
type strategy interface {
	Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error
}

// strategyForMode возвращает стратегию для режима коллаборации.
func strategyForMode(mode domain.Mode) (strategy, error) {
	switch mode {
	case domain.ModeSequential:
		return sequentialStrategy{}, nil
	case domain.ModeParallel:
		return parallelStrategy{}, nil
	case domain.ModeHierarchical:
		return hierarchicalStrategy{}, nil
	case domain.ModePipeline:
		return pipelineStrategy{}, nil
	case domain.ModeConsensus:
		return consensusStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

// runBatch конкурентно выполняет пакет ролей над одним снимком
// контекста и вливает результаты после завершения всего пакета.
//
// Снимок снимается один раз до старта: роли пакета не видят
// результатов друг друга. Результаты возвращаются в порядке ролей.
func runBatch(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor, roles []domain.AgentRole) []*domain.AgentExecutionResult {
	snapshot := state.Snapshot()
	input := state.Input()

	results := make([]*domain.AgentExecutionResult, len(roles))
	var wg sync.WaitGroup

	for i := range roles {
		state.MarkStarted(roles[i].AgentID)

		wg.Add(1)
		go func(i int, role domain.AgentRole) {
			defer wg.Done()
			results[i] = exec.Invoke(ctx, executor.Request{
				TaskID:      task.ID,
				Role:        role,
				Description: task.Description,
				Input:       input,
				Context:     snapshot,
			})
		}(i, roles[i])
	}
	wg.Wait()

	// Единственный писатель: влитие строго после завершения пакета
	for _, result := range results {
		state.StoreResult(result)
	}
	return results
}

// anyCompleted проверяет, есть ли в пакете успешный результат.
func anyCompleted(results []*domain.AgentExecutionResult) bool {
	for _, result := range results {
		if result.Status == domain.NodeStatusCompleted {
			return true
		}
	}
	return false
}

// skipRemaining помечает роли пропущенными с указанием причины.
func skipRemaining(state *WorkflowState, roles []domain.AgentRole, reason string) {
	for i := range roles {
		state.Skip(roles[i].AgentID, reason)
	}
}
