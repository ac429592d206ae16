package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

// consensusStrategy — режим CONSENSUS.
//
// Семантика Parallel (все роли над одним входом), затем взвешенная
// агрегация по успешным ролям:
//
//	weighted_confidence = Σ(weight·confidence) / Σ(weight)
//
// Побеждает различное значение Content с наибольшим суммарным баллом
// weight·confidence. Ничья разрешается детерминированно: выигрывает
// группа с лексикографически наименьшим agent_id среди внёсших вклад.
// Задача FAILED только если упали все роли.
type consensusStrategy struct{}

// contentGroup — накопленный балл одного различного значения Content.
type contentGroup struct {
	content  any
	score    float64
	minAgent string
}

func (consensusStrategy) Run(ctx context.Context, task *domain.CollaborationTask, state *WorkflowState, exec *executor.AgentExecutor) error {
	results := runBatch(ctx, task, state, exec, task.AgentRoles)

	if err := ctx.Err(); err != nil {
		return err
	}
	if !anyCompleted(results) {
		return ErrAllRolesFailed
	}

	groups := make(map[string]*contentGroup)
	var totalWeight, weightedSum float64
	participants := 0

	for _, result := range results {
		if result.Status != domain.NodeStatusCompleted {
			continue
		}
		role := task.Role(result.AgentID)
		weight := role.EffectiveWeight()

		totalWeight += weight
		weightedSum += weight * result.Confidence
		participants++

		key := contentKey(result.Content)
		group, ok := groups[key]
		if !ok {
			group = &contentGroup{content: result.Content, minAgent: result.AgentID}
			groups[key] = group
		}
		group.score += weight * result.Confidence
		if result.AgentID < group.minAgent {
			group.minAgent = result.AgentID
		}
	}

	var winner *contentGroup
	scores := make(map[string]float64, len(groups))
	for key, group := range groups {
		scores[key] = group.score
		if winner == nil ||
			group.score > winner.score ||
			(group.score == winner.score && group.minAgent < winner.minAgent) {
			winner = group
		}
	}

	state.SetConsensus(&domain.ConsensusResult{
		Recommendation:     winner.content,
		WeightedConfidence: weightedSum / totalWeight,
		Scores:             scores,
		TotalWeight:        totalWeight,
		Participants:       participants,
	})
	return nil
}

// contentKey возвращает каноническое представление Content для
// группировки. Несериализуемые значения сводятся через fmt.
func contentKey(content any) string {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(data)
}
