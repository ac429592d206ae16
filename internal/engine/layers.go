package engine

import (
	"sort"

	"github.com/shaiso/ensemble/internal/domain"
)

// BuildLayers строит послойный порядок выполнения ролей (алгоритм Кана).
//
// Каждый слой — набор agent_id, все зависимости которых лежат строго
// в более ранних слоях. Каждая роль попадает ровно в один слой;
// объединение слоёв равно полному набору ролей. Внутри слоя id
// отсортированы по возрастанию для детерминизма.
//
// Возвращает *UnknownDependencyError, если зависимость ссылается
// на agent_id вне набора, и *CyclicDependencyError (с перечислением
// участников), если часть ролей невозможно разместить. Частичная
// раскладка никогда не возвращается.
func BuildLayers(roles []domain.AgentRole) ([][]string, error) {
	ids := make(map[string]bool, len(roles))
	for i := range roles {
		ids[roles[i].AgentID] = true
	}

	// inDegree и обратные рёбра (agent_id → зависимые от него)
	inDegree := make(map[string]int, len(roles))
	dependents := make(map[string][]string, len(roles))

	for i := range roles {
		role := &roles[i]
		inDegree[role.AgentID] += 0

		for _, dep := range role.Dependencies {
			if !ids[dep] {
				return nil, &UnknownDependencyError{AgentID: role.AgentID, Dependency: dep}
			}
			inDegree[role.AgentID]++
			dependents[dep] = append(dependents[dep], role.AgentID)
		}
	}

	// Волновой обход: слой за слоем снимаем роли с inDegree = 0
	current := make([]string, 0, len(roles))
	for id, deg := range inDegree {
		if deg == 0 {
			current = append(current, id)
		}
	}

	layers := make([][]string, 0)
	placed := 0

	for len(current) > 0 {
		sort.Strings(current)
		layers = append(layers, current)
		placed += len(current)

		var next []string
		for _, id := range current {
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	// Если не все роли размещены — есть цикл
	if placed != len(roles) {
		remaining := make([]string, 0, len(roles)-placed)
		for id, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, id)
			}
		}
		return nil, newCyclicDependencyError(remaining)
	}

	return layers, nil
}

// TransitiveDependents возвращает прямых и транзитивных зависимых
// роли agentID, отсортированных по возрастанию.
//
// Используется режимом Hierarchical: при падении роли пропускаются
// только её зависимые, независимые ветви продолжают выполняться.
func TransitiveDependents(roles []domain.AgentRole, agentID string) []string {
	dependents := make(map[string][]string, len(roles))
	for i := range roles {
		role := &roles[i]
		for _, dep := range role.Dependencies {
			dependents[dep] = append(dependents[dep], role.AgentID)
		}
	}

	visited := make(map[string]bool)
	queue := append([]string(nil), dependents[agentID]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		queue = append(queue, dependents[id]...)
	}

	result := make([]string, 0, len(visited))
	for id := range visited {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
