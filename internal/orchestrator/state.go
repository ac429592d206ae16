package orchestrator

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/ensemble/internal/domain"
)

// WorkflowState — состояние выполнения одной задачи в памяти.
//
// Создаётся когда оркестратор начинает выполнение задачи и живёт
// до её терминального статуса (результаты остаются доступными для
// чтения и после завершения).
//
// Содержит:
//   - Накопленные context variables (ключ — agent_id успешной роли)
//   - Результаты по каждой роли
//   - Журнал коллаборации (append-only)
//   - Итог консенсуса (только в режиме CONSENSUS)
//
// Дисциплина записи: пишет только горутина стратегии, строго после
// того как все вызовы пакета (batch) завершились. Конкурентные роли
// читают неизменяемый снимок, снятый до старта пакета. Мьютекс
// защищает конкурентные чтения через TaskStatus во время выполнения.
type WorkflowState struct {
	taskID uuid.UUID
	input  any

	mu          sync.RWMutex
	contextVars map[string]any
	nodeResults map[string]*domain.AgentExecutionResult
	log         []domain.LogEntry
	consensus   *domain.ConsensusResult
}

// NewWorkflowState создаёт состояние для задачи.
//
// Каждая роль получает результат-заготовку в статусе PENDING.
// Если input — map, его пары засеивают context variables.
func NewWorkflowState(task *domain.CollaborationTask, input any) *WorkflowState {
	results := make(map[string]*domain.AgentExecutionResult, len(task.AgentRoles))
	for i := range task.AgentRoles {
		id := task.AgentRoles[i].AgentID
		results[id] = domain.NewNodeResult(id)
	}

	contextVars := make(map[string]any)
	if seed, ok := input.(map[string]any); ok {
		for k, v := range seed {
			contextVars[k] = v
		}
	}

	return &WorkflowState{
		taskID:      task.ID,
		input:       input,
		contextVars: contextVars,
		nodeResults: results,
	}
}

// Input возвращает входные данные задачи.
func (s *WorkflowState) Input() any {
	return s.input
}

// Snapshot возвращает копию context variables.
// Копия неизменяема для состояния: её можно читать без блокировок.
func (s *WorkflowState) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]any, len(s.contextVars))
	for k, v := range s.contextVars {
		snapshot[k] = v
	}
	return snapshot
}

// MarkStarted помечает роль как выполняющуюся и пишет ROLE_STARTED.
func (s *WorkflowState) MarkStarted(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result, ok := s.nodeResults[agentID]; ok {
		result.MarkRunning()
	}
	s.appendLog(agentID, domain.LogEventRoleStarted, "")
}

// StoreResult вливает результат роли в состояние.
//
// Успешный результат дополнительно публикует Content в context
// variables под ключом agent_id. Событие журнала выбирается
// по статусу результата.
func (s *WorkflowState) StoreResult(result *domain.AgentExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodeResults[result.AgentID] = result

	switch result.Status {
	case domain.NodeStatusCompleted:
		s.contextVars[result.AgentID] = result.Content
		s.appendLog(result.AgentID, domain.LogEventRoleCompleted, "")
	case domain.NodeStatusFailed:
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		s.appendLog(result.AgentID, domain.LogEventRoleFailed, detail)
	case domain.NodeStatusSkipped:
		s.appendLog(result.AgentID, domain.LogEventRoleSkipped, "")
	}
}

// Skip помечает роль пропущенной без вызова агента.
func (s *WorkflowState) Skip(agentID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodeResults[agentID] = domain.NewSkippedResult(agentID)
	s.appendLog(agentID, domain.LogEventRoleSkipped, reason)
}

// FinalizeUnfinished переводит все незавершённые роли в FAILED
// с указанной ошибкой. Вызывается при отмене или таймауте задачи;
// терминальные результаты не трогаются.
func (s *WorkflowState) FinalizeUnfinished(kind domain.ErrorKind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.nodeResults))
	for id := range s.nodeResults {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		result := s.nodeResults[id]
		if result.Status.IsTerminal() {
			continue
		}
		result.MarkFailed(kind, message)
		s.appendLog(id, domain.LogEventRoleFailed, message)
	}
}

// Result возвращает копию результата роли или nil.
func (s *WorkflowState) Result(agentID string) *domain.AgentExecutionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodeResults[agentID].Clone()
}

// Results возвращает копии результатов всех ролей.
func (s *WorkflowState) Results() map[string]*domain.AgentExecutionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string]*domain.AgentExecutionResult, len(s.nodeResults))
	for id, result := range s.nodeResults {
		results[id] = result.Clone()
	}
	return results
}

// Log возвращает копию журнала коллаборации.
func (s *WorkflowState) Log() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := make([]domain.LogEntry, len(s.log))
	copy(log, s.log)
	return log
}

// SetConsensus сохраняет итог взвешенной агрегации.
func (s *WorkflowState) SetConsensus(consensus *domain.ConsensusResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consensus = consensus
}

// Consensus возвращает итог консенсуса или nil.
func (s *WorkflowState) Consensus() *domain.ConsensusResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consensus
}

// CompletedCount возвращает количество успешно завершённых ролей.
func (s *WorkflowState) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, result := range s.nodeResults {
		if result.Status == domain.NodeStatusCompleted {
			count++
		}
	}
	return count
}

// Summary строит сводку по текущим результатам ролей.
func (s *WorkflowState) Summary() domain.WorkflowSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.WorkflowSummary{
		SuccessfulAgents: []string{},
		FailedAgents:     []string{},
		SkippedAgents:    []string{},
	}
	for id, result := range s.nodeResults {
		switch result.Status {
		case domain.NodeStatusCompleted:
			summary.SuccessfulAgents = append(summary.SuccessfulAgents, id)
		case domain.NodeStatusFailed:
			summary.FailedAgents = append(summary.FailedAgents, id)
		case domain.NodeStatusSkipped:
			summary.SkippedAgents = append(summary.SkippedAgents, id)
		}
	}
	sort.Strings(summary.SuccessfulAgents)
	sort.Strings(summary.FailedAgents)
	sort.Strings(summary.SkippedAgents)

	if total := len(s.nodeResults); total > 0 {
		summary.SuccessRate = float64(len(summary.SuccessfulAgents)) / float64(total)
	}
	return summary
}

// appendLog добавляет запись в журнал. Вызывается под s.mu.
func (s *WorkflowState) appendLog(agentID string, event domain.LogEventType, detail string) {
	s.log = append(s.log, domain.LogEntry{
		Time:    time.Now(),
		AgentID: agentID,
		Event:   event,
		Detail:  detail,
	})
}
