package domain

import (
	"time"

	"github.com/google/uuid"
)

// CollaborationTask — единица оркестрируемой работы.
//
// Задача создаётся оркестратором в статусе PENDING, выполняется
// один раз и переходит в один из терминальных статусов.
// Терминальные статусы неизменяемы: все Mark*-методы игнорируют
// переходы из финального состояния.
type CollaborationTask struct {
	// ID — уникальный идентификатор задачи, генерируется при создании.
	ID uuid.UUID `json:"id"`

	// Name — имя задачи.
	Name string `json:"name"`

	// Description — описание работы; передаётся агентам как входное задание.
	Description string `json:"description"`

	// Mode — режим коллаборации.
	Mode Mode `json:"mode"`

	// Priority — приоритет (информационный, на порядок выполнения не влияет).
	Priority Priority `json:"priority"`

	// Status — текущий статус задачи.
	Status TaskStatus `json:"status"`

	// AgentRoles — участники задачи. Порядок значим для Sequential/Pipeline.
	AgentRoles []AgentRole `json:"agent_roles"`

	// Timeout — верхняя граница общего времени выполнения.
	// Ноль означает отсутствие таймаута.
	Timeout time.Duration `json:"timeout_seconds,omitempty"`

	// CreatedAt — время создания задачи.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	// Nil, если задача ещё не начиналась.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время перехода в терминальный статус.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если задача не начиналась или не завершена.
func (t *CollaborationTask) Duration() time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если задача завершена.
func (t *CollaborationTask) IsFinished() bool {
	return t.Status.IsTerminal()
}

// Role возвращает роль по agent_id или nil, если роли нет.
func (t *CollaborationTask) Role(agentID string) *AgentRole {
	for i := range t.AgentRoles {
		if t.AgentRoles[i].AgentID == agentID {
			return &t.AgentRoles[i]
		}
	}
	return nil
}

// MarkRunning переводит задачу в статус RUNNING.
// Допустим только из PENDING; иначе переход игнорируется.
func (t *CollaborationTask) MarkRunning() bool {
	if t.Status != TaskStatusPending {
		return false
	}
	now := time.Now()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
	return true
}

// MarkCompleted переводит задачу в статус COMPLETED.
func (t *CollaborationTask) MarkCompleted() bool {
	return t.finish(TaskStatusCompleted)
}

// MarkFailed переводит задачу в статус FAILED.
func (t *CollaborationTask) MarkFailed() bool {
	return t.finish(TaskStatusFailed)
}

// MarkCancelled переводит задачу в статус CANCELLED.
func (t *CollaborationTask) MarkCancelled() bool {
	return t.finish(TaskStatusCancelled)
}

// MarkTimedOut переводит задачу в статус TIMEOUT.
func (t *CollaborationTask) MarkTimedOut() bool {
	return t.finish(TaskStatusTimeout)
}

// finish выполняет переход в терминальный статус из RUNNING.
// Повторный переход из терминального состояния запрещён инвариантом.
func (t *CollaborationTask) finish(status TaskStatus) bool {
	if t.Status.IsTerminal() || t.Status == TaskStatusPending {
		return false
	}
	now := time.Now()
	t.Status = status
	t.CompletedAt = &now
	return true
}
