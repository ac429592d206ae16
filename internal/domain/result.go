package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeError — типизированная ошибка выполнения роли.
type NodeError struct {
	// Kind — классификация ошибки.
	Kind ErrorKind `json:"kind"`

	// Message — текст ошибки.
	Message string `json:"message"`
}

// Error реализует интерфейс error.
func (e *NodeError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// AgentExecutionResult — результат выполнения одной роли.
type AgentExecutionResult struct {
	// AgentID — идентификатор роли-владельца результата.
	AgentID string `json:"agent_id"`

	// Status — статус выполнения роли.
	Status NodeStatus `json:"status"`

	// Content — непрозрачный результат агента.
	Content any `json:"content,omitempty"`

	// Confidence — уверенность агента в результате, в диапазоне [0, 1].
	Confidence float64 `json:"confidence"`

	// Err — ошибка выполнения, если роль завершилась неуспешно.
	Err *NodeError `json:"error,omitempty"`

	// StartedAt — время начала вызова агента.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время завершения вызова.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewNodeResult создаёт результат роли в статусе PENDING.
func NewNodeResult(agentID string) *AgentExecutionResult {
	return &AgentExecutionResult{
		AgentID: agentID,
		Status:  NodeStatusPending,
	}
}

// NewSkippedResult создаёт результат роли, пропущенной без вызова агента.
func NewSkippedResult(agentID string) *AgentExecutionResult {
	now := time.Now()
	return &AgentExecutionResult{
		AgentID:     agentID,
		Status:      NodeStatusSkipped,
		CompletedAt: &now,
	}
}

// MarkRunning переводит результат в статус RUNNING.
func (r *AgentExecutionResult) MarkRunning() {
	now := time.Now()
	r.Status = NodeStatusRunning
	r.StartedAt = &now
}

// MarkCompleted переводит результат в статус COMPLETED.
// Confidence вне [0, 1] обрезается до границ диапазона.
func (r *AgentExecutionResult) MarkCompleted(content any, confidence float64) {
	now := time.Now()
	r.Status = NodeStatusCompleted
	r.Content = content
	r.Confidence = clampConfidence(confidence)
	r.CompletedAt = &now
}

// MarkFailed переводит результат в статус FAILED с типизированной ошибкой.
func (r *AgentExecutionResult) MarkFailed(kind ErrorKind, message string) {
	now := time.Now()
	r.Status = NodeStatusFailed
	r.Err = &NodeError{Kind: kind, Message: message}
	r.CompletedAt = &now
}

// Duration возвращает продолжительность вызова агента.
func (r *AgentExecutionResult) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}

// Clone возвращает копию результата.
// Content копируется по ссылке: он непрозрачен и не мутируется ядром.
func (r *AgentExecutionResult) Clone() *AgentExecutionResult {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Err != nil {
		errCp := *r.Err
		cp.Err = &errCp
	}
	return &cp
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// LogEventType — тип события в журнале коллаборации.
type LogEventType string

const (
	// LogEventRoleStarted — роль начала выполняться.
	LogEventRoleStarted LogEventType = "ROLE_STARTED"

	// LogEventRoleCompleted — роль успешно завершилась.
	LogEventRoleCompleted LogEventType = "ROLE_COMPLETED"

	// LogEventRoleFailed — роль завершилась с ошибкой.
	LogEventRoleFailed LogEventType = "ROLE_FAILED"

	// LogEventRoleSkipped — роль пропущена без вызова.
	LogEventRoleSkipped LogEventType = "ROLE_SKIPPED"
)

// LogEntry — запись журнала коллаборации (append-only).
type LogEntry struct {
	// Time — момент события.
	Time time.Time `json:"time"`

	// AgentID — роль, к которой относится событие.
	AgentID string `json:"agent_id"`

	// Event — тип события.
	Event LogEventType `json:"event"`

	// Detail — дополнительный текст (например, причина пропуска).
	Detail string `json:"detail,omitempty"`
}

// ConsensusResult — итог взвешенной агрегации режима Consensus.
type ConsensusResult struct {
	// Recommendation — выигравшее значение Content.
	Recommendation any `json:"recommendation"`

	// WeightedConfidence — Σ(weight·confidence) / Σ(weight)
	// по успешно завершившимся ролям.
	WeightedConfidence float64 `json:"weighted_confidence"`

	// Scores — суммарный балл weight·confidence по каждому
	// различному значению Content (ключ — каноническое представление).
	Scores map[string]float64 `json:"scores"`

	// TotalWeight — суммарный вес успешных ролей.
	TotalWeight float64 `json:"total_weight"`

	// Participants — количество успешных ролей, участвовавших в решении.
	Participants int `json:"participants"`
}

// WorkflowSummary — сводка по итогам выполнения задачи.
type WorkflowSummary struct {
	// SuccessfulAgents — роли, завершившиеся успешно (отсортированы).
	SuccessfulAgents []string `json:"successful_agents"`

	// FailedAgents — роли, завершившиеся с ошибкой (отсортированы).
	FailedAgents []string `json:"failed_agents"`

	// SkippedAgents — роли, пропущенные без вызова (отсортированы).
	SkippedAgents []string `json:"skipped_agents"`

	// SuccessRate — доля успешных ролей от общего числа.
	SuccessRate float64 `json:"success_rate"`
}

// WorkflowResult — агрегированный результат выполнения задачи.
type WorkflowResult struct {
	// TaskID — идентификатор задачи.
	TaskID uuid.UUID `json:"task_id"`

	// Status — статус задачи на момент построения результата.
	Status TaskStatus `json:"status"`

	// Output — накопленные context_variables (слитый контекст).
	Output map[string]any `json:"output"`

	// NodeResults — результаты по каждой роли (agent_id → результат).
	NodeResults map[string]*AgentExecutionResult `json:"node_results"`

	// Consensus — итог консенсуса. Заполняется только в режиме CONSENSUS.
	Consensus *ConsensusResult `json:"consensus,omitempty"`

	// Summary — сводка успешных/упавших/пропущенных ролей.
	Summary WorkflowSummary `json:"summary"`

	// Log — журнал коллаборации в порядке появления событий.
	Log []LogEntry `json:"log"`
}
