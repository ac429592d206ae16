package domain

// Mode — режим коллаборации агентов внутри задачи.
type Mode string

const (
	// ModeSequential — роли выполняются строго по порядку списка,
	// каждая видит контекст, накопленный предыдущими.
	ModeSequential Mode = "SEQUENTIAL"

	// ModeParallel — все роли выполняются одновременно
	// над одним снимком контекста.
	ModeParallel Mode = "PARALLEL"

	// ModeHierarchical — роли выполняются слоями по зависимостям.
	ModeHierarchical Mode = "HIERARCHICAL"

	// ModePipeline — как Sequential, но вперёд передаётся только
	// результат предыдущей роли, а не накопленный контекст.
	ModePipeline Mode = "PIPELINE"

	// ModeConsensus — параллельное выполнение с последующей
	// взвешенной агрегацией в одно решение.
	ModeConsensus Mode = "CONSENSUS"
)

// Priority — приоритет задачи.
//
// Информационное поле: внутри ядра не влияет на порядок выполнения.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// TaskStatus — статус выполнения задачи.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	                  ↘ CANCELLED
//	                  ↘ TIMEOUT
//
// Терминальные статусы неизменяемы; возврата в PENDING или RUNNING нет.
type TaskStatus string

const (
	// TaskStatusPending — задача создана, но ещё не начала выполняться.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusRunning — задача в процессе выполнения.
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusCompleted — задача успешно завершена.
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusFailed — задача завершилась с ошибкой.
	TaskStatusFailed TaskStatus = "FAILED"

	// TaskStatusCancelled — задача отменена вызывающей стороной.
	TaskStatusCancelled TaskStatus = "CANCELLED"

	// TaskStatusTimeout — задача превысила общий таймаут.
	TaskStatusTimeout TaskStatus = "TIMEOUT"
)

// IsTerminal возвращает true, если статус финальный (задача завершена).
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled, TaskStatusTimeout:
		return true
	default:
		return false
	}
}

// NodeStatus — статус выполнения отдельной роли внутри задачи.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	        ↘ SKIPPED (без запуска — предыдущая роль или зависимость упала)
type NodeStatus string

const (
	// NodeStatusPending — роль ещё не запускалась.
	NodeStatusPending NodeStatus = "PENDING"

	// NodeStatusRunning — роль выполняется.
	NodeStatusRunning NodeStatus = "RUNNING"

	// NodeStatusCompleted — роль успешно завершена.
	NodeStatusCompleted NodeStatus = "COMPLETED"

	// NodeStatusFailed — роль завершилась с ошибкой.
	NodeStatusFailed NodeStatus = "FAILED"

	// NodeStatusSkipped — роль пропущена без вызова агента.
	NodeStatusSkipped NodeStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус роли финальный.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusCompleted, NodeStatusFailed, NodeStatusSkipped:
		return true
	default:
		return false
	}
}

// ErrorKind — классификация ошибки выполнения роли.
//
// Виды ошибок создания задачи (валидация ролей, циклы зависимостей)
// выражаются типизированными ошибками пакета engine и не попадают
// в результаты ролей.
type ErrorKind string

const (
	// ErrorKindAgentExecution — внешний агент вернул ошибку.
	ErrorKindAgentExecution ErrorKind = "AGENT_EXECUTION"

	// ErrorKindAgentTimeout — отдельный вызов агента превысил таймаут.
	ErrorKindAgentTimeout ErrorKind = "AGENT_TIMEOUT"

	// ErrorKindTaskTimeout — истёк общий таймаут задачи.
	ErrorKindTaskTimeout ErrorKind = "TASK_TIMEOUT"

	// ErrorKindTaskCancelled — задача отменена кооперативно.
	ErrorKindTaskCancelled ErrorKind = "TASK_CANCELLED"
)
