package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/engine"
	"github.com/shaiso/ensemble/internal/executor"
	"github.com/shaiso/ensemble/internal/telemetry"
)

// Значения конфигурации по умолчанию.
const (
	defaultTaskTimeout = 5 * time.Minute
)

// Orchestrator управляет жизненным циклом задач коллаборации.
//
// Orchestrator — фасад ядра, который:
//   - Создаёт задачи и валидирует наборы ролей (fail-fast)
//   - Выбирает стратегию по режиму и доводит её до конца
//   - Управляет отменой и таймаутом задачи
//   - Отдаёт статус и частичное состояние в любой момент жизни задачи
type Orchestrator struct {
	executor       *executor.AgentExecutor
	defaultTimeout time.Duration

	// Реестр задач — задачи остаются доступными для чтения
	// и после терминального статуса (post-mortem)
	tasks map[uuid.UUID]*taskEntry
	mu    sync.RWMutex

	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// taskEntry — задача и её исполнительное окружение.
type taskEntry struct {
	task   *domain.CollaborationTask
	state  *WorkflowState
	result *domain.WorkflowResult

	cancel    context.CancelFunc
	cancelled bool
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Executor выполняет вызовы агентов. Обязателен.
	Executor *executor.AgentExecutor

	// DefaultTimeout — таймаут задач без явного timeout (default: 5m).
	// Отрицательное значение отключает таймаут по умолчанию.
	DefaultTimeout time.Duration

	// Logger
	Logger *slog.Logger

	// Metrics может быть nil.
	Metrics *telemetry.Metrics
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	timeout := cfg.DefaultTimeout
	if timeout == 0 {
		timeout = defaultTaskTimeout
	}
	if timeout < 0 {
		timeout = 0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		executor:       cfg.Executor,
		defaultTimeout: timeout,
		tasks:          make(map[uuid.UUID]*taskEntry),
		logger:         logger,
		metrics:        cfg.Metrics,
	}
}

// TaskSpec — параметры создания задачи.
type TaskSpec struct {
	Name        string
	Description string
	Mode        domain.Mode
	Priority    domain.Priority
	AgentRoles  []domain.AgentRole

	// Timeout — верхняя граница общего времени выполнения.
	// Ноль означает DefaultTimeout оркестратора.
	Timeout time.Duration
}

// CreateTask создаёт задачу в статусе PENDING.
//
// Валидация fail-fast: дубликаты agent_id, отрицательные веса,
// незарегистрированные агенты, а для HIERARCHICAL — висячие
// зависимости и циклы. При любой ошибке задача не регистрируется.
func (o *Orchestrator) CreateTask(spec TaskSpec) (*domain.CollaborationTask, error) {
	if _, err := strategyForMode(spec.Mode); err != nil {
		return nil, err
	}
	if err := engine.ValidateRoles(spec.AgentRoles); err != nil {
		return nil, err
	}
	if spec.Mode == domain.ModeHierarchical {
		if _, err := engine.BuildLayers(spec.AgentRoles); err != nil {
			return nil, err
		}
	}
	registry := o.executor.Registry()
	for i := range spec.AgentRoles {
		if !registry.Has(spec.AgentRoles[i].AgentID) {
			return nil, fmt.Errorf("%w: %s", ErrAgentNotRegistered, spec.AgentRoles[i].AgentID)
		}
	}

	priority := spec.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = o.defaultTimeout
	}

	roles := make([]domain.AgentRole, len(spec.AgentRoles))
	copy(roles, spec.AgentRoles)

	task := &domain.CollaborationTask{
		ID:          uuid.New(),
		Name:        spec.Name,
		Description: spec.Description,
		Mode:        spec.Mode,
		Priority:    priority,
		Status:      domain.TaskStatusPending,
		AgentRoles:  roles,
		Timeout:     timeout,
		CreatedAt:   time.Now(),
	}

	o.mu.Lock()
	o.tasks[task.ID] = &taskEntry{task: task}
	o.mu.Unlock()

	o.metrics.TaskCreated(string(task.Mode))
	o.logger.Info("task created",
		"task_id", task.ID.String(),
		"mode", string(task.Mode),
		"roles", len(task.AgentRoles))

	return cloneTask(task), nil
}

// ExecuteTask выполняет задачу до терминального статуса.
//
// Переводит PENDING→RUNNING, создаёт свежий WorkflowState, запускает
// стратегию режима и выводит терминальный статус из исхода:
//
//   - отмена (CancelTask или внешний ctx) → CANCELLED
//   - истёк таймаут задачи               → TIMEOUT
//   - ошибка по политике режима          → FAILED
//   - иначе                              → COMPLETED
//
// input — входные данные задачи; непрозрачны для ядра. Повторный
// запуск той же задачи возвращает ErrTaskNotPending.
func (o *Orchestrator) ExecuteTask(ctx context.Context, taskID uuid.UUID, input any) (*domain.WorkflowResult, error) {
	o.mu.Lock()
	entry, ok := o.tasks[taskID]
	if !ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}
	task := entry.task
	if !task.MarkRunning() {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %s is %s", ErrTaskNotPending, taskID, task.Status)
	}

	state := NewWorkflowState(task, input)
	entry.state = state

	runCtx := ctx
	var timeoutCancel context.CancelFunc
	if task.Timeout > 0 {
		runCtx, timeoutCancel = context.WithTimeout(ctx, task.Timeout)
	}
	runCtx, cancel := context.WithCancel(runCtx)
	entry.cancel = cancel
	o.mu.Unlock()

	defer cancel()
	if timeoutCancel != nil {
		defer timeoutCancel()
	}

	logger := telemetry.WithMode(telemetry.WithTaskID(o.logger, task.ID.String()), string(task.Mode))
	logger.Info("task execution started", "roles", len(task.AgentRoles))
	o.metrics.TaskStarted()

	// Режим проверен при создании задачи
	strat, err := strategyForMode(task.Mode)
	if err != nil {
		return nil, err
	}
	runErr := strat.Run(runCtx, task, state, o.executor)

	o.mu.Lock()
	switch {
	case entry.cancelled || errors.Is(ctx.Err(), context.Canceled):
		state.FinalizeUnfinished(domain.ErrorKindTaskCancelled, "task cancelled")
		task.MarkCancelled()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		state.FinalizeUnfinished(domain.ErrorKindTaskTimeout, "task timeout exceeded")
		task.MarkTimedOut()
	case runErr != nil:
		task.MarkFailed()
	default:
		task.MarkCompleted()
	}
	result := buildResult(task, state)
	entry.result = result
	o.mu.Unlock()

	o.metrics.TaskFinished(string(task.Mode), string(task.Status), task.Duration())
	if runErr != nil {
		logger.Warn("task execution finished",
			"status", string(task.Status),
			"duration", task.Duration(),
			"error", runErr)
	} else {
		logger.Info("task execution finished",
			"status", string(task.Status),
			"duration", task.Duration())
	}

	return result, nil
}

// CancelTask запрашивает кооперативную отмену выполняющейся задачи.
//
// Осмысленна только для RUNNING: сигнал доходит до всех ожидающих
// и выполняющихся вызовов агентов, уже готовые результаты сохраняются,
// финальный статус задачи становится CANCELLED.
func (o *Orchestrator) CancelTask(taskID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}
	if entry.task.Status != domain.TaskStatusRunning {
		return fmt.Errorf("%w: %s is %s", ErrTaskNotRunning, taskID, entry.task.Status)
	}

	entry.cancelled = true
	if entry.cancel != nil {
		entry.cancel()
	}

	o.logger.Info("task cancellation requested", "task_id", taskID.String())
	return nil
}

// TaskView — статус задачи и частичное состояние выполнения.
type TaskView struct {
	// Task — копия задачи.
	Task *domain.CollaborationTask

	// NodeResults — копии результатов ролей. Nil до начала выполнения.
	NodeResults map[string]*domain.AgentExecutionResult

	// ContextVariables — копия накопленного контекста.
	ContextVariables map[string]any

	// Log — копия журнала коллаборации.
	Log []domain.LogEntry

	// Consensus — итог консенсуса, если уже вычислен.
	Consensus *domain.ConsensusResult
}

// TaskStatus возвращает статус и частичное состояние задачи.
//
// Чистое чтение: не меняет состояние и доступно в любой момент
// жизни задачи, включая post-mortem после завершения.
func (o *Orchestrator) TaskStatus(taskID uuid.UUID) (*TaskView, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	entry, ok := o.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	view := &TaskView{Task: cloneTask(entry.task)}
	if entry.state != nil {
		view.NodeResults = entry.state.Results()
		view.ContextVariables = entry.state.Snapshot()
		view.Log = entry.state.Log()
		view.Consensus = entry.state.Consensus()
	}
	return view, nil
}

// Stats — агрегированная статистика оркестратора.
type Stats struct {
	TotalTasks   int
	RunningTasks int
	ByStatus     map[domain.TaskStatus]int
	ByMode       map[domain.Mode]int
}

// Stats возвращает статистику по всем зарегистрированным задачам.
func (o *Orchestrator) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	stats := Stats{
		TotalTasks: len(o.tasks),
		ByStatus:   make(map[domain.TaskStatus]int),
		ByMode:     make(map[domain.Mode]int),
	}
	for _, entry := range o.tasks {
		stats.ByStatus[entry.task.Status]++
		stats.ByMode[entry.task.Mode]++
		if entry.task.Status == domain.TaskStatusRunning {
			stats.RunningTasks++
		}
	}
	return stats
}

// CleanupFinishedTasks удаляет из реестра задачи, завершившиеся
// раньше чем maxAge назад. Возвращает количество удалённых.
func (o *Orchestrator) CleanupFinishedTasks(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	o.mu.Lock()
	defer o.mu.Unlock()

	removed := 0
	for id, entry := range o.tasks {
		task := entry.task
		if !task.IsFinished() {
			continue
		}
		if task.CompletedAt != nil && task.CompletedAt.After(cutoff) {
			continue
		}
		delete(o.tasks, id)
		removed++
	}

	if removed > 0 {
		o.logger.Info("finished tasks cleaned up", "removed", removed)
	}
	return removed
}

// buildResult собирает итоговый WorkflowResult из состояния.
func buildResult(task *domain.CollaborationTask, state *WorkflowState) *domain.WorkflowResult {
	return &domain.WorkflowResult{
		TaskID:      task.ID,
		Status:      task.Status,
		Output:      state.Snapshot(),
		NodeResults: state.Results(),
		Consensus:   state.Consensus(),
		Summary:     state.Summary(),
		Log:         state.Log(),
	}
}

// cloneTask возвращает копию задачи с собственным слайсом ролей.
func cloneTask(task *domain.CollaborationTask) *domain.CollaborationTask {
	cp := *task
	cp.AgentRoles = make([]domain.AgentRole, len(task.AgentRoles))
	copy(cp.AgentRoles, task.AgentRoles)
	return &cp
}
