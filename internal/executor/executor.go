package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/telemetry"
)

// AgentExecutor выполняет одиночные вызовы агентов.
//
// Каждый вызов получает собственный таймаут (если задан) поверх
// контекста задачи. Исход вызова всегда выражается результатом:
// Invoke не возвращает error.
type AgentExecutor struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// New создаёт executor.
//
// timeout — верхняя граница одного вызова агента; ноль отключает
// индивидуальный таймаут, остаётся только контекст задачи.
// metrics может быть nil.
func New(registry *Registry, timeout time.Duration, logger *slog.Logger, metrics *telemetry.Metrics) *AgentExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentExecutor{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Registry возвращает реестр capabilities executor'а.
func (e *AgentExecutor) Registry() *Registry {
	return e.registry
}

type invokeOutcome struct {
	resp *Response
	err  error
}

// Invoke выполняет один вызов агента и возвращает готовый результат.
//
// Возможные статусы результата: COMPLETED либо FAILED с типизированной
// ошибкой. Если контекст истекает раньше агента, результат фиксируется
// сразу; некооперативный вызов доживает в фоновой горутине, и его
// исход отбрасывается.
func (e *AgentExecutor) Invoke(ctx context.Context, req Request) *domain.AgentExecutionResult {
	logger := telemetry.WithAgentID(telemetry.WithTaskID(e.logger, req.TaskID.String()), req.Role.AgentID)

	result := domain.NewNodeResult(req.Role.AgentID)
	result.MarkRunning()

	capability, err := e.registry.Get(req.Role.AgentID)
	if err != nil {
		result.MarkFailed(domain.ErrorKindAgentExecution, err.Error())
		logger.Error("agent not registered", "error", err)
		e.observe(result)
		return result
	}

	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	logger.Debug("agent call started", "role", req.Role.RoleName)

	// Буфер на 1: горутина не блокируется, если исход уже не нужен
	outcome := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- invokeOutcome{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		resp, err := capability.Execute(callCtx, req)
		outcome <- invokeOutcome{resp: resp, err: err}
	}()

	select {
	case out := <-outcome:
		if out.err != nil {
			kind, message := e.classify(ctx, callCtx, out.err)
			result.MarkFailed(kind, message)
			logger.Warn("agent call failed", "kind", string(kind), "error", out.err)
			break
		}
		if out.resp == nil {
			result.MarkFailed(domain.ErrorKindAgentExecution, "agent returned no response")
			logger.Warn("agent call failed", "kind", string(domain.ErrorKindAgentExecution),
				"error", "nil response")
			break
		}
		result.MarkCompleted(out.resp.Content, out.resp.Confidence)
		logger.Debug("agent call completed",
			"confidence", result.Confidence, "duration", result.Duration())

	case <-callCtx.Done():
		kind, message := e.classify(ctx, callCtx, callCtx.Err())
		result.MarkFailed(kind, message)
		logger.Warn("agent call aborted", "kind", string(kind), "error", callCtx.Err())
	}

	e.observe(result)
	return result
}

// classify сопоставляет ошибку вызова с ErrorKind.
//
// Порядок проверок важен: состояние контекста задачи имеет приоритет
// над индивидуальным таймаутом вызова и над текстом ошибки агента.
func (e *AgentExecutor) classify(taskCtx, callCtx context.Context, err error) (domain.ErrorKind, string) {
	switch {
	case errors.Is(taskCtx.Err(), context.Canceled):
		return domain.ErrorKindTaskCancelled, "task cancelled"
	case errors.Is(taskCtx.Err(), context.DeadlineExceeded):
		return domain.ErrorKindTaskTimeout, "task timeout exceeded"
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return domain.ErrorKindAgentTimeout,
			fmt.Sprintf("agent call exceeded timeout %s", e.timeout)
	default:
		return domain.ErrorKindAgentExecution, err.Error()
	}
}

func (e *AgentExecutor) observe(result *domain.AgentExecutionResult) {
	e.metrics.AgentCall(string(result.Status), result.Duration())
}
