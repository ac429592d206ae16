// Package executor вызывает внешних агентов и нормализует исход вызова.
//
// # Обзор
//
// Executor — прослойка между стратегиями оркестрации и кодом агентов.
// Стратегии не знают, чем реализован агент; агенты не знают, в каком
// режиме коллаборации их вызвали.
//
// # Ключевые компоненты
//
// ## Capability
//
// Интерфейс, который реализует код агента:
//
//	type Capability interface {
//	    Execute(ctx context.Context, req Request) (*Response, error)
//	}
//
// Для простых агентов есть адаптер CapabilityFunc.
//
// ## Registry
//
// Реестр capabilities по agent_id. Оркестратор проверяет наличие
// агента в реестре при создании задачи.
//
// ## AgentExecutor
//
// Выполняет один вызов агента: ставит таймаут, ловит панику,
// классифицирует ошибку и возвращает готовый AgentExecutionResult.
// Invoke никогда не возвращает error — любой исход выражается
// статусом и типизированной ошибкой результата.
//
// # Классификация ошибок
//
//   - агент вернул error            → AGENT_EXECUTION
//   - истёк таймаут вызова          → AGENT_TIMEOUT
//   - истёк общий таймаут задачи    → TASK_TIMEOUT
//   - задача отменена               → TASK_CANCELLED
//
// Агент обязан уважать ctx, но executor не полагается на это:
// при истечении контекста результат фиксируется сразу, а зависший
// вызов доживает в фоне и его исход отбрасывается.
package executor
