// Package orchestrator выполняет задачи коллаборации агентов.
//
// # Обзор
//
// Orchestrator — фасад ядра. Он создаёт задачи, валидирует наборы
// ролей, выбирает стратегию по режиму коллаборации и доводит
// выполнение до терминального статуса. Вызовы агентов делегируются
// пакету executor, разрешение зависимостей — пакету engine.
//
// # Ключевые компоненты
//
// ## Orchestrator
//
// Управляет реестром задач и их жизненным циклом:
//
//	orc := orchestrator.New(orchestrator.Config{
//	    Executor: exec,
//	    Logger:   logger,
//	})
//
//	task, err := orc.CreateTask(orchestrator.TaskSpec{
//	    Name:       "quarterly report",
//	    Mode:       domain.ModeSequential,
//	    AgentRoles: roles,
//	})
//	if err != nil {
//	    return err
//	}
//
//	result, err := orc.ExecuteTask(ctx, task.ID, input)
//
// ## WorkflowState
//
// Состояние одной задачи: накопленный контекст, результаты ролей,
// журнал коллаборации. Пишет только горутина стратегии, строго
// после завершения пакета вызовов; конкурентные роли получают
// неизменяемые снимки.
//
// ## Стратегии
//
// По одной на режим, за общим интерфейсом:
//
//   - sequential.go   — строгая цепочка, обрыв на первой ошибке
//   - parallel.go     — все роли конкурентно над одним снимком
//   - hierarchical.go — слои по зависимостям, пропуск зависимых
//   - pipeline.go     — вперёд передаётся только артефакт
//   - consensus.go    — параллельный запуск и взвешенная агрегация
//
// # Политика ошибок
//
// Ошибки отдельных ролей фиксируются в node results и не валят
// задачу, кроме случаев политики режима: Sequential и Pipeline
// обрываются на первой ошибке (задача FAILED), остальные режимы
// становятся FAILED только когда упали все выполнявшиеся роли.
//
// Отмена и таймаут распространяются через контекст на все ожидающие
// и выполняющиеся вызовы; готовые результаты сохраняются и остаются
// доступными через TaskStatus после завершения.
package orchestrator
