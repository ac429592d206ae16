// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики оркестрации
//
// Формат и уровень логирования задаются переменными окружения
// LOG_FORMAT и LOG_LEVEL; метрики экспортируются на /metrics endpoint.
package telemetry
