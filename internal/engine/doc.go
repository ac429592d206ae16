// Package engine разрешает зависимости между ролями задачи.
//
// Включает:
//   - validate.go — валидация набора ролей (дубликаты, веса, зависимости)
//   - layers.go   — послойная топологическая сортировка (алгоритм Кана)
//                   и вычисление транзитивных зависимых ролей
//
// Engine отвечает за понимание структуры зависимостей и определение
// порядка выполнения слоёв в режиме Hierarchical.
package engine
