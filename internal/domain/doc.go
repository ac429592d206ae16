// Package domain содержит модель данных Ensemble.
//
// Включает:
//   - task.go   — CollaborationTask: единица оркестрируемой работы
//   - role.go   — AgentRole: контракт участника внутри задачи
//   - status.go — режимы коллаборации, приоритеты, статусы, виды ошибок
//   - result.go — результаты выполнения ролей и задачи, журнал коллаборации
//
// Domain не зависит от других пакетов системы и не знает,
// что именно вычисляет конкретный агент — Content непрозрачен.
package domain
