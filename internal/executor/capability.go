package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/ensemble/internal/domain"
)

// Request — входные данные одного вызова агента.
type Request struct {
	// TaskID — задача, в рамках которой выполняется вызов.
	TaskID uuid.UUID

	// Role — роль агента в задаче.
	Role domain.AgentRole

	// Description — описание работы из задачи.
	Description string

	// Input — входные данные роли. В режиме Pipeline сюда попадает
	// результат предыдущей роли, в остальных режимах — вход задачи.
	Input any

	// Context — снимок накопленных context variables.
	// Копия: изменения агентом не видны другим ролям.
	Context map[string]any
}

// Response — результат успешного вызова агента.
type Response struct {
	// Content — непрозрачный результат.
	Content any

	// Confidence — уверенность агента в результате, в диапазоне [0, 1].
	Confidence float64
}

// Capability — интерфейс, который реализует код агента.
//
// Execute обязан уважать ctx: при отмене или истечении таймаута
// завершиться как можно быстрее. Ошибка означает неуспех вызова;
// для успешного исхода возвращается Response.
type Capability interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// CapabilityFunc — адаптер для использования функции как Capability.
type CapabilityFunc func(ctx context.Context, req Request) (*Response, error)

// Execute реализует интерфейс Capability.
func (f CapabilityFunc) Execute(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Registry — реестр capabilities по agent_id.
//
// Безопасен для конкурентного использования.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

// Register добавляет capability для agent_id.
// Повторная регистрация замещает предыдущую.
func (r *Registry) Register(agentID string, capability Capability) error {
	if capability == nil {
		return fmt.Errorf("%w: %s", ErrNilCapability, agentID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[agentID] = capability
	return nil
}

// Get возвращает capability для agent_id.
func (r *Registry) Get(agentID string) (Capability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	capability, ok := r.capabilities[agentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, agentID)
	}
	return capability, nil
}

// Has проверяет наличие capability для agent_id.
func (r *Registry) Has(agentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.capabilities[agentID]
	return ok
}

// AgentIDs возвращает зарегистрированные agent_id, отсортированные
// по возрастанию.
func (r *Registry) AgentIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.capabilities))
	for id := range r.capabilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
