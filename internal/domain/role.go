package domain

// DefaultWeight — вес роли по умолчанию для консенсуса.
const DefaultWeight = 1.0

// AgentRole — контракт участника внутри задачи.
//
// Порядок ролей в CollaborationTask.AgentRoles семантически значим
// для режимов Sequential и Pipeline.
type AgentRole struct {
	// AgentID — идентификатор агента, уникальный в пределах набора ролей задачи.
	AgentID string `json:"agent_id"`

	// RoleName — человекочитаемое имя роли.
	RoleName string `json:"role_name"`

	// Responsibilities — описание обязанностей (только документация).
	Responsibilities []string `json:"responsibilities,omitempty"`

	// Dependencies — agent_id ролей, которые должны завершиться
	// до старта этой роли. Используется только режимом Hierarchical.
	// Каждый id обязан существовать в том же наборе ролей;
	// роль не может зависеть от самой себя.
	Dependencies []string `json:"dependencies,omitempty"`

	// Weight — вес в консенсусном решении. Положительное число.
	// Нулевое значение означает «не задан» и трактуется как DefaultWeight;
	// отрицательное отклоняется валидацией.
	Weight float64 `json:"weight,omitempty"`
}

// EffectiveWeight возвращает вес роли с учётом значения по умолчанию.
func (r *AgentRole) EffectiveWeight() float64 {
	if r.Weight > 0 {
		return r.Weight
	}
	return DefaultWeight
}
