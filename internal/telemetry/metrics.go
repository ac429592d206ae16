package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики и гистограммы оркестрации.
//
// Nil-safe: все методы допускают вызов на nil-получателе и ничего
// не делают. Это позволяет не прокидывать метрики в тестах.
type Metrics struct {
	tasksCreated  *prometheus.CounterVec
	tasksFinished *prometheus.CounterVec
	taskDuration  *prometheus.HistogramVec
	agentCalls    *prometheus.CounterVec
	agentDuration *prometheus.HistogramVec
	runningTasks  prometheus.Gauge
}

// NewMetrics регистрирует метрики в реестре registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		tasksCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_tasks_created_total",
				Help: "Total number of collaboration tasks created",
			},
			[]string{"mode"},
		),
		tasksFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_tasks_finished_total",
				Help: "Total number of collaboration tasks finished",
			},
			[]string{"mode", "status"},
		),
		taskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ensemble_task_duration_seconds",
				Help:    "Collaboration task duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"mode"},
		),
		agentCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ensemble_agent_calls_total",
				Help: "Total number of agent invocations",
			},
			[]string{"status"},
		),
		agentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ensemble_agent_call_duration_seconds",
				Help:    "Agent invocation duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		runningTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ensemble_running_tasks",
				Help: "Number of tasks currently running",
			},
		),
	}
}

// TaskCreated учитывает создание задачи.
func (m *Metrics) TaskCreated(mode string) {
	if m == nil {
		return
	}
	m.tasksCreated.WithLabelValues(mode).Inc()
}

// TaskStarted учитывает начало выполнения задачи.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.runningTasks.Inc()
}

// TaskFinished учитывает завершение задачи.
func (m *Metrics) TaskFinished(mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.tasksFinished.WithLabelValues(mode, status).Inc()
	m.taskDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.runningTasks.Dec()
}

// AgentCall учитывает один вызов агента.
func (m *Metrics) AgentCall(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.agentCalls.WithLabelValues(status).Inc()
	m.agentDuration.WithLabelValues(status).Observe(duration.Seconds())
}
