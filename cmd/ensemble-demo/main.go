// Ensemble Demo — прогоняет все пять режимов коллаборации.
//
// Демонстрация ядра оркестрации на встроенных агентах-заглушках:
//   - SEQUENTIAL   — research → analysis → summary
//   - PARALLEL     — независимые обзоры одного документа
//   - HIERARCHICAL — слои по зависимостям ролей
//   - PIPELINE     — передача артефакта по ступеням
//   - CONSENSUS    — взвешенное голосование рецензентов
//
// Экспортирует /healthz и /metrics, периодически убирает
// завершённые задачи из реестра.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/ensemble/internal/config"
	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
	"github.com/shaiso/ensemble/internal/orchestrator"
	"github.com/shaiso/ensemble/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting ensemble-demo")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	registry := executor.NewRegistry()
	registerDemoAgents(registry)

	exec := executor.New(registry, cfg.AgentCallTimeout, logger, metrics)
	orc := orchestrator.New(orchestrator.Config{
		Executor:       exec,
		DefaultTimeout: cfg.DefaultTaskTimeout,
		Logger:         logger,
		Metrics:        metrics,
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Фоновая уборка завершённых задач
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				orc.CleanupFinishedTasks(cfg.CleanupMaxAge)
			}
		}
	}()

	runDemos(ctx, orc, logger)

	stats := orc.Stats()
	logger.Info("demo finished",
		"total_tasks", stats.TotalTasks,
		"completed", stats.ByStatus[domain.TaskStatusCompleted],
		"failed", stats.ByStatus[domain.TaskStatusFailed])

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("ensemble-demo stopped")
}

// runDemos выполняет по одной задаче в каждом режиме.
func runDemos(ctx context.Context, orc *orchestrator.Orchestrator, logger *slog.Logger) {
	demos := []orchestrator.TaskSpec{
		{
			Name:        "market report",
			Description: "prepare a market report on the ensemble project",
			Mode:        domain.ModeSequential,
			AgentRoles: []domain.AgentRole{
				{AgentID: "researcher", RoleName: "researcher"},
				{AgentID: "analyst", RoleName: "analyst"},
				{AgentID: "writer", RoleName: "writer"},
			},
		},
		{
			Name:        "document review",
			Description: "review the draft from independent angles",
			Mode:        domain.ModeParallel,
			AgentRoles: []domain.AgentRole{
				{AgentID: "researcher", RoleName: "fact checker"},
				{AgentID: "analyst", RoleName: "risk reviewer"},
				{AgentID: "critic", RoleName: "style reviewer"},
			},
		},
		{
			Name:        "release plan",
			Description: "plan the next release",
			Mode:        domain.ModeHierarchical,
			AgentRoles: []domain.AgentRole{
				{AgentID: "researcher", RoleName: "requirements"},
				{AgentID: "analyst", RoleName: "estimation", Dependencies: []string{"researcher"}},
				{AgentID: "critic", RoleName: "risk review", Dependencies: []string{"researcher"}},
				{AgentID: "writer", RoleName: "plan document", Dependencies: []string{"analyst", "critic"}},
			},
		},
		{
			Name:        "text refinement",
			Description: "refine the announcement text",
			Mode:        domain.ModePipeline,
			AgentRoles: []domain.AgentRole{
				{AgentID: "writer", RoleName: "draft"},
				{AgentID: "critic", RoleName: "edit"},
				{AgentID: "reviewer", RoleName: "final pass"},
			},
		},
		{
			Name:        "go/no-go decision",
			Description: "decide whether the release ships this week",
			Mode:        domain.ModeConsensus,
			AgentRoles: []domain.AgentRole{
				{AgentID: "analyst", RoleName: "voter", Weight: 2.0},
				{AgentID: "critic", RoleName: "voter", Weight: 1.0},
				{AgentID: "reviewer", RoleName: "voter", Weight: 1.0},
			},
		},
	}

	for _, spec := range demos {
		task, err := orc.CreateTask(spec)
		if err != nil {
			logger.Error("failed to create task", "name", spec.Name, "error", err)
			continue
		}
		result, err := orc.ExecuteTask(ctx, task.ID, spec.Description)
		if err != nil {
			logger.Error("failed to execute task", "name", spec.Name, "error", err)
			continue
		}
		logger.Info("demo task finished",
			"name", spec.Name,
			"mode", string(spec.Mode),
			"status", string(result.Status),
			"successful", len(result.Summary.SuccessfulAgents),
			"failed", len(result.Summary.FailedAgents),
			"skipped", len(result.Summary.SkippedAgents))
		if result.Consensus != nil {
			logger.Info("consensus",
				"name", spec.Name,
				"recommendation", result.Consensus.Recommendation,
				"weighted_confidence", result.Consensus.WeightedConfidence)
		}
	}
}

// registerDemoAgents регистрирует детерминированных агентов-заглушек.
func registerDemoAgents(registry *executor.Registry) {
	stub := func(verb string, confidence float64) executor.CapabilityFunc {
		return func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			input, _ := req.Input.(string)
			content := fmt.Sprintf("%s: %s", verb, strings.TrimSpace(input))
			return &executor.Response{Content: content, Confidence: confidence}, nil
		}
	}

	registry.Register("researcher", stub("research notes", 0.85))
	registry.Register("analyst", stub("analysis", 0.9))
	registry.Register("critic", stub("critique", 0.75))
	registry.Register("writer", stub("draft", 0.8))

	// Рецензент голосует как analyst, чтобы консенсус был содержательным
	registry.Register("reviewer", executor.CapabilityFunc(
		func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			input, _ := req.Input.(string)
			return &executor.Response{
				Content:    fmt.Sprintf("analysis: %s", strings.TrimSpace(input)),
				Confidence: 0.7,
			}, nil
		}))
}
