package orchestrator

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/ensemble/internal/domain"
	"github.com/shaiso/ensemble/internal/executor"
)

func newTestOrchestrator(t *testing.T, agents map[string]executor.CapabilityFunc) *Orchestrator {
	t.Helper()
	registry := executor.NewRegistry()
	for id, fn := range agents {
		if err := registry.Register(id, fn); err != nil {
			t.Fatalf("Register(%s) failed: %v", id, err)
		}
	}
	exec := executor.New(registry, time.Second, nil, nil)
	return New(Config{Executor: exec, DefaultTimeout: 10 * time.Second})
}

func okAgent(content any, confidence float64) executor.CapabilityFunc {
	return func(ctx context.Context, req executor.Request) (*executor.Response, error) {
		return &executor.Response{Content: content, Confidence: confidence}, nil
	}
}

func failAgent(message string) executor.CapabilityFunc {
	return func(ctx context.Context, req executor.Request) (*executor.Response, error) {
		return nil, errors.New(message)
	}
}

func mustCreate(t *testing.T, orc *Orchestrator, spec TaskSpec) *domain.CollaborationTask {
	t.Helper()
	task, err := orc.CreateTask(spec)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return task
}

func mustExecute(t *testing.T, orc *Orchestrator, task *domain.CollaborationTask, input any) *domain.WorkflowResult {
	t.Helper()
	result, err := orc.ExecuteTask(context.Background(), task.ID, input)
	if err != nil {
		t.Fatalf("ExecuteTask failed: %v", err)
	}
	return result
}

func TestSequential_ContextAccumulation(t *testing.T) {
	var sawByB, sawByC map[string]any

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("alpha", 0.9),
		"b": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			sawByB = req.Context
			return &executor.Response{Content: "beta", Confidence: 0.8}, nil
		},
		"c": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			sawByC = req.Context
			return &executor.Response{Content: "gamma", Confidence: 0.7}, nil
		},
	})
	task := mustCreate(t, orc, TaskSpec{
		Name: "chain",
		Mode: domain.ModeSequential,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if sawByB["a"] != "alpha" {
		t.Errorf("b saw context %v, want a=alpha", sawByB)
	}
	if sawByC["a"] != "alpha" || sawByC["b"] != "beta" {
		t.Errorf("c saw context %v, want a=alpha and b=beta", sawByC)
	}
	if result.Output["c"] != "gamma" {
		t.Errorf("output = %v, want c=gamma", result.Output)
	}
}

func TestSequential_FailureSkipsRemaining(t *testing.T) {
	var cCalls atomic.Int32

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("alpha", 0.9),
		"b": failAgent("b exploded"),
		"c": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			cCalls.Add(1)
			return &executor.Response{Content: "gamma"}, nil
		},
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeSequential,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
	if got := result.NodeResults["a"].Status; got != domain.NodeStatusCompleted {
		t.Errorf("a = %s, want COMPLETED", got)
	}
	if got := result.NodeResults["b"].Status; got != domain.NodeStatusFailed {
		t.Errorf("b = %s, want FAILED", got)
	}
	if got := result.NodeResults["c"].Status; got != domain.NodeStatusSkipped {
		t.Errorf("c = %s, want SKIPPED", got)
	}
	if cCalls.Load() != 0 {
		t.Errorf("c was invoked %d times, want 0", cCalls.Load())
	}
	if kind := result.NodeResults["b"].Err.Kind; kind != domain.ErrorKindAgentExecution {
		t.Errorf("b error kind = %s, want AGENT_EXECUTION", kind)
	}
}

func TestParallel_LenientPolicy(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent(1, 0.9),
		"b": failAgent("b exploded"),
		"c": okAgent(3, 0.7),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeParallel,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED with one failure", result.Status)
	}
	if got := result.NodeResults["b"].Status; got != domain.NodeStatusFailed {
		t.Errorf("b = %s, want FAILED", got)
	}
	if len(result.Summary.SuccessfulAgents) != 2 || len(result.Summary.FailedAgents) != 1 {
		t.Errorf("summary = %+v, want 2 successful, 1 failed", result.Summary)
	}
	if rate := result.Summary.SuccessRate; math.Abs(rate-2.0/3.0) > 1e-9 {
		t.Errorf("success rate = %v, want 2/3", rate)
	}
}

func TestParallel_AllFailed(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": failAgent("a exploded"),
		"b": failAgent("b exploded"),
		"c": failAgent("c exploded"),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeParallel,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
}

func TestParallel_SnapshotIsolation(t *testing.T) {
	contexts := make([]map[string]any, 2)

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			contexts[0] = req.Context
			return &executor.Response{Content: "alpha"}, nil
		},
		"b": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			contexts[1] = req.Context
			return &executor.Response{Content: "beta"}, nil
		},
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode:       domain.ModeParallel,
		AgentRoles: []domain.AgentRole{{AgentID: "a"}, {AgentID: "b"}},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	// Снимок снят до старта пакета: роли не видят друг друга
	for i, saw := range contexts {
		if len(saw) != 0 {
			t.Errorf("role %d saw context %v, want empty snapshot", i, saw)
		}
	}
	if result.Output["a"] != "alpha" || result.Output["b"] != "beta" {
		t.Errorf("output = %v, want both results merged", result.Output)
	}
}

func TestHierarchical_SkipsDependentsOnly(t *testing.T) {
	var invoked atomic.Int32

	counting := func(content any) executor.CapabilityFunc {
		return func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			invoked.Add(1)
			return &executor.Response{Content: content, Confidence: 0.9}, nil
		}
	}

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"d": failAgent("d exploded"),
		"e": counting("e-out"),
		"f": counting("f-out"),
		"x": counting("x-out"),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeHierarchical,
		AgentRoles: []domain.AgentRole{
			{AgentID: "d"},
			{AgentID: "e", Dependencies: []string{"d"}},
			{AgentID: "f", Dependencies: []string{"d"}},
			{AgentID: "x"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	// Независимая ветвь x выполнилась, значит задача успешна
	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if got := result.NodeResults["e"].Status; got != domain.NodeStatusSkipped {
		t.Errorf("e = %s, want SKIPPED", got)
	}
	if got := result.NodeResults["f"].Status; got != domain.NodeStatusSkipped {
		t.Errorf("f = %s, want SKIPPED", got)
	}
	if got := result.NodeResults["x"].Status; got != domain.NodeStatusCompleted {
		t.Errorf("x = %s, want COMPLETED", got)
	}
	if invoked.Load() != 1 {
		t.Errorf("invoked %d agents besides d, want only x", invoked.Load())
	}
}

func TestHierarchical_LayerContextVisible(t *testing.T) {
	var sawByE map[string]any

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"d": okAgent("d-out", 0.9),
		"e": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			sawByE = req.Context
			return &executor.Response{Content: "e-out"}, nil
		},
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeHierarchical,
		AgentRoles: []domain.AgentRole{
			{AgentID: "d"},
			{AgentID: "e", Dependencies: []string{"d"}},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if sawByE["d"] != "d-out" {
		t.Errorf("e saw context %v, want d=d-out from earlier layer", sawByE)
	}
}

func TestPipeline_PassesArtifactForward(t *testing.T) {
	var inputSeenByB, inputSeenByC any
	var contextSeenByB map[string]any

	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("stage-a", 0.9),
		"b": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			inputSeenByB = req.Input
			contextSeenByB = req.Context
			return &executor.Response{Content: "stage-b"}, nil
		},
		"c": func(ctx context.Context, req executor.Request) (*executor.Response, error) {
			inputSeenByC = req.Input
			return &executor.Response{Content: "stage-c"}, nil
		},
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModePipeline,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, "raw-input")

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if inputSeenByB != "stage-a" {
		t.Errorf("b input = %v, want stage-a", inputSeenByB)
	}
	if inputSeenByC != "stage-b" {
		t.Errorf("c input = %v, want stage-b", inputSeenByC)
	}
	if contextSeenByB != nil {
		t.Errorf("b context = %v, want nil past stage 0", contextSeenByB)
	}
}

func TestPipeline_FailureHaltsPipeline(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("stage-a", 0.9),
		"b": failAgent("stage b exploded"),
		"c": okAgent("stage-c", 0.9),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModePipeline,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, {AgentID: "b"}, {AgentID: "c"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
	if got := result.NodeResults["c"].Status; got != domain.NodeStatusSkipped {
		t.Errorf("c = %s, want SKIPPED", got)
	}
}

func TestConsensus_WeightedConfidence(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("approve", 0.6),
		"b": okAgent("approve", 0.9),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeConsensus,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a", Weight: 1.0},
			{AgentID: "b", Weight: 2.0},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	if result.Consensus == nil {
		t.Fatal("expected consensus result")
	}
	// (1.0*0.6 + 2.0*0.9) / 3.0 = 0.8
	if got := result.Consensus.WeightedConfidence; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("weighted confidence = %v, want 0.8", got)
	}
	if result.Consensus.Recommendation != "approve" {
		t.Errorf("recommendation = %v, want approve", result.Consensus.Recommendation)
	}
	if result.Consensus.Participants != 2 {
		t.Errorf("participants = %d, want 2", result.Consensus.Participants)
	}
}

func TestConsensus_MajorityWins(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("X", 0.7),
		"b": okAgent("X", 0.8),
		"c": okAgent("Y", 0.9),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeConsensus,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a", Weight: 1.0},
			{AgentID: "b", Weight: 1.0},
			{AgentID: "c", Weight: 1.0},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Consensus == nil {
		t.Fatal("expected consensus result")
	}
	// X: 0.7+0.8 = 1.5, Y: 0.9
	if result.Consensus.Recommendation != "X" {
		t.Errorf("recommendation = %v, want X", result.Consensus.Recommendation)
	}
	if got := result.Consensus.Scores[contentKey("X")]; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("score for X = %v, want 1.5", got)
	}
}

func TestConsensus_DeterministicTieBreak(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"b": okAgent("second", 0.5),
		"a": okAgent("first", 0.5),
	})
	roles := []domain.AgentRole{
		{AgentID: "b", Weight: 1.0},
		{AgentID: "a", Weight: 1.0},
	}

	for i := 0; i < 5; i++ {
		task := mustCreate(t, orc, TaskSpec{
			Mode:       domain.ModeConsensus,
			AgentRoles: roles,
		})
		result := mustExecute(t, orc, task, nil)
		// Равный балл: побеждает группа с наименьшим agent_id
		if result.Consensus.Recommendation != "first" {
			t.Fatalf("recommendation = %v, want first", result.Consensus.Recommendation)
		}
	}
}

func TestConsensus_DefaultWeight(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": okAgent("X", 0.5),
		"b": okAgent("X", 0.5),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode: domain.ModeConsensus,
		AgentRoles: []domain.AgentRole{
			{AgentID: "a"}, // вес не задан → 1.0
			{AgentID: "b"},
		},
	})

	result := mustExecute(t, orc, task, nil)

	if got := result.Consensus.TotalWeight; math.Abs(got-2.0) > 1e-9 {
		t.Errorf("total weight = %v, want 2.0", got)
	}
}

func TestConsensus_AllFailed(t *testing.T) {
	orc := newTestOrchestrator(t, map[string]executor.CapabilityFunc{
		"a": failAgent("a exploded"),
		"b": failAgent("b exploded"),
	})
	task := mustCreate(t, orc, TaskSpec{
		Mode:       domain.ModeConsensus,
		AgentRoles: []domain.AgentRole{{AgentID: "a"}, {AgentID: "b"}},
	})

	result := mustExecute(t, orc, task, nil)

	if result.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
	if result.Consensus != nil {
		t.Errorf("consensus = %+v, want nil when every role failed", result.Consensus)
	}
}
