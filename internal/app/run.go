package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
	"github.com/specialistvlad/incomegrid/internal/executor"
	"github.com/specialistvlad/incomegrid/internal/metrics"
)

// Run builds the graph and executes it once. Metrics are written to the
// configured file whether or not the run succeeds.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, logger := ctxlog.With(ctx, "run_id", uuid.New().String())
	logger.Debug("App.Run method started.")

	runMetrics := metrics.NewRun()
	runErr := a.execute(ctx, runMetrics)

	elapsed := time.Since(start)
	runMetrics.Finish(elapsed, runErr, time.Now())
	if a.cfg.MetricsFile != "" {
		if err := runMetrics.WriteFile(a.cfg.MetricsFile); err != nil {
			runErr = errors.Join(runErr, err)
		} else {
			logger.Debug("Metrics written.", "path", a.cfg.MetricsFile)
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("🏁 Execution finished.", "duration", elapsed.Round(time.Millisecond))
	return nil
}

// execute builds the graph and runs it, reporting node outcomes to rec.
func (a *App) execute(ctx context.Context, rec executor.Recorder) error {
	logger := ctxlog.FromContext(ctx)

	graph, err := dag.Build(ctx, a.model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))
	logger.Debug("Handlers registered.", "runners", handlerNames(a.registry.HandlerRegistry), "assets", handlerNames(a.registry.AssetHandlerRegistry))

	if len(graph.Nodes) == 0 {
		logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	logger.Info("🚀 Starting concurrent execution...", "workers", a.cfg.WorkerCount)
	exec := executor.New(graph, a.cfg.WorkerCount, a.registry, a.converter, executor.WithRecorder(rec))
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

func handlerNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
