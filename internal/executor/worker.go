package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.ID)

		if err := ctx.Err(); err != nil {
			workerLogger.Warn("Context canceled, skipping node execution.")
			if n.MarkFailed(fmt.Errorf("%w: %w", ErrSkipped, err), e.wg.Done) {
				e.observe(n, OutcomeSkipped, 0)
				e.skipDependents(ctx, n)
			}
			continue
		}

		n.SetState(dag.Running)
		start := time.Now()
		var err error
		switch n.Type {
		case dag.ResourceNode:
			err = e.runResourceNode(ctx, n)
		case dag.StepNode:
			err = e.runStepNode(ctx, n)
		}
		elapsed := time.Since(start)

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			e.recordFailure(n)
			n.MarkFailed(err, e.wg.Done)
			e.observe(n, OutcomeFailed, elapsed)
			e.skipDependents(ctx, n)
			continue
		}

		n.SetState(dag.Done)
		e.observe(n, OutcomeSuccess, elapsed)

		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents recursively marks all downstream nodes as skipped.
func (e *Executor) skipDependents(ctx context.Context, n *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		err := fmt.Errorf("%w due to upstream failure of '%s'", ErrSkipped, n.ID)
		if dependent.MarkFailed(err, e.wg.Done) {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dependent.ID, "dependency", n.ID)
			e.observe(dependent, OutcomeSkipped, 0)
			e.skipDependents(ctx, dependent)
		}
	}
}
