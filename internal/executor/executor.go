// Package executor runs a dependency graph on a fixed pool of workers.
//
// A node becomes ready when all of its dependencies are done. A failing node
// marks every transitive dependent as skipped; independent branches keep
// running. Resources are destroyed in reverse creation order once the run
// finishes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/dag"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

// ErrSkipped marks nodes that did not run because a dependency failed or the
// run was cancelled.
var ErrSkipped = errors.New("skipped")

// Outcome labels reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Recorder receives the outcome of every node. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveNode(kind, nodeType, outcome string, elapsed time.Duration)
}

// Option configures an Executor.
type Option func(*Executor)

// WithRecorder reports node outcomes to rec.
func WithRecorder(rec Recorder) Option {
	return func(e *Executor) { e.recorder = rec }
}

// Executor orchestrates the concurrent execution of a graph.
type Executor struct {
	Graph      *dag.Graph
	numWorkers int
	registry   *registry.Registry
	converter  config.Converter
	recorder   Recorder

	wg sync.WaitGroup

	failMu   sync.Mutex
	failures []*dag.Node

	cleanupMu    sync.Mutex
	cleanupStack []func()
}

// New creates an executor for graph. numWorkers below 1 is treated as 1.
func New(graph *dag.Graph, numWorkers int, r *registry.Registry, converter config.Converter, opts ...Option) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	e := &Executor{
		Graph:      graph,
		numWorkers: numWorkers,
		registry:   r,
		converter:  converter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the entire graph and returns the first root-cause error, if
// any node failed. Cancelling ctx skips every node that has not started.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer e.executeCleanupStack(ctx)

	readyChan := make(chan *dag.Node, len(e.Graph.Nodes))

	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if node.DepCount() == 0 {
			logger.Debug("Found root node.", "nodeID", node.ID)
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	var workers sync.WaitGroup
	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			e.worker(ctx, readyChan, id)
		}(i)
	}

	e.wg.Wait()
	close(readyChan)
	workers.Wait()
	logger.Debug("All nodes completed.")

	e.failMu.Lock()
	failures := append([]*dag.Node(nil), e.failures...)
	e.failMu.Unlock()

	if len(failures) > 0 {
		ids := make([]string, len(failures))
		for i, n := range failures {
			ids[i] = n.ID
		}
		sort.Strings(ids)
		return fmt.Errorf("execution failed for %s: %w", strings.Join(ids, ", "), failures[0].Error)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("execution cancelled: %w", err)
	}
	return nil
}

// recordFailure remembers a node whose own execution failed, in failure order.
func (e *Executor) recordFailure(n *dag.Node) {
	e.failMu.Lock()
	defer e.failMu.Unlock()
	e.failures = append(e.failures, n)
}

func (e *Executor) observe(n *dag.Node, outcome string, elapsed time.Duration) {
	if e.recorder == nil {
		return
	}
	kind, typ := "step", ""
	if n.Type == dag.ResourceNode {
		kind, typ = "resource", n.ResourceConfig.AssetType
	} else {
		typ = n.StepConfig.RunnerType
	}
	e.recorder.ObserveNode(kind, typ, outcome, elapsed)
}
