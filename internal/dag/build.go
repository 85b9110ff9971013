package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

// Build constructs a complete, validated dependency graph from a config model.
func Build(ctx context.Context, model *config.Model, r *registry.Registry) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node), Locals: model.Grid.Locals}

	if err := createNodes(ctx, model.Grid, graph, r); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	if err := linkNodes(ctx, graph, r); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}
