package dag

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/nodeid"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

// createNodes performs the first pass of graph creation.
func createNodes(ctx context.Context, grid *config.Grid, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)

	for _, s := range grid.Steps {
		if _, ok := r.DefinitionRegistry[s.RunnerType]; !ok {
			return fmt.Errorf("step '%s.%s': unknown runner type '%s'", s.RunnerType, s.Name, s.RunnerType)
		}
		addr := nodeid.Step(s.RunnerType, s.Name)
		if err := addNode(graph, &Node{ID: addr.String(), Addr: addr, Name: s.Name, Type: StepNode, StepConfig: s}); err != nil {
			return err
		}
	}
	for _, res := range grid.Resources {
		if _, ok := r.AssetDefinitionRegistry[res.AssetType]; !ok {
			return fmt.Errorf("resource '%s.%s': unknown asset type '%s'", res.AssetType, res.Name, res.AssetType)
		}
		addr := nodeid.Resource(res.AssetType, res.Name)
		if err := addNode(graph, &Node{ID: addr.String(), Addr: addr, Name: res.Name, Type: ResourceNode, ResourceConfig: res}); err != nil {
			return err
		}
	}
	logger.Debug("Created graph nodes.", "steps", len(grid.Steps), "resources", len(grid.Resources))
	return nil
}

func addNode(graph *Graph, n *Node) error {
	if _, exists := graph.Nodes[n.ID]; exists {
		return fmt.Errorf("duplicate definition of '%s'", n.ID)
	}
	n.Deps = make(map[string]*Node)
	n.Dependents = make(map[string]*Node)
	graph.Nodes[n.ID] = n
	return nil
}

// linkNodes performs the second pass, establishing dependency links.
func linkNodes(ctx context.Context, graph *Graph, r *registry.Registry) error {
	logger := ctxlog.FromContext(ctx)

	for _, node := range graph.Nodes {
		var dependsOn []string
		var expressions []hcl.Expression

		if node.Type == StepNode {
			dependsOn = node.StepConfig.DependsOn
			for _, expr := range node.StepConfig.Arguments {
				expressions = append(expressions, expr)
			}
			if err := linkUses(ctx, node, graph, r); err != nil {
				return err
			}
		} else {
			dependsOn = node.ResourceConfig.DependsOn
			for _, expr := range node.ResourceConfig.Arguments {
				expressions = append(expressions, expr)
			}
		}

		if err := linkExplicitDeps(ctx, node, dependsOn, graph); err != nil {
			return err
		}
		for _, expr := range expressions {
			if err := linkImplicitDeps(ctx, node, expr, graph, r); err != nil {
				return err
			}
		}
	}
	logger.Debug("Finished node linking pass.")
	return nil
}

func link(ctx context.Context, from, to *Node, how string) {
	if _, exists := from.Deps[to.ID]; exists {
		return
	}
	ctxlog.FromContext(ctx).Debug("Linking dependency.", "kind", how, "from", from.ID, "to", to.ID)
	from.Deps[to.ID] = to
	to.Dependents[from.ID] = from
}
