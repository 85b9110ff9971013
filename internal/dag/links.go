package dag

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/nodeid"
	"github.com/specialistvlad/incomegrid/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// linkExplicitDeps resolves dependencies from a `depends_on` list. Entries
// use the short `type.name` form and may name a step or a resource.
func linkExplicitDeps(ctx context.Context, node *Node, dependsOn []string, graph *Graph) error {
	for _, raw := range dependsOn {
		typ, name, err := nodeid.ParseShort(raw)
		if err != nil {
			return fmt.Errorf("node '%s': %w", node.ID, err)
		}

		depNode, found := graph.Nodes[nodeid.Step(typ, name).String()]
		if !found {
			depNode, found = graph.Nodes[nodeid.Resource(typ, name).String()]
		}
		if !found {
			return fmt.Errorf("node '%s' depends on non-existent identifier '%s'", node.ID, raw)
		}
		link(ctx, node, depNode, "explicit")
	}
	return nil
}

// linkImplicitDeps parses an expression for variable traversals to create
// dependency links and validates every step, resource and local reference.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	for _, traversal := range expr.Variables() {
		switch traversal.RootName() {
		case "local":
			if len(traversal) < 2 {
				return fmt.Errorf("node '%s': invalid reference %q", node.ID, formatTraversal(traversal))
			}
			attr, ok := traversal[1].(hcl.TraverseAttr)
			if !ok {
				return fmt.Errorf("node '%s': invalid reference %q", node.ID, formatTraversal(traversal))
			}
			if _, ok := graph.Locals[attr.Name]; !ok {
				return fmt.Errorf("node '%s': reference to undefined local %q", node.ID, attr.Name)
			}

		case string(nodeid.StepKind), string(nodeid.ResourceKind):
			depNode, err := resolveTraversal(node, traversal, graph)
			if err != nil {
				return err
			}
			if err := validateOutputReference(traversal, depNode, r); err != nil {
				return err
			}
			link(ctx, node, depNode, "implicit")

		default:
			return fmt.Errorf("node '%s': unknown variable %q in expression", node.ID, traversal.RootName())
		}
	}
	return nil
}

// linkUses validates a step's `uses` block against its runner manifest and
// links each entry. Every entry must be a direct reference to one node of the
// declared kind and type.
func linkUses(ctx context.Context, node *Node, graph *Graph, r *registry.Registry) error {
	runnerDef := r.DefinitionRegistry[node.StepConfig.RunnerType]

	for local, expr := range node.StepConfig.Uses {
		useDef, ok := runnerDef.Uses[local]
		if !ok {
			return fmt.Errorf("node '%s': runner '%s' does not declare uses %q", node.ID, node.StepConfig.RunnerType, local)
		}

		traversal, diags := hcl.AbsTraversalForExpr(expr)
		if diags.HasErrors() || len(traversal) != 3 {
			return fmt.Errorf("node '%s': uses %q must be a direct reference like step.<type>.<name> or resource.<type>.<name>", node.ID, local)
		}
		depNode, err := resolveTraversal(node, traversal, graph)
		if err != nil {
			return err
		}

		switch {
		case useDef.AssetType != "":
			if depNode.Type != ResourceNode || depNode.ResourceConfig.AssetType != useDef.AssetType {
				return fmt.Errorf("node '%s': uses %q requires a resource of type '%s', got '%s'", node.ID, local, useDef.AssetType, depNode.ID)
			}
		case useDef.RunnerType != "":
			if depNode.Type != StepNode || depNode.StepConfig.RunnerType != useDef.RunnerType {
				return fmt.Errorf("node '%s': uses %q requires a step of type '%s', got '%s'", node.ID, local, useDef.RunnerType, depNode.ID)
			}
		}
		link(ctx, node, depNode, "uses")
	}

	for local := range runnerDef.Uses {
		if _, ok := node.StepConfig.Uses[local]; !ok {
			return fmt.Errorf("node '%s': missing required uses %q", node.ID, local)
		}
	}
	return nil
}

// resolveTraversal maps `step.<type>.<name>` or `resource.<type>.<name>` to
// an existing node.
func resolveTraversal(node *Node, traversal hcl.Traversal, graph *Graph) (*Node, error) {
	if len(traversal) < 3 {
		return nil, fmt.Errorf("node '%s': incomplete reference %q", node.ID, formatTraversal(traversal))
	}
	typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
	nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
	if !typeOk || !nameOk {
		return nil, fmt.Errorf("node '%s': invalid reference %q", node.ID, formatTraversal(traversal))
	}

	id := strings.Join([]string{traversal.RootName(), typeAttr.Name, nameAttr.Name}, ".")
	depNode, ok := graph.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("node '%s' references non-existent '%s'", node.ID, id)
	}
	return depNode, nil
}

// validateOutputReference checks that `step.T.N.output.X` names an output
// declared in the runner manifest.
func validateOutputReference(traversal hcl.Traversal, depNode *Node, r *registry.Registry) error {
	if depNode.Type != StepNode || len(traversal) < 5 {
		return nil
	}
	if outAttr, ok := traversal[3].(hcl.TraverseAttr); !ok || outAttr.Name != "output" {
		return nil
	}
	outputNameAttr, ok := traversal[4].(hcl.TraverseAttr)
	if !ok {
		return nil
	}

	runnerDef := r.DefinitionRegistry[depNode.StepConfig.RunnerType]
	if _, ok := runnerDef.Outputs[outputNameAttr.Name]; ok {
		return nil
	}
	return fmt.Errorf("reference to undeclared output %q on step %q", outputNameAttr.Name, depNode.ID)
}

// detectCycles checks for circular dependencies in the graph using DFS.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		visiting[node.ID] = true
		for _, dep := range node.Deps {
			if visiting[dep.ID] {
				return fmt.Errorf("cycle detected involving '%s'", dep.ID)
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, node.ID)
		visited[node.ID] = true
		return nil
	}

	for _, node := range g.Nodes {
		if !visited[node.ID] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatTraversal converts an hcl.Traversal to a human-readable string.
func formatTraversal(t hcl.Traversal) string {
	var sb strings.Builder
	for _, part := range t {
		switch p := part.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(p.Name)
		case hcl.TraverseAttr:
			sb.WriteRune('.')
			sb.WriteString(p.Name)
		case hcl.TraverseIndex:
			sb.WriteRune('[')
			switch p.Key.Type() {
			case cty.String:
				sb.WriteString(fmt.Sprintf("%q", p.Key.AsString()))
			case cty.Number:
				sb.WriteString(p.Key.AsBigFloat().Text('f', -1))
			default:
				sb.WriteString("...")
			}
			sb.WriteRune(']')
		default:
			sb.WriteString(".?")
		}
	}
	return sb.String()
}
