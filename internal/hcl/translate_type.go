package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts a manifest type expression such as `string`,
// `list(number)` or `object({ path = string })` into its cty.Type.
// A missing expression means `any`.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch name := v.Traversal.RootName(); name {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", name)
		}

	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructor %s requires exactly one argument, got %d", v.Name, len(v.Args))
		}
		if v.Name == "object" {
			return objectTypeExpr(ctx, v.Args[0])
		}

		elementType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}
		ctxlog.FromContext(ctx).Debug("Parsed collection element type.", "constructor", v.Name, "type", elementType.FriendlyName())

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func objectTypeExpr(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	cons, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("object type requires an attribute map, got %T", expr)
	}
	attrs := make(map[string]cty.Type, len(cons.Items))
	for _, item := range cons.Items {
		key := hcl.ExprAsKeyword(item.KeyExpr)
		if key == "" {
			return cty.DynamicPseudoType, fmt.Errorf("object type attribute names must be identifiers")
		}
		ty, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs[key] = ty
	}
	return cty.Object(attrs), nil
}
