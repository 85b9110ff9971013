package hcl

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody evaluates HCL expressions, applies defaults, and populates the
// `bggo`-tagged fields of the provided Go struct. Arguments that the manifest
// does not declare are rejected.
func (c *Converter) DecodeBody(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL body decoding.")

	var unknown []string
	for name := range args {
		if _, ok := defs[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unsupported argument(s): %s", strings.Join(unknown, ", "))
	}

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !field.IsExported() || !fieldVal.CanSet() {
			continue
		}

		tagName := strings.Split(field.Tag.Get("bggo"), ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}

		inputDef, ok := defs[tagName]
		if !ok {
			continue
		}

		var value cty.Value
		if argExpr, provided := args[tagName]; provided {
			val, diags := argExpr.Value(evalCtx)
			if diags.HasErrors() {
				return fmt.Errorf("failed to evaluate argument '%s': %w", tagName, diags)
			}
			value = val
		} else {
			switch {
			case inputDef.Default != nil:
				value = *inputDef.Default
			case inputDef.Optional:
				continue
			default:
				return fmt.Errorf("missing required argument %q", tagName)
			}
		}

		if err := c.decode(ctx, value, inputDef.Type, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", tagName, err)
		}
	}
	logger.Debug("Finished HCL body decoding successfully.")
	return nil
}

// decode converts val to the manifest type (or the Go field's implied type
// for `any`) and stores it in the Go pointer goVal.
func (c *Converter) decode(ctx context.Context, val cty.Value, manifestType cty.Type, goVal any) error {
	logger := ctxlog.FromContext(ctx)

	target := manifestType
	if target == cty.NilType || target.Equals(cty.DynamicPseudoType) {
		implied, err := gocty.ImpliedType(reflect.ValueOf(goVal).Elem().Interface())
		if err != nil {
			logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", fmt.Sprintf("%T", goVal), "error", err)
			return gocty.FromCtyValue(val, goVal)
		}
		target = implied
	}

	if val.IsNull() {
		return fmt.Errorf("value must not be null")
	}

	converted, err := convert.Convert(val, target)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), target.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.", "from", val.Type().FriendlyName(), "to", converted.Type().FriendlyName())
	}

	return gocty.FromCtyValue(converted, goVal)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Pointers are followed; a nil pointer or nil value yields cty.NilVal.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return cty.NilVal, nil
		}
		rv = rv.Elem()
	}
	native := rv.Interface()

	if val, ok := native.(cty.Value); ok {
		return val, nil
	}
	ty, err := gocty.ImpliedType(native)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(native, ty)
}
