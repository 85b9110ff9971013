package executor

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// argValue returns v as an argument of type t, or t's zero value for nil.
func argValue(t reflect.Type, v any) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

// invoke calls fn with args after checking its shape, converting a handler
// panic into an error.
func invoke(fn any, args []any) (out any, err error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumIn() != len(args) || ft.NumOut() != 2 {
		return nil, fmt.Errorf("handler %T must take %d arguments and return (value, error)", fn, len(args))
	}
	if !ft.In(0).Implements(contextType) && ft.In(0) != contextType {
		return nil, fmt.Errorf("handler %T must take context.Context as its first argument", fn)
	}
	if !ft.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("handler %T must return error as its second result", fn)
	}

	callArgs := make([]reflect.Value, len(args))
	for i, a := range args {
		v := argValue(ft.In(i), a)
		if !v.Type().AssignableTo(ft.In(i)) {
			return nil, fmt.Errorf("handler %T: argument %d of type %s is not assignable to %s", fn, i, v.Type(), ft.In(i))
		}
		callArgs[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	results := fv.Call(callArgs)
	if errVal := results[1].Interface(); errVal != nil {
		return nil, errVal.(error)
	}
	return results[0].Interface(), nil
}

// callHandler runs a runner's on_run function.
func callHandler(fn any, ctx context.Context, deps, input any) (any, error) {
	return invoke(fn, []any{ctx, deps, input})
}

// callAssetCreate runs an asset's create function.
func callAssetCreate(fn any, ctx context.Context, input any) (any, error) {
	return invoke(fn, []any{ctx, input})
}
