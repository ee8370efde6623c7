// internal/control/router.go
package control

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Router maps RPC method names onto the exported methods of the bound
// engine surface (the App bindings).
type Router struct {
	target  interface{}
	methods map[string]reflect.Method
}

// NewRouter indexes the exported methods of target.
func NewRouter(target interface{}) *Router {
	r := &Router{
		target:  target,
		methods: make(map[string]reflect.Method),
	}

	targetType := reflect.TypeOf(target)
	for i := 0; i < targetType.NumMethod(); i++ {
		method := targetType.Method(i)
		if method.IsExported() {
			r.methods[method.Name] = method
		}
	}
	return r
}

// Call invokes the named method with JSON-decoded params.
func (r *Router) Call(methodName string, params []interface{}) (interface{}, error) {
	method, ok := r.methods[methodName]
	if !ok {
		return nil, fmt.Errorf("method not found: %s", methodName)
	}

	methodType := method.Type
	numIn := methodType.NumIn() - 1 // receiver
	if len(params) != numIn {
		return nil, fmt.Errorf("method %s expects %d params, got %d", methodName, numIn, len(params))
	}

	args := make([]reflect.Value, numIn+1)
	args[0] = reflect.ValueOf(r.target)
	for i, param := range params {
		value, err := convertParam(param, methodType.In(i+1))
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		args[i+1] = value
	}

	return collectResults(method.Func.Call(args))
}

// convertParam adapts a JSON-decoded value to the parameter type. Scalars
// convert directly; structs, slices and maps go through a JSON round trip,
// which applies the target type's field tags.
func convertParam(param interface{}, targetType reflect.Type) (reflect.Value, error) {
	if param == nil {
		return reflect.Zero(targetType), nil
	}

	value := reflect.ValueOf(param)
	if value.Type().AssignableTo(targetType) {
		return value, nil
	}
	if value.Kind() == reflect.Float64 {
		// JSON numbers decode as float64.
		switch targetType.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
			return reflect.ValueOf(param).Convert(targetType), nil
		}
	}
	if value.Type().ConvertibleTo(targetType) {
		return value.Convert(targetType), nil
	}

	data, err := json.Marshal(param)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", param, targetType)
	}
	out := reflect.New(targetType)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %T to %s: %w", param, targetType, err)
	}
	return out.Elem(), nil
}

// collectResults flattens a method's return values into (result, error).
func collectResults(results []reflect.Value) (interface{}, error) {
	errType := reflect.TypeOf((*error)(nil)).Elem()

	var values []interface{}
	var callErr error
	for i, result := range results {
		if result.Type().Implements(errType) {
			if i == len(results)-1 {
				if !result.IsNil() {
					callErr = result.Interface().(error)
				}
				continue
			}
		}
		values = append(values, result.Interface())
	}

	if callErr != nil {
		return nil, callErr
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return values, nil
	}
}
