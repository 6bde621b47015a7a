package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/agentswarm/core"
)

// NormalizeResult coerces the raw return value of function into a Result.
//
//   - core.Result and *core.Result pass through unchanged
//   - *core.Agent and core.Agent become a handoff whose value is {"assistant":"<name>"}
//   - everything else is coerced to its string form
//
// Values without a string form (funcs, channels, values JSON cannot encode)
// yield a *core.ResultCoercionError, as do String and Error methods that
// panic.
func NormalizeResult(function string, v any) (core.Result, error) {
	switch r := v.(type) {
	case core.Result:
		return r, nil
	case *core.Result:
		if r == nil {
			return core.Result{}, nil
		}
		return *r, nil
	case *core.Agent:
		if r == nil {
			return core.Result{}, nil
		}
		return core.Result{Value: handoffValue(r), Agent: r}, nil
	case core.Agent:
		return core.Result{Value: handoffValue(&r), Agent: &r}, nil
	}

	s, err := coerceString(v)
	if err != nil {
		return core.Result{}, &core.ResultCoercionError{Function: function, Value: v, Err: err}
	}

	return core.Result{Value: s}, nil
}

func handoffValue(a *core.Agent) string {
	b, _ := json.Marshal(map[string]string{"assistant": a.Name})
	return string(b)
}

func coerceString(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()

	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case error:
		return t.Error(), nil
	case fmt.Stringer:
		return t.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t), nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "", errors.New("value has no string form")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
