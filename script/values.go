package script

import (
	"fmt"

	"go.starlark.net/starlark"
)

// toValue converts display setting into starlark value.
func toValue(v any) starlark.Value {
	switch v := v.(type) {
	case nil:
		return starlark.None
	case bool:
		return starlark.Bool(v)
	case string:
		return starlark.String(v)
	case int:
		return starlark.MakeInt(v)
	case int64:
		return starlark.MakeInt64(v)
	case float32:
		return starlark.Float(v)
	case float64:
		return starlark.Float(v)
	case []string:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = starlark.String(e)
		}
		return starlark.NewList(elems)
	}
	return starlark.String(fmt.Sprint(v))
}

// fromValue converts starlark value into display setting.
func fromValue(v starlark.Value) (any, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(v), nil
	case starlark.String:
		return string(v), nil
	case starlark.Int:
		i, ok := v.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s is out of range", v)
		}
		return int(i), nil
	case starlark.Float:
		return float64(v), nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", v.Type())
}
