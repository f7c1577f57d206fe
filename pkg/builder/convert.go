package builder

import (
	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"

	"github.com/bazelinit/bazel-init/pkg/buildgen"
)

// starCall wraps a buildgen call (glob(...) or select({...})) so it can
// travel through the script as an opaque value.
type starCall struct {
	call *buildgen.Call
}

func (c starCall) String() string {
	return "<" + c.call.Kind + ">"
}

func (c starCall) Type() string {
	return c.call.Kind
}

func (c starCall) Freeze() {}

func (c starCall) Truth() starlark.Bool {
	return starlark.True
}

func (c starCall) Hash() (uint32, error) {
	return 0, eris.Errorf("%s is not a hashable type", c.call.Kind)
}

func goToStarlark(value any) (starlark.Value, error) {
	switch value := value.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(value), nil
	case bool:
		return starlark.Bool(value), nil
	case int:
		return starlark.MakeInt(value), nil
	case int64:
		return starlark.MakeInt64(value), nil
	case float64:
		return starlark.Float(value), nil
	case []string:
		items := make([]starlark.Value, len(value))
		for idx, item := range value {
			items[idx] = starlark.String(item)
		}
		return starlark.NewList(items), nil
	case []any:
		items := make([]starlark.Value, len(value))
		for idx, item := range value {
			converted, err := goToStarlark(item)
			if err != nil {
				return nil, err
			}
			items[idx] = converted
		}
		return starlark.NewList(items), nil
	case map[string]string:
		dict := starlark.NewDict(len(value))
		for key, item := range value {
			err := dict.SetKey(starlark.String(key), starlark.String(item))
			if err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[string]any:
		dict := starlark.NewDict(len(value))
		for key, item := range value {
			converted, err := goToStarlark(item)
			if err != nil {
				return nil, err
			}

			err = dict.SetKey(starlark.String(key), converted)
			if err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, eris.Errorf("can't convert value of type %T", value)
	}
}

func starlarkToGo(value starlark.Value) (any, error) {
	switch value := value.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return value.GoString(), nil
	case starlark.Bool:
		return bool(value), nil
	case starlark.Int:
		result, ok := value.Int64()
		if !ok {
			return nil, eris.Errorf("integer %s is too large", value.String())
		}
		return int(result), nil
	case starlark.Float:
		return float64(value), nil
	case starCall:
		return value.call, nil
	case *starlark.List:
		return iterableToGo(value)
	case starlark.Tuple:
		return iterableToGo(value)
	case *starlark.Dict:
		result := map[string]any{}
		for _, rawKey := range value.Keys() {
			key, ok := rawKey.(starlark.String)
			if !ok {
				return nil, eris.Errorf("found key of type %s but only strings are supported", rawKey.Type())
			}

			rawValue, _, err := value.Get(rawKey)
			if err != nil {
				return nil, err
			}

			converted, err := starlarkToGo(rawValue)
			if err != nil {
				return nil, err
			}
			result[key.GoString()] = converted
		}
		return result, nil
	default:
		return nil, eris.Errorf("can't convert value of type %s", value.Type())
	}
}

type starlarkIterable interface {
	Len() int
	Iterate() starlark.Iterator
}

func iterableToGo(input starlarkIterable) ([]any, error) {
	result := make([]any, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		converted, err := starlarkToGo(item)
		if err != nil {
			return nil, err
		}
		result = append(result, converted)
	}
	return result, nil
}

// stringsFromIterable converts a list of Starlark strings.
func stringsFromIterable(input starlarkIterable, field string) ([]string, error) {
	if input == nil {
		return nil, nil
	}

	result := make([]string, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		value, ok := item.(starlark.String)
		if !ok {
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
		result = append(result, value.GoString())
	}
	return result, nil
}
