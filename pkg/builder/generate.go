package builder

import (
	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/bazelinit/bazel-init/pkg/buildgen"
)

// genModule exposes a buildgen helper to the script's generate function.
// Nested repositories get their own module.
func genModule(helper *buildgen.Helper) *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "gen",
		Members: starlark.StringDict{
			"rule":             starlark.NewBuiltin("rule", starRule(helper)),
			"scratch_file":     starlark.NewBuiltin("scratch_file", starScratchFile(helper)),
			"exports_embedded": starlark.NewBuiltin("exports_embedded", starExportsEmbedded(helper)),
			"new_repository":   starlark.NewBuiltin("new_repository", starNewRepository(helper)),
			"bind":             starlark.NewBuiltin("bind", starBind(helper)),
		},
	}
}

// attrsFromKwargs converts the keyword arguments of a rule call into ordered
// buildgen attributes.
func attrsFromKwargs(kwargs []starlark.Tuple) ([]buildgen.Attr, error) {
	attrs := make([]buildgen.Attr, 0, len(kwargs))
	for _, kv := range kwargs {
		name := string(kv[0].(starlark.String))

		value, err := starlarkToGo(kv[1])
		if err != nil {
			return nil, eris.Wrapf(err, "failed to convert attribute %s", name)
		}

		attrs = append(attrs, buildgen.Attr{Name: name, Value: value})
	}
	return attrs, nil
}

func unpackKind(fn *starlark.Builtin, args starlark.Tuple) (string, error) {
	var kind string
	err := starlark.UnpackPositionalArgs(fn.Name(), args, nil, 1, &kind)
	if err != nil {
		return "", err
	}
	return kind, nil
}

func starRule(helper *buildgen.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		kind, err := unpackKind(fn, args)
		if err != nil {
			return nil, err
		}

		attrs, err := attrsFromKwargs(kwargs)
		if err != nil {
			return nil, err
		}

		label, err := helper.Rule(kind, attrs...)
		if err != nil {
			return nil, err
		}
		return starlark.String(label.String()), nil
	}
}

func starScratchFile(helper *buildgen.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		var content string

		err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "content?", &content)
		if err != nil {
			return nil, err
		}

		helper.ScratchFile(name, content)
		return starlark.None, nil
	}
}

func starExportsEmbedded(helper *buildgen.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
		if err != nil {
			return nil, err
		}

		helper.ExportsEmbedded(name)
		return starlark.None, nil
	}
}

func starNewRepository(helper *buildgen.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		kind, err := unpackKind(fn, args)
		if err != nil {
			return nil, err
		}

		attrs, err := attrsFromKwargs(kwargs)
		if err != nil {
			return nil, err
		}

		repo, err := helper.NewRepository(kind, attrs...)
		if err != nil {
			return nil, err
		}
		return genModule(repo), nil
	}
}

func starBind(helper *buildgen.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var pkg string
		var name string

		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &pkg, &name)
		if err != nil {
			return nil, err
		}

		return starlark.String(helper.Bind(pkg, name)), nil
	}
}
