package rules

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"

	"github.com/bazelinit/bazel-init/pkg/logctx"
)

type evalCtx struct {
	ctx   context.Context
	cfg   Config
	graph *Graph
}

func getEvalCtx(thread *starlark.Thread) *evalCtx {
	return thread.Local("evalCtx").(*evalCtx)
}

func listToStrings(input *starlark.List, field string) ([]string, error) {
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

func starPackage(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var src string
	var visibility *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "src", &src, "visibility?", &visibility)
	if err != nil {
		return nil, err
	}

	visList, err := listToStrings(visibility, "visibility")
	if err != nil {
		return nil, err
	}

	ectx := getEvalCtx(thread)
	node, err := ectx.cfg.ConfigArchive(ectx.graph, name, src, visList)
	if err != nil {
		return nil, err
	}

	return starlark.String(node.Name), nil
}

func starMerge(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var deps *starlark.List
	var visibility *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "deps", &deps, "visibility?", &visibility)
	if err != nil {
		return nil, err
	}

	depList, err := listToStrings(deps, "deps")
	if err != nil {
		return nil, err
	}

	visList, err := listToStrings(visibility, "visibility")
	if err != nil {
		return nil, err
	}

	ectx := getEvalCtx(thread)
	node, err := ectx.cfg.MergeArchives(ectx.graph, name, depList, visList)
	if err != nil {
		return nil, err
	}

	return starlark.String(node.Name), nil
}

// EvalFile evaluates a rules file. The file declares its generation nodes by
// calling bazel_init_package() and bazel_init_merge() at the top level.
func EvalFile(ctx context.Context, filename string, cfg Config) (*Graph, error) {
	builtins := starlark.StringDict{
		"bazel_init_package": starlark.NewBuiltin("bazel_init_package", starPackage),
		"bazel_init_merge":   starlark.NewBuiltin("bazel_init_merge", starMerge),
	}

	thread := &starlark.Thread{
		Name: "rules",
		Print: func(thread *starlark.Thread, msg string) {
			logctx.Log(ctx).Info().Str("thread", thread.Name).Msg(msg)
		},
	}

	ectx := &evalCtx{
		ctx:   ctx,
		cfg:   cfg,
		graph: NewGraph(),
	}
	thread.SetLocal("evalCtx", ectx)

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read file")
	}

	_, err = starlark.ExecFile(thread, filename, script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", filename, evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed to execute %s", filename)
	}

	return ectx.graph, nil
}
