// Package builder loads and runs package builder scripts. A builder script
// is a Starlark file that declares three functions: package() names the
// package it generates, autodetect(variables, detect) inspects the host and
// returns the configuration variables, and generate(variables, gen) declares
// the package content based on those variables.
package builder

import (
	"context"
	"os"
	"runtime"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"

	"github.com/bazelinit/bazel-init/pkg/buildgen"
	"github.com/bazelinit/bazel-init/pkg/logctx"
)

// Script is a loaded builder script.
type Script struct {
	filename string
	pkg      string
	globals  starlark.StringDict
	thread   *starlark.Thread
}

func starGlob(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var include *starlark.List
	var exclude *starlark.List

	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "include", &include, "exclude?", &exclude)
	if err != nil {
		return nil, err
	}

	patterns, err := stringsFromIterable(include, "include")
	if err != nil {
		return nil, err
	}

	var attrs []buildgen.Attr
	if exclude != nil {
		excludes, err := stringsFromIterable(exclude, "exclude")
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, buildgen.Attr{Name: "exclude", Value: excludes})
	}

	return starCall{call: buildgen.Glob(patterns, attrs...)}, nil
}

func starSelect(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var branches *starlark.Dict

	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &branches)
	if err != nil {
		return nil, err
	}

	converted, err := starlarkToGo(branches)
	if err != nil {
		return nil, err
	}

	return starCall{call: buildgen.Select(converted.(map[string]any))}, nil
}

func logBuiltin(ctx context.Context, warn bool) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var message string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
		if err != nil {
			return nil, err
		}

		pos := thread.CallFrame(1).Pos
		event := logctx.Log(ctx).Info()
		if warn {
			event = logctx.Log(ctx).Warn()
		}
		event.Msgf("%s:%d:%d: %s", pos.Filename(), pos.Line, pos.Col, message)
		return starlark.None, nil
	}
}

// Load reads and executes a builder script's top level.
func Load(ctx context.Context, filename string) (*Script, error) {
	builtins := starlark.StringDict{
		"OS":     starlark.String(runtime.GOOS),
		"ARCH":   starlark.String(runtime.GOARCH),
		"glob":   starlark.NewBuiltin("glob", starGlob),
		"select": starlark.NewBuiltin("select", starSelect),
		"info":   starlark.NewBuiltin("info", logBuiltin(ctx, false)),
		"warn":   starlark.NewBuiltin("warn", logBuiltin(ctx, true)),
	}

	thread := &starlark.Thread{
		Name: filename,
		Print: func(thread *starlark.Thread, msg string) {
			logctx.Log(ctx).Info().Str("script", thread.Name).Msg(msg)
		},
	}

	script, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read file")
	}

	globals, err := starlark.ExecFile(thread, filename, script, builtins)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			return nil, eris.Errorf("failed to execute %s:\n%s", filename, evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed to execute %s", filename)
	}

	result := &Script{
		filename: filename,
		globals:  globals,
		thread:   thread,
	}

	pkg, err := result.callString("package")
	if err != nil {
		return nil, err
	}
	if pkg == "" {
		return nil, eris.Errorf("%s declared an empty package name", filename)
	}

	result.pkg = pkg
	return result, nil
}

// Package returns the package path this script generates.
func (s *Script) Package() string {
	return s.pkg
}

func (s *Script) lookup(name string) (starlark.Callable, error) {
	value, ok := s.globals[name]
	if !ok {
		return nil, eris.Errorf("%s did not declare a %s function", s.filename, name)
	}

	callable, ok := value.(starlark.Callable)
	if !ok {
		return nil, eris.Errorf("%s declared a %s value but it's not a function", s.filename, name)
	}
	return callable, nil
}

func (s *Script) call(name string, args ...starlark.Value) (starlark.Value, error) {
	callable, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	result, err := starlark.Call(s.thread, callable, starlark.Tuple(args), nil)
	if err != nil {
		if evalError, ok := err.(*starlark.EvalError); ok {
			// keep the cause visible for callers that inspect the error type
			if cause := evalError.Unwrap(); cause != nil {
				return nil, eris.Wrap(cause, evalError.Backtrace())
			}
			return nil, eris.New(evalError.Backtrace())
		}
		return nil, eris.Wrapf(err, "failed %s call in %s", name, s.filename)
	}
	return result, nil
}

func (s *Script) callString(name string) (string, error) {
	result, err := s.call(name)
	if err != nil {
		return "", err
	}

	value, ok := result.(starlark.String)
	if !ok {
		return "", eris.Errorf("%s's %s function returned a %s but a string is required", s.filename, name, result.Type())
	}
	return value.GoString(), nil
}

// Autodetect runs the script's autodetect function over the given input
// variables and returns the resulting configuration variables.
func (s *Script) Autodetect(variables map[string]any) (map[string]any, error) {
	input, err := goToStarlark(variables)
	if err != nil {
		return nil, err
	}

	result, err := s.call("autodetect", input, detectModule())
	if err != nil {
		return nil, err
	}

	converted, err := starlarkToGo(result)
	if err != nil {
		return nil, err
	}

	resultMap, ok := converted.(map[string]any)
	if !ok {
		return nil, eris.Errorf("%s's autodetect function returned a %s but a dict is required", s.filename, result.Type())
	}
	return resultMap, nil
}

// Generate runs the script's generate function against the given buildgen
// helper.
func (s *Script) Generate(variables map[string]any, helper *buildgen.Helper) error {
	input, err := goToStarlark(variables)
	if err != nil {
		return err
	}

	_, err = s.call("generate", input, genModule(helper))
	return err
}
