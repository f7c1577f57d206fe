package builder

import (
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/bazelinit/bazel-init/pkg/autodetect"
)

// detectModule exposes the autodetection helpers to the script's autodetect
// function.
func detectModule() *starlarkstruct.Module {
	helper := autodetect.Helper{}

	return &starlarkstruct.Module{
		Name: "detect",
		Members: starlark.StringDict{
			"which":           starlark.NewBuiltin("which", starWhich(helper)),
			"version_compare": starlark.NewBuiltin("version_compare", starVersionCompare(helper)),
			"pkg_config":      starlark.NewBuiltin("pkg_config", starPkgConfig(helper)),
			"find_library":    starlark.NewBuiltin("find_library", starFindLibrary(helper)),
			"brew_prefix":     starlark.NewBuiltin("brew_prefix", starBrewPrefix(helper)),
			"port_contents":   starlark.NewBuiltin("port_contents", starPortContents(helper)),
			"read_pc":         starlark.NewBuiltin("read_pc", starReadPC),
			"getenv":          starlark.NewBuiltin("getenv", starGetenv),
			"fail":            starlark.NewBuiltin("fail", starFail),
		},
	}
}

type builtinFunc func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

func starWhich(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var prog string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &prog)
		if err != nil {
			return nil, err
		}

		path := helper.Which(prog)
		if path == "" {
			return starlark.None, nil
		}
		return starlark.String(path), nil
	}
}

func starVersionCompare(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var version1, version2 string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &version1, &version2)
		if err != nil {
			return nil, err
		}

		return starlark.MakeInt(helper.VersionCompare(version1, version2)), nil
	}
}

func libraryToStarlark(info *autodetect.LibraryInfo) (starlark.Value, error) {
	if info == nil {
		return starlark.None, nil
	}
	return goToStarlark(info.ToMap())
}

func starPkgConfig(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		var check autodetect.VersionCheck

		err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name,
			"atleast_version?", &check.AtLeast, "exact_version?", &check.Exact, "max_version?", &check.Max)
		if err != nil {
			return nil, err
		}

		return libraryToStarlark(helper.PkgConfig(name, check))
	}
}

func starFindLibrary(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
		if err != nil {
			return nil, err
		}

		return libraryToStarlark(helper.FindLibrary(name))
	}
}

func starBrewPrefix(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
		if err != nil {
			return nil, err
		}

		prefix := helper.BrewPrefix(name)
		if prefix == "" {
			return starlark.None, nil
		}
		return starlark.String(prefix), nil
	}
}

func starPortContents(helper autodetect.Helper) builtinFunc {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
		if err != nil {
			return nil, err
		}

		contents := helper.PortContents(name)
		if contents == nil {
			return starlark.None, nil
		}
		return goToStarlark(contents)
	}
}

func starReadPC(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var filename string
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &filename)
	if err != nil {
		return nil, err
	}

	return libraryToStarlark(autodetect.ReadPCAsLibrary(filename))
}

func starGetenv(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &key)
	if err != nil {
		return nil, err
	}

	return starlark.String(os.Getenv(key)), nil
}

func starFail(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string
	err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &message)
	if err != nil {
		return nil, err
	}

	return nil, autodetect.Fail(message)
}
