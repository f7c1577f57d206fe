// Package autodetect locates compilers, libraries and other host tools that
// generated packages depend on. Detection failures are reported through the
// Failure type so callers can tell them apart from plain I/O errors.
package autodetect

import (
	"os"
	"path/filepath"
	"strings"
)

// Failure describes a detection result that should abort the configure step
// with a user-facing message instead of a stack trace.
type Failure struct {
	Reason string
}

func (f Failure) Error() string {
	return f.Reason
}

// Fail returns a detection failure with the given reason.
func Fail(reason string) error {
	return Failure{Reason: reason}
}

// Helper bundles the detection primitives that are exposed to package
// builder scripts.
type Helper struct{}

// Which resolves a program name through the PATH environment variable. It
// returns an empty string when no executable with that name exists.
func (Helper) Which(prog string) string {
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		path := filepath.Join(dir, prog)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() && info.Mode()&0o100 != 0 {
			return path
		}
	}
	return ""
}

// VersionCompare compares two dot separated version numbers component by
// component and returns -1, 0 or 1. Components are compared as strings which
// is good enough for the versions we care about (e.g. "1.8").
func (Helper) VersionCompare(version1, version2 string) int {
	ver1 := strings.Split(version1, ".")
	ver2 := strings.Split(version2, ".")

	shared := len(ver1)
	if len(ver2) < shared {
		shared = len(ver2)
	}

	for i := 0; i < shared; i++ {
		if ver1[i] > ver2[i] {
			return 1
		}
		if ver1[i] < ver2[i] {
			return -1
		}
	}

	switch {
	case len(ver1) < len(ver2):
		return -1
	case len(ver1) > len(ver2):
		return 1
	default:
		return 0
	}
}

// processFlags splits a flag string, optionally stripping a prefix like -L
// or -I from every entry.
func processFlags(flags, stripOption string) []string {
	result := []string{}
	for _, opt := range strings.Fields(flags) {
		if stripOption != "" && strings.HasPrefix(opt, stripOption) {
			if opt != stripOption {
				result = append(result, opt[len(stripOption):])
			}
		} else {
			result = append(result, opt)
		}
	}
	return result
}
