package autodetect

import (
	"os/exec"
	"strings"
)

// LibraryInfo describes how to compile and link against a detected library.
// The field names of the map form (see ToMap) are part of the builder script
// interface and must not change.
type LibraryInfo struct {
	LibraryDirs []string
	Libraries   []string
	LDFlags     []string
	IncludeDirs []string
	CFlags      []string
	Variables   map[string]string
}

// ToMap converts the info into the dictionary shape builder scripts consume.
func (l *LibraryInfo) ToMap() map[string]any {
	variables := map[string]any{}
	for key, value := range l.Variables {
		variables[key] = value
	}

	return map[string]any{
		"library_dirs": asAnySlice(l.LibraryDirs),
		"libraries":    asAnySlice(l.Libraries),
		"ldflags":      asAnySlice(l.LDFlags),
		"include_dirs": asAnySlice(l.IncludeDirs),
		"cflags":       asAnySlice(l.CFlags),
		"variables":    variables,
	}
}

func asAnySlice(values []string) []any {
	result := make([]any, len(values))
	for idx, value := range values {
		result[idx] = value
	}
	return result
}

// VersionCheck restricts which library versions PkgConfig accepts. At most
// one of Exact, AtLeast and Max is usually set; AtLeast and Max may be
// combined for a range check.
type VersionCheck struct {
	AtLeast string
	Exact   string
	Max     string
}

func pkgConfigOutput(pkgConfig string, args ...string) (string, bool) {
	output, err := exec.Command(pkgConfig, args...).Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(output)), true
}

// PkgConfig queries the pkg-config binary for the given library. It returns
// nil when pkg-config is missing, the library is unknown or the version check
// fails.
func (h Helper) PkgConfig(name string, check VersionCheck) *LibraryInfo {
	pkgConfig := h.Which("pkg-config")
	if pkgConfig == "" {
		return nil
	}

	test := "--exists"
	switch {
	case check.Exact != "":
		test = "--exact-version=" + check.Exact
	case check.AtLeast != "":
		test = "--atleast-version=" + check.AtLeast
	case check.Max != "":
		test = "--max-version=" + check.Max
	}

	if exec.Command(pkgConfig, test, name).Run() != nil {
		return nil
	}

	if check.AtLeast != "" && check.Max != "" {
		// both bounds were given, the first check only covered AtLeast
		if exec.Command(pkgConfig, "--max-version="+check.Max, name).Run() != nil {
			return nil
		}
	}

	result := &LibraryInfo{Variables: map[string]string{}}

	queries := []struct {
		flag  string
		strip string
		dest  *[]string
	}{
		{"--libs-only-L", "-L", &result.LibraryDirs},
		{"--libs-only-l", "-l", &result.Libraries},
		{"--libs-only-other", "", &result.LDFlags},
		{"--cflags-only-I", "-I", &result.IncludeDirs},
		{"--cflags-only-other", "", &result.CFlags},
	}
	for _, query := range queries {
		output, ok := pkgConfigOutput(pkgConfig, query.flag, name)
		if !ok {
			return nil
		}
		*query.dest = processFlags(output, query.strip)
	}

	variables, ok := pkgConfigOutput(pkgConfig, "--print-variables", name)
	if !ok {
		return nil
	}

	for _, variable := range strings.Fields(variables) {
		value, ok := pkgConfigOutput(pkgConfig, "--variable="+variable, name)
		if !ok {
			return nil
		}
		result.Variables[variable] = value
	}

	return result
}
