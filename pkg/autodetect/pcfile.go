package autodetect

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var (
	pcLine = regexp.MustCompile(`^([a-zA-Z._-]*)\s*([=:])\s*(.*)$`)
	pcVar  = regexp.MustCompile(`\$\{([a-zA-Z._-]*)\}`)
)

// PCFile is a parsed pkg-config file: "Key: value" fields plus "var=value"
// variable definitions.
type PCFile struct {
	Fields    map[string]string
	Variables map[string]string
}

// ReadPC parses a .pc file. It returns nil when the file doesn't exist.
func ReadPC(filename string) (*PCFile, error) {
	hdl, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer hdl.Close()

	result := &PCFile{
		Fields:    map[string]string{},
		Variables: map[string]string{},
	}

	scanner := bufio.NewScanner(hdl)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		match := pcLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		if match[2] == ":" {
			result.Fields[match[1]] = match[3]
		} else {
			result.Variables[match[1]] = match[3]
		}
	}

	return result, scanner.Err()
}

// SubVariables replaces every ${var} reference in value with its entry from
// variables. Unknown variables expand to the empty string.
func SubVariables(value string, variables map[string]string) string {
	for pcVar.MatchString(value) {
		value = pcVar.ReplaceAllStringFunc(value, func(ref string) string {
			name := pcVar.FindStringSubmatch(ref)[1]
			return variables[name]
		})
	}
	return value
}

func resolveVariables(variables map[string]string) map[string]string {
	resolved := map[string]string{}
	for key, value := range variables {
		resolved[key] = SubVariables(value, variables)
	}
	return resolved
}

func extractFlags(flags string, variables map[string]string, include string, excludes []string) []string {
	result := []string{}
	for _, item := range strings.Fields(flags) {
		if include != "" {
			if strings.HasPrefix(item, include) {
				result = append(result, SubVariables(item[len(include):], variables))
			}
			continue
		}

		skip := false
		for _, exclude := range excludes {
			if strings.HasPrefix(item, exclude) {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, SubVariables(item, variables))
		}
	}
	return result
}

// ReadPCAsLibrary parses a .pc file directly, without the pkg-config binary,
// and returns the same result shape as Helper.PkgConfig. The result is nil
// when the file doesn't exist or can't be parsed.
func ReadPCAsLibrary(filename string) *LibraryInfo {
	pc, err := ReadPC(filename)
	if err != nil || pc == nil {
		return nil
	}

	variables := resolveVariables(pc.Variables)
	libs := pc.Fields["Libs"]
	cflags := pc.Fields["Cflags"]

	return &LibraryInfo{
		Variables:   variables,
		LibraryDirs: extractFlags(libs, variables, "-L", nil),
		Libraries:   extractFlags(libs, variables, "-l", nil),
		LDFlags:     extractFlags(libs, variables, "", []string{"-l", "-L"}),
		IncludeDirs: extractFlags(cflags, variables, "-I", nil),
		CFlags:      extractFlags(cflags, variables, "", []string{"-I"}),
	}
}
