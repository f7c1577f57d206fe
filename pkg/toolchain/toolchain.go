// Package toolchain exposes the static per-platform C/C++ toolchain table.
// The table is pure data: it is loaded, validated and looked up but never
// computed. An unknown platform is a hard configuration error.
package toolchain

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// requiredTools are the entries every toolchain has to declare.
var requiredTools = []string{"cc", "ar", "ld", "nm", "objcopy", "objdump", "strip", "gcov"}

// Entry describes the toolchain of a single platform.
type Entry struct {
	Platform      string            `yaml:"platform"`
	Compiler      string            `yaml:"compiler"`
	Tools         map[string]string `yaml:"tools"`
	CompilerFlags []string          `yaml:"compiler_flags"`
	LinkerFlags   []string          `yaml:"linker_flags"`
	IncludeDirs   []string          `yaml:"include_dirs"`
}

// Table is the full toolchain descriptor.
type Table struct {
	Toolchains []Entry `yaml:"toolchains"`
}

// Parse reads and validates a toolchain table.
func Parse(content []byte) (*Table, error) {
	table := new(Table)
	err := yaml.Unmarshal(content, table)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse toolchain table")
	}

	err = table.Validate()
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Load reads a toolchain table from a file.
func Load(filename string) (*Table, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read toolchain table %s", filename)
	}
	return Parse(content)
}

// Default returns the embedded toolchain table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Validate checks the structural invariants: platform identifiers are unique
// and non-empty, every required tool is declared and no tool path is empty.
func (t *Table) Validate() error {
	seen := map[string]bool{}
	for _, entry := range t.Toolchains {
		if entry.Platform == "" {
			return eris.New("toolchain entry without a platform identifier")
		}
		if seen[entry.Platform] {
			return eris.Errorf("duplicate toolchain entry for platform %s", entry.Platform)
		}
		seen[entry.Platform] = true

		if entry.Compiler == "" {
			return eris.Errorf("toolchain %s doesn't declare a compiler family", entry.Platform)
		}

		for _, tool := range requiredTools {
			if entry.Tools[tool] == "" {
				return eris.Errorf("toolchain %s is missing the %s tool", entry.Platform, tool)
			}
		}

		for tool, path := range entry.Tools {
			if path == "" {
				return eris.Errorf("toolchain %s declares an empty path for %s", entry.Platform, tool)
			}
		}
	}
	return nil
}

// Select returns the entry for the given platform. There is no fallback; an
// unmatched platform is an error.
func (t *Table) Select(platform string) (*Entry, error) {
	for idx := range t.Toolchains {
		if t.Toolchains[idx].Platform == platform {
			return &t.Toolchains[idx], nil
		}
	}
	return nil, eris.Errorf("no toolchain entry for platform %s", platform)
}
