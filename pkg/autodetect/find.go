package autodetect

import (
	"os/exec"
	"strings"
)

// BrewPrefix returns the installation prefix of a Homebrew package or an
// empty string when brew is missing or doesn't know the package.
func (h Helper) BrewPrefix(pkg string) string {
	brew := h.Which("brew")
	if brew == "" {
		return ""
	}

	output, err := exec.Command(brew, "--prefix", pkg).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// PortContents returns the file list of a MacPorts package or nil when port
// is missing or the package isn't installed.
func (h Helper) PortContents(pkg string) []string {
	port := h.Which("port")
	if port == "" {
		return nil
	}

	output, err := exec.Command(port, "-q", "contents", pkg).Output()
	if err != nil {
		return nil
	}

	result := []string{}
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}

// FindLibrary searches for a library through pkg-config first and falls back
// to Homebrew and MacPorts. The result is nil when nothing matched.
func (h Helper) FindLibrary(name string) *LibraryInfo {
	result := h.PkgConfig(name, VersionCheck{})
	if result != nil {
		return result
	}

	brewPrefix := h.BrewPrefix(name)
	if brewPrefix != "" {
		result = ReadPCAsLibrary(brewPrefix + "/lib/pkgconfig/" + name + ".pc")
		if result != nil {
			return result
		}

		// no .pc file shipped, return the conventional layout
		return &LibraryInfo{
			Variables: map[string]string{
				"prefix":      brewPrefix,
				"exec_prefix": brewPrefix,
				"libdir":      brewPrefix + "/lib",
				"includedir":  brewPrefix + "/include",
			},
		}
	}

	portFiles := h.PortContents(name)
	if len(portFiles) > 0 {
		for _, file := range portFiles {
			if strings.HasSuffix(file, ".pc") {
				result = ReadPCAsLibrary(file)
				if result != nil {
					break
				}
			}
		}

		if result == nil {
			result = &LibraryInfo{
				Variables: map[string]string{
					"prefix":      "/opt/local",
					"exec_prefix": "/opt/local",
					"libdir":      "/opt/local/lib",
					"includedir":  "/opt/local/include",
				},
			}
		}
		return result
	}

	return nil
}
