package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazelinit/bazel-init/pkg/autodetect"
	"github.com/bazelinit/bazel-init/pkg/buildgen"
)

const fromhostScript = `
def package():
    return "fromhost"

def autodetect(variables, detect):
    result = detect.find_library("libarchive")
    if result == None:
        detect.fail("unable to find libarchive")
    return result

def generate(variables, gen):
    gen.scratch_file(name = "empty.c")
    gen.rule(
        "cc_library",
        name = "libarchive",
        srcs = ["empty.c"],
        copts = variables["cflags"],
        includes = variables["include_dirs"],
        linkopts = variables["ldflags"] + [
            "-L" + d
            for d in variables["library_dirs"]
        ] + [
            "-l" + l
            for l in variables["libraries"]
        ],
    )
`

type fakePackage struct {
	files     map[string]string
	build     string
	workspace string
	embedded  []string
}

func (f *fakePackage) ScratchFile(name, content string) error {
	f.files[name] = content
	return nil
}

func (f *fakePackage) BuildFile(content string) error {
	f.build = content
	return nil
}

func (f *fakePackage) WorkspacePart(content string) error {
	f.workspace += content
	return nil
}

func (f *fakePackage) CopyEmbedded(name string) error {
	f.embedded = append(f.embedded, name)
	return nil
}

func writeScript(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "builder.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadScript(t *testing.T, content string) *Script {
	t.Helper()

	script, err := Load(context.Background(), writeScript(t, content))
	require.NoError(t, err)
	return script
}

func TestLoad(t *testing.T) {
	script := loadScript(t, fromhostScript)
	assert.Equal(t, "fromhost", script.Package())
}

func TestLoadRejectsMissingPackage(t *testing.T) {
	_, err := Load(context.Background(), writeScript(t, `x = 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package")
}

func TestAutodetectFailure(t *testing.T) {
	// an empty PATH means find_library can't succeed
	t.Setenv("PATH", t.TempDir())

	script := loadScript(t, fromhostScript)
	_, err := script.Autodetect(nil)
	require.Error(t, err)

	var failure autodetect.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "unable to find libarchive", failure.Reason)
}

func TestAutodetectReturnsVariables(t *testing.T) {
	script := loadScript(t, `
def package():
    return "tools/test"

def autodetect(variables, detect):
    return {
        "seen": variables.get("input", "missing"),
        "order": detect.version_compare("1.7.0", "2"),
    }

def generate(variables, gen):
    pass
`)

	variables, err := script.Autodetect(map[string]any{"input": "value"})
	require.NoError(t, err)
	assert.Equal(t, "value", variables["seen"])
	assert.Equal(t, -1, variables["order"])
}

func TestGenerate(t *testing.T) {
	script := loadScript(t, fromhostScript)

	variables := map[string]any{
		"cflags":       []any{},
		"include_dirs": []any{"/usr/local/include"},
		"ldflags":      []any{},
		"library_dirs": []any{"/usr/local/lib"},
		"libraries":    []any{"archive"},
	}

	helper := buildgen.NewHelper(script.Package())
	require.NoError(t, script.Generate(variables, helper))

	out := &fakePackage{files: map[string]string{}}
	require.NoError(t, helper.Generate(out))

	assert.Contains(t, out.files, "empty.c")
	assert.Contains(t, out.build, `cc_library(`)
	assert.Contains(t, out.build, `"-larchive",`)
	assert.Contains(t, out.build, `"-L/usr/local/lib",`)
}

func TestGenerateGlobAndSelect(t *testing.T) {
	script := loadScript(t, `
def package():
    return "tools/glob"

def autodetect(variables, detect):
    return {}

def generate(variables, gen):
    gen.rule(
        "filegroup",
        name = "sources",
        srcs = glob(include = ["**/*.c"], exclude = ["test/*"]),
        data = select({
            "//conditions:default": ["default.txt"],
        }),
    )
`)

	helper := buildgen.NewHelper(script.Package())
	require.NoError(t, script.Generate(nil, helper))

	out := &fakePackage{files: map[string]string{}}
	require.NoError(t, helper.Generate(out))

	assert.Contains(t, out.build, "glob(")
	assert.Contains(t, out.build, `"**/*.c",`)
	assert.Contains(t, out.build, "select({")
}

func TestNewRepository(t *testing.T) {
	script := loadScript(t, `
def package():
    return "tools/jdk"

def autodetect(variables, detect):
    return {}

def generate(variables, gen):
    repo = gen.new_repository(
        "new_local_repository",
        name = "jdk",
        path = variables["java_home"],
    )
    repo.rule("filegroup", name = "jni_header", srcs = ["include/jni.h"])
`)

	helper := buildgen.NewHelper(script.Package())
	require.NoError(t, script.Generate(map[string]any{"java_home": "/usr/lib/jvm/default"}, helper))

	out := &fakePackage{files: map[string]string{}}
	require.NoError(t, helper.Generate(out))

	assert.Contains(t, out.files, "BUILD.jdk")
	assert.Contains(t, out.files["BUILD.jdk"], "jni_header")
	assert.Contains(t, out.workspace, `path = "/usr/lib/jvm/default",`)
}

func TestVarsRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bazel-init-test.conf")

	variables := map[string]any{
		"libraries": []any{"archive"},
		"variables": map[string]any{"prefix": "/usr/local"},
	}
	require.NoError(t, WriteVars(path, variables))

	loaded, err := ReadVars(path)
	require.NoError(t, err)
	assert.Equal(t, variables, loaded)

	_, err = ReadVars(filepath.Join(t.TempDir(), "gone.conf"))
	require.Error(t, err)
}
