package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedGraph(t *testing.T, visibility []string) string {
	t.Helper()

	graph := NewGraph()
	cfg := Config{ToolLabel: "//tools:bazel-init"}
	_, err := cfg.ConfigArchive(graph, "cpp", "cpp.pkg", visibility)
	require.NoError(t, err)
	_, err = cfg.MergeArchives(graph, "all", []string{"cpp"}, nil)
	require.NoError(t, err)

	content, err := RenderBuild(graph, cfg)
	require.NoError(t, err)
	return content
}

func TestRenderBuild(t *testing.T) {
	content := renderedGraph(t, nil)

	assert.Contains(t, content, `name = "cpp-configure",`)
	assert.Contains(t, content, `name = "cpp",`)
	assert.Contains(t, content, `name = "all",`)
	assert.Contains(t, content, `"bazel-init-cpp.conf",`)
	assert.Contains(t, content, `"cpp.zip",`)
	assert.Contains(t, content, `"all.zip",`)

	// the configure step runs under a fixed environment
	assert.Contains(t, content, "HOME=/tmp PATH=/usr/bin:/usr/local/bin:/bin $(location //tools:bazel-init) configure")
	// inputs and outputs go through genrule expansion
	assert.Contains(t, content, "$(location cpp.pkg)")
	assert.Contains(t, content, "$@")
	assert.Contains(t, content, `"//tools:bazel-init",`)
}

func TestRenderBuildVisibility(t *testing.T) {
	plain := renderedGraph(t, nil)
	visible := renderedGraph(t, []string{"//visibility:public"})

	assert.NotContains(t, plain, "visibility")
	assert.Contains(t, visible, `visibility = [
        "//visibility:public",
    ],`)

	// visibility only adds exposure, the commands stay identical
	assert.Contains(t, visible, "configure")
	assert.Contains(t, visible, "merge")
}

func TestRenderBuildNeedsToolLabel(t *testing.T) {
	graph := NewGraph()
	_, err := RenderBuild(graph, Config{})
	require.Error(t, err)
}
