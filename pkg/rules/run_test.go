package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	verb string
	args []string
	env  map[string]string
}

type fakeTool struct {
	calls []call
	fail  string
}

func (f *fakeTool) record(verb string, env map[string]string, args ...string) error {
	f.calls = append(f.calls, call{verb: verb, args: args, env: env})
	if f.fail == verb {
		return assert.AnError
	}
	return nil
}

func (f *fakeTool) Configure(ctx context.Context, src, out string, env map[string]string) error {
	return f.record("configure", env, src, out)
}

func (f *fakeTool) Generate(ctx context.Context, src, out, config, embedDir string) error {
	return f.record("generate", nil, src, out, config, embedDir)
}

func (f *fakeTool) Merge(ctx context.Context, out string, inputs []string) error {
	return f.record("merge", nil, append([]string{out}, inputs...)...)
}

func TestRunExecutesInDependencyOrder(t *testing.T) {
	graph := NewGraph()
	_, err := Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)
	_, err = Config{}.MergeArchives(graph, "all", []string{"tools"}, nil)
	require.NoError(t, err)

	tool := &fakeTool{}
	require.NoError(t, Run(context.Background(), graph, tool, "bazel-init", false))

	require.Len(t, tool.calls, 3)
	assert.Equal(t, "configure", tool.calls[0].verb)
	assert.Equal(t, []string{"tools.pkg", "bazel-init-tools.conf"}, tool.calls[0].args)
	assert.Equal(t, "/tmp", tool.calls[0].env["HOME"])

	assert.Equal(t, "generate", tool.calls[1].verb)
	assert.Equal(t, []string{"tools.pkg", "tools.zip", "bazel-init-tools.conf", DefaultEmbedDir}, tool.calls[1].args)

	assert.Equal(t, "merge", tool.calls[2].verb)
	assert.Equal(t, []string{"all.zip", "tools.zip"}, tool.calls[2].args)
}

func TestRunStopsOnFailure(t *testing.T) {
	graph := NewGraph()
	_, err := Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)

	tool := &fakeTool{fail: "configure"}
	err = Run(context.Background(), graph, tool, "bazel-init", false)
	require.Error(t, err)
	assert.Len(t, tool.calls, 1, "nothing may run after a failed node")
}

func TestRunDry(t *testing.T) {
	graph := NewGraph()
	_, err := Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)

	tool := &fakeTool{}
	require.NoError(t, Run(context.Background(), graph, tool, "bazel-init", true))
	assert.Empty(t, tool.calls)
}
