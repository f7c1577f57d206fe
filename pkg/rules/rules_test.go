package rules

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigArchive(t *testing.T) {
	graph := NewGraph()
	final, err := Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)

	require.Len(t, graph.Nodes(), 2, "a config archive consists of exactly two nodes")

	configure := graph.Get("tools-configure")
	require.NotNil(t, configure)
	assert.Equal(t, []string{"tools.pkg"}, configure.Srcs)
	assert.Equal(t, []string{"bazel-init-tools.conf"}, configure.Outs)
	assert.Equal(t, "/tmp", configure.Env["HOME"])
	assert.Equal(t, "/usr/bin:/usr/local/bin:/bin", configure.Env["PATH"])

	assert.Equal(t, "tools", final.Name)
	assert.Equal(t, []string{"tools.pkg", "bazel-init-tools.conf"}, final.Srcs)
	assert.Equal(t, []string{"tools.zip"}, final.Outs)
	assert.Equal(t, []string{"tools-configure"}, final.Deps, "generate must depend on the configure output")

	action, ok := final.Action.(GenerateAction)
	require.True(t, ok)
	assert.Equal(t, DefaultEmbedDir, action.EmbedDir)
}

func TestConfigArchiveEmbedDirOverride(t *testing.T) {
	graph := NewGraph()
	final, err := Config{EmbedDir: "/opt/bazel/embedded"}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)

	action := final.Action.(GenerateAction)
	assert.Equal(t, "/opt/bazel/embedded", action.EmbedDir)
}

func TestConfigArchiveValidation(t *testing.T) {
	graph := NewGraph()

	_, err := Config{}.ConfigArchive(graph, "", "tools.pkg", nil)
	require.Error(t, err)

	_, err = Config{}.ConfigArchive(graph, "tools", "", nil)
	require.Error(t, err)

	_, err = Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.NoError(t, err)
	_, err = Config{}.ConfigArchive(graph, "tools", "tools.pkg", nil)
	require.Error(t, err, "duplicate names must be rejected")
}

func TestVisibilityDoesNotChangeStructure(t *testing.T) {
	plain := NewGraph()
	_, err := Config{}.ConfigArchive(plain, "tools", "tools.pkg", nil)
	require.NoError(t, err)

	visible := NewGraph()
	_, err = Config{}.ConfigArchive(visible, "tools", "tools.pkg", []string{"//visibility:public"})
	require.NoError(t, err)

	require.Len(t, visible.Nodes(), len(plain.Nodes()))
	for idx, node := range plain.Nodes() {
		other := visible.Nodes()[idx]
		assert.Equal(t, node.Name, other.Name)
		assert.Equal(t, node.Srcs, other.Srcs)
		assert.Equal(t, node.Outs, other.Outs)
		assert.Equal(t, node.Deps, other.Deps)
		assert.True(t, reflect.DeepEqual(node.Action, other.Action))
	}
}

func TestMergeArchives(t *testing.T) {
	graph := NewGraph()
	_, err := Config{}.ConfigArchive(graph, "cpp", "cpp.pkg", nil)
	require.NoError(t, err)
	_, err = Config{}.ConfigArchive(graph, "jdk", "jdk.pkg", nil)
	require.NoError(t, err)

	node, err := Config{}.MergeArchives(graph, "all", []string{"cpp", "jdk"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"all.zip"}, node.Outs)
	assert.Equal(t, []string{"cpp.zip", "jdk.zip"}, node.Srcs)

	_, err = Config{}.MergeArchives(graph, "empty", nil, nil)
	require.Error(t, err, "merge needs at least one dependency")

	_, err = Config{}.MergeArchives(graph, "", []string{"cpp"}, nil)
	require.Error(t, err)
}

func TestGraphSorted(t *testing.T) {
	graph := NewGraph()
	_, err := Config{}.ConfigArchive(graph, "cpp", "cpp.pkg", nil)
	require.NoError(t, err)
	_, err = Config{}.MergeArchives(graph, "all", []string{"cpp", "prebuilt"}, nil)
	require.NoError(t, err)

	sorted, err := graph.Sorted()
	require.NoError(t, err)

	position := map[string]int{}
	for idx, node := range sorted {
		position[node.Name] = idx
	}

	assert.Less(t, position["cpp-configure"], position["cpp"])
	assert.Less(t, position["cpp"], position["all"])
}

func TestGraphCycle(t *testing.T) {
	graph := NewGraph()
	require.NoError(t, graph.Add(&GenNode{Name: "a", Deps: []string{"b"}, Action: MergeAction{}}))
	require.NoError(t, graph.Add(&GenNode{Name: "b", Deps: []string{"a"}, Action: MergeAction{}}))

	_, err := graph.Sorted()
	require.Error(t, err)
}
