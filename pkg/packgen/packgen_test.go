package packgen

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, filename string) map[string]string {
	t.Helper()

	reader, err := zip.OpenReader(filename)
	require.NoError(t, err)
	defer reader.Close()

	result := map[string]string{}
	for _, entry := range reader.File {
		hdl, err := entry.Open()
		require.NoError(t, err)

		content, err := io.ReadAll(hdl)
		hdl.Close()
		require.NoError(t, err)

		result[entry.Name] = string(content)
	}
	return result
}

func buildPackage(t *testing.T, filename, pkg, workspacePart string) {
	t.Helper()

	output, err := NewZipOutput(filename)
	require.NoError(t, err)

	writer := NewPackageWriter(output, pkg, "")
	require.NoError(t, writer.BuildFile("# build file for "+pkg+"\n"))
	require.NoError(t, writer.ScratchFile("empty.c", ""))
	require.NoError(t, writer.WorkspacePart(workspacePart))
	require.NoError(t, writer.Close())
}

func TestZipOutputDeterministic(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "tools.zip")

	output, err := NewZipOutput(archive)
	require.NoError(t, err)
	require.NoError(t, output.ScratchFile("tools/BUILD", "content"))
	require.NoError(t, output.Close())

	reader, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 1)
	entry := reader.File[0]
	assert.Equal(t, "tools/BUILD", entry.Name)
	assert.Equal(t, epoch, entry.Modified.UTC())
	assert.Equal(t, os.FileMode(0o444), entry.Mode().Perm())
}

func TestZipOutputCopyKeepsExecutableBit(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "tool.sh")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

	archive := filepath.Join(dir, "out.zip")
	output, err := NewZipOutput(archive)
	require.NoError(t, err)
	require.NoError(t, output.Copy("pkg/tool.sh", tool))
	require.NoError(t, output.Close())

	reader, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, os.FileMode(0o555), reader.File[0].Mode().Perm())
}

func TestZipOutputCopyMissingTool(t *testing.T) {
	dir := t.TempDir()
	output, err := NewZipOutput(filepath.Join(dir, "out.zip"))
	require.NoError(t, err)
	defer output.Close()

	err = output.Copy("pkg/gone", filepath.Join(dir, "gone"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such tool")
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.zip")
	second := filepath.Join(dir, "second.zip")
	merged := filepath.Join(dir, "merged.zip")

	buildPackage(t, first, "tools/cpp", "# workspace part one")
	buildPackage(t, second, "tools/jdk", "# workspace part two")

	require.NoError(t, Merge(merged, []string{first, second}))

	content := readArchive(t, merged)
	assert.Contains(t, content, "tools/cpp/BUILD")
	assert.Contains(t, content, "tools/jdk/BUILD")
	assert.Contains(t, content, "tools/cpp/empty.c")
	assert.Contains(t, content, "tools/jdk/empty.c")

	workspace := content["WORKSPACE"]
	assert.Contains(t, workspace, "# workspace part one")
	assert.Contains(t, workspace, "# workspace part two")

	// only one WORKSPACE entry may survive the merge
	count := 0
	for name := range content {
		if name == "WORKSPACE" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMergeRequiresInputs(t *testing.T) {
	err := Merge(filepath.Join(t.TempDir(), "out.zip"), nil)
	require.Error(t, err)
}

func TestWorkspaceOutput(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "package_path")

	output, err := NewWorkspaceOutput(root)
	require.NoError(t, err)

	writer := NewPackageWriter(output, "tools/cpp", "")
	require.NoError(t, writer.BuildFile("# build\n"))
	require.NoError(t, writer.WorkspacePart("part one"))
	require.NoError(t, writer.WorkspacePart("part two"))
	require.NoError(t, writer.Close())

	build, err := os.ReadFile(filepath.Join(root, "tools", "cpp", "BUILD"))
	require.NoError(t, err)
	assert.Equal(t, "# build\n", string(build))

	workspace, err := os.ReadFile(filepath.Join(root, "WORKSPACE"))
	require.NoError(t, err)
	assert.Equal(t, "part one\npart two\n", string(workspace))
}
