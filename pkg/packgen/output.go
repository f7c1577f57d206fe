// Package packgen writes generated workspace packages either into a
// deterministic zip archive or directly into a directory tree.
package packgen

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

// Archive entries carry a fixed timestamp so two runs over the same inputs
// produce byte-identical archives.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Output receives the files of a generated package.
type Output interface {
	// ScratchFile creates a file with the given content.
	ScratchFile(name, content string) error
	// Copy copies an existing file into the output, keeping the executable bit.
	Copy(name, srcPath string) error
	// Append appends to an existing file or creates it.
	Append(name, content string) error
	Close() error
}

// ZipOutput collects package files in a zip archive.
type ZipOutput struct {
	hdl    io.Closer
	writer *zip.Writer

	// WORKSPACE content is accumulated and written as the last entry so that
	// Append calls don't have to rewrite earlier entries.
	appended map[string]string
	order    []string
}

// NewZipOutput creates the archive file and returns a writer for it.
func NewZipOutput(filename string) (*ZipOutput, error) {
	hdl, err := os.Create(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create archive %s", filename)
	}

	return &ZipOutput{
		hdl:      hdl,
		writer:   zip.NewWriter(hdl),
		appended: map[string]string{},
	}, nil
}

func (z *ZipOutput) writeEntry(name, content string, mode os.FileMode) error {
	hdr := &zip.FileHeader{
		Name:     path.Clean(filepath.ToSlash(name)),
		Method:   zip.Deflate,
		Modified: epoch,
	}
	hdr.SetMode(mode)

	entry, err := z.writer.CreateHeader(hdr)
	if err != nil {
		return eris.Wrapf(err, "failed to create archive entry %s", name)
	}

	_, err = io.WriteString(entry, content)
	if err != nil {
		return eris.Wrapf(err, "failed to write archive entry %s", name)
	}
	return nil
}

func (z *ZipOutput) ScratchFile(name, content string) error {
	return z.writeEntry(name, content, 0o444)
}

func (z *ZipOutput) Copy(name, srcPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return eris.Errorf("no such tool: %s", srcPath)
		}
		return eris.Wrapf(err, "failed to check %s", srcPath)
	}

	mode := os.FileMode(0o444)
	if info.Mode()&0o100 != 0 {
		mode = 0o555
	}

	content, err := os.ReadFile(srcPath)
	if err != nil {
		return eris.Wrapf(err, "failed to read %s", srcPath)
	}

	return z.writeEntry(name, string(content), mode)
}

func (z *ZipOutput) Append(name, content string) error {
	name = path.Clean(filepath.ToSlash(name))
	if _, present := z.appended[name]; !present {
		z.order = append(z.order, name)
	}

	z.appended[name] += content + "\n"
	return nil
}

// Close flushes the accumulated appendable entries and the archive index.
func (z *ZipOutput) Close() error {
	for _, name := range z.order {
		err := z.writeEntry(name, z.appended[name], 0o444)
		if err != nil {
			z.writer.Close()
			z.hdl.Close()
			return err
		}
	}

	err := z.writer.Close()
	if err != nil {
		z.hdl.Close()
		return eris.Wrap(err, "failed to finalize archive")
	}

	return z.hdl.Close()
}

// WorkspaceOutput writes package files into a directory tree, suitable for
// use as an extra package path entry.
type WorkspaceOutput struct {
	root string
}

// NewWorkspaceOutput ensures the output directory exists.
func NewWorkspaceOutput(root string) (*WorkspaceOutput, error) {
	err := os.MkdirAll(root, 0o700)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create workspace directory %s", root)
	}

	return &WorkspaceOutput{root: root}, nil
}

func (w *WorkspaceOutput) prepare(name string) (string, error) {
	dest := filepath.Join(w.root, filepath.FromSlash(name))
	err := os.MkdirAll(filepath.Dir(dest), 0o700)
	if err != nil {
		return "", eris.Wrapf(err, "failed to create parent directory for %s", name)
	}
	return dest, nil
}

func (w *WorkspaceOutput) ScratchFile(name, content string) error {
	dest, err := w.prepare(name)
	if err != nil {
		return err
	}

	err = os.WriteFile(dest, []byte(content), 0o600)
	if err != nil {
		return eris.Wrapf(err, "failed to write %s", dest)
	}
	return nil
}

func (w *WorkspaceOutput) Copy(name, srcPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return eris.Errorf("no such tool: %s", srcPath)
		}
		return eris.Wrapf(err, "failed to check %s", srcPath)
	}

	dest, err := w.prepare(name)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(srcPath)
	if err != nil {
		return eris.Wrapf(err, "failed to read %s", srcPath)
	}

	mode := os.FileMode(0o600)
	if info.Mode()&0o100 != 0 {
		mode = 0o700
	}

	err = os.WriteFile(dest, content, mode)
	if err != nil {
		return eris.Wrapf(err, "failed to write %s", dest)
	}
	return nil
}

func (w *WorkspaceOutput) Append(name, content string) error {
	dest, err := w.prepare(name)
	if err != nil {
		return err
	}

	hdl, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s", dest)
	}
	defer hdl.Close()

	_, err = io.WriteString(hdl, content+"\n")
	if err != nil {
		return eris.Wrapf(err, "failed to append to %s", dest)
	}
	return nil
}

func (w *WorkspaceOutput) Close() error {
	return nil
}
