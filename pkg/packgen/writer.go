package packgen

import "path"

// PackageWriter scopes an Output to a single package directory and knows
// where the embedded resources of the install base live.
type PackageWriter struct {
	pkg         string
	installBase string
	out         Output
}

// NewPackageWriter returns a writer that places all files below pkg and
// resolves embedded resources relative to installBase.
func NewPackageWriter(out Output, pkg, installBase string) *PackageWriter {
	return &PackageWriter{
		pkg:         pkg,
		installBase: installBase,
		out:         out,
	}
}

// Package returns the package path this writer writes to.
func (p *PackageWriter) Package() string {
	return p.pkg
}

// ScratchFile creates a file inside the package directory.
func (p *PackageWriter) ScratchFile(name, content string) error {
	return p.out.ScratchFile(path.Join(p.pkg, name), content)
}

// BuildFile writes the package's BUILD file.
func (p *PackageWriter) BuildFile(content string) error {
	return p.ScratchFile("BUILD", content)
}

// WorkspacePart appends a fragment to the workspace-level WORKSPACE file.
func (p *PackageWriter) WorkspacePart(content string) error {
	return p.out.Append("WORKSPACE", content)
}

// CopyEmbedded copies a file that ships with the install base into the
// package, keeping its executable bit.
func (p *PackageWriter) CopyEmbedded(name string) error {
	return p.out.Copy(path.Join(p.pkg, name), path.Join(p.installBase, name))
}

// Close closes the underlying output.
func (p *PackageWriter) Close() error {
	return p.out.Close()
}
