package buildgen

import (
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

const buildHeader = `# This file was auto-generated. Do not edit.
# If you wish to overwrite this package, copy the package
# into your workspace
package(default_visibility = ["//visibility:public"])
`

// PackageOutput is the destination a Helper generates into. It is implemented
// by packgen.PackageWriter.
type PackageOutput interface {
	ScratchFile(name, content string) error
	BuildFile(content string) error
	WorkspacePart(content string) error
	CopyEmbedded(name string) error
}

// Helper collects the build rules, scratch files and workspace entries that a
// package builder declares and renders them into a package.
type Helper struct {
	pkg    string
	parent *Helper

	rules        []*Call
	workspace    []*Call
	bindings     map[string]*Call
	bindingOrder []string
	repos        map[string]*Helper
	repoOrder    []string
	embedded     []string
	files        map[string]string
	fileOrder    []string
}

// NewHelper creates a helper for the given package path.
func NewHelper(pkg string) *Helper {
	return &Helper{
		pkg:      pkg,
		bindings: map[string]*Call{},
		repos:    map[string]*Helper{},
		files:    map[string]string{},
	}
}

// Package returns the package path of this helper.
func (h *Helper) Package() string {
	return h.pkg
}

// Rule declares a build rule and returns its label. The attributes must
// contain a name.
func (h *Helper) Rule(kind string, attrs ...Attr) (Label, error) {
	name := ""
	for _, attr := range attrs {
		if attr.Name == "name" {
			value, ok := attr.Value.(string)
			if !ok {
				return Label{}, eris.Errorf("the name of a %s rule must be a string, not %T", kind, attr.Value)
			}
			name = value
		}
	}

	if name == "" {
		return Label{}, eris.Errorf("missing name attribute on %s rule", kind)
	}

	h.rules = append(h.rules, NewCall(kind, attrs...))
	return Label{Package: h.pkg, Name: name, parent: h.parent}, nil
}

// ExportsEmbedded marks a file that ships with the install base for copying
// into the package and exports it from the BUILD file.
func (h *Helper) ExportsEmbedded(name string) {
	h.embedded = append(h.embedded, name)
	h.rules = append(h.rules, &Call{Kind: "exports_files", Positional: []string{name}})
}

// ScratchFile registers an extra file to write next to the BUILD file.
func (h *Helper) ScratchFile(name, content string) {
	if _, present := h.files[name]; !present {
		h.fileOrder = append(h.fileOrder, name)
	}
	h.files[name] = content
}

// NewRepository declares a repository rule that needs a generated build file
// (new_local_repository and friends) and returns a helper for that build
// file's content.
func (h *Helper) NewRepository(kind string, attrs ...Attr) (*Helper, error) {
	name := ""
	for _, attr := range attrs {
		if attr.Name == "name" {
			value, ok := attr.Value.(string)
			if !ok {
				return nil, eris.Errorf("the name of a %s repository must be a string, not %T", kind, attr.Value)
			}
			name = value
		}
	}

	if name == "" {
		return nil, eris.Errorf("missing name attribute on %s repository", kind)
	}

	if _, present := h.repos[name]; present {
		return nil, eris.Errorf("repository %s declared twice", name)
	}

	scopedName := strings.ReplaceAll(h.pkg, "/", "-") + "-" + name
	rewritten := make([]Attr, 0, len(attrs)+1)
	for _, attr := range attrs {
		if attr.Name == "name" {
			attr.Value = scopedName
		}
		rewritten = append(rewritten, attr)
	}
	rewritten = append(rewritten, Attr{Name: "build_file", Value: path.Join(h.pkg, "BUILD."+name)})

	h.workspace = append(h.workspace, NewCall(kind, rewritten...))

	repo := NewHelper("@" + scopedName)
	repo.parent = h
	h.repos[name] = repo
	h.repoOrder = append(h.repoOrder, name)
	return repo, nil
}

// Bind registers a workspace-level bind() from //external to the given rule
// and returns the external label.
func (h *Helper) Bind(pkg, name string) string {
	if _, present := h.bindings[name]; !present {
		h.bindings[name] = NewCall("bind",
			Attr{Name: "name", Value: h.pkg + "/" + name},
			Attr{Name: "actual", Value: pkg + ":" + name},
		)
		h.bindingOrder = append(h.bindingOrder, name)
	}
	return "//external:" + h.pkg + "/" + name
}

func (h *Helper) buildFile() (string, error) {
	builder := strings.Builder{}
	builder.WriteString(buildHeader)

	for _, rule := range h.rules {
		rendered, err := rule.Render()
		if err != nil {
			return "", err
		}
		builder.WriteString("\n" + rendered)
	}
	return builder.String(), nil
}

func (h *Helper) workspaceFile() (string, error) {
	builder := strings.Builder{}
	builder.WriteString("#\n# Generated part from package " + h.pkg + "\n#\n")

	for _, rule := range h.workspace {
		rendered, err := rule.Render()
		if err != nil {
			return "", err
		}
		builder.WriteString("\n" + rendered)
	}

	for _, name := range h.bindingOrder {
		rendered, err := h.bindings[name].Render()
		if err != nil {
			return "", err
		}
		builder.WriteString("\n" + rendered)
	}
	return builder.String(), nil
}

// Generate writes the collected package content through the given output.
func (h *Helper) Generate(out PackageOutput) error {
	content, err := h.buildFile()
	if err != nil {
		return err
	}

	err = out.BuildFile(content)
	if err != nil {
		return err
	}

	for _, name := range h.repoOrder {
		content, err = h.repos[name].buildFile()
		if err != nil {
			return err
		}

		err = out.ScratchFile("BUILD."+name, content)
		if err != nil {
			return err
		}
	}

	for _, name := range h.embedded {
		err = out.CopyEmbedded(name)
		if err != nil {
			return err
		}
	}

	for _, name := range h.fileOrder {
		err = out.ScratchFile(name, h.files[name])
		if err != nil {
			return err
		}
	}

	content, err = h.workspaceFile()
	if err != nil {
		return err
	}
	return out.WorkspacePart(content)
}
