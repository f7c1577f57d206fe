package rules

import (
	"github.com/rotisserie/eris"
)

// ConfigName returns the name of the intermediate configuration file of a
// package archive.
func ConfigName(name string) string {
	return "bazel-init-" + name + ".conf"
}

// ArchiveName returns the name of the final archive artifact.
func ArchiveName(name string) string {
	return name + ".zip"
}

// ConfigArchive declares the two chained generation steps of a configuration
// archive: a configure node producing bazel-init-<name>.conf under a fixed
// environment, and a generate node that turns the source plus that
// configuration into <name>.zip. The returned node is the final one.
// Visibility only affects exposure of the final artifact, never the
// dependency structure.
func (c Config) ConfigArchive(g *Graph, name, src string, visibility []string) (*GenNode, error) {
	if name == "" {
		return nil, eris.New("config archives need a name")
	}
	if src == "" {
		return nil, eris.Errorf("config archive %s needs a source descriptor", name)
	}

	confFile := ConfigName(name)
	configure := &GenNode{
		Name: name + "-configure",
		Srcs: []string{src},
		Outs: []string{confFile},
		Env:  configureEnv,
		Action: ConfigureAction{
			Src: src,
			Out: confFile,
		},
	}

	err := g.Add(configure)
	if err != nil {
		return nil, err
	}

	generate := &GenNode{
		Name:       name,
		Srcs:       []string{src, confFile},
		Outs:       []string{ArchiveName(name)},
		Deps:       []string{configure.Name},
		Visibility: visibility,
		Action: GenerateAction{
			Src:      src,
			Out:      ArchiveName(name),
			Config:   confFile,
			EmbedDir: c.embedDir(),
		},
	}

	err = g.Add(generate)
	if err != nil {
		return nil, err
	}
	return generate, nil
}

// MergeArchives declares a single node that merges the archives of all given
// dependencies into <name>.zip. The dependency list names other nodes in the
// graph (or pre-existing archives) and must not be empty.
func (c Config) MergeArchives(g *Graph, name string, deps []string, visibility []string) (*GenNode, error) {
	if name == "" {
		return nil, eris.New("merged archives need a name")
	}
	if len(deps) == 0 {
		return nil, eris.Errorf("merged archive %s needs at least one dependency", name)
	}

	srcs := make([]string, len(deps))
	for idx, dep := range deps {
		srcs[idx] = ArchiveName(dep)
	}

	merge := &GenNode{
		Name:       name,
		Srcs:       srcs,
		Outs:       []string{ArchiveName(name)},
		Deps:       deps,
		Visibility: visibility,
		Action: MergeAction{
			Out:    ArchiveName(name),
			Inputs: srcs,
		},
	}

	err := g.Add(merge)
	if err != nil {
		return nil, err
	}
	return merge, nil
}
