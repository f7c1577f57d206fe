// Package rules declares the generation nodes that wrap the bazel-init tool.
// The macros in this package only wire up the build graph; all real work
// (configuring, generating and merging archives) happens in the tool itself,
// which is injected behind the Tool interface.
package rules

import (
	"github.com/rotisserie/eris"
)

// Fixed environment for the configure step. The restricted PATH keeps host
// configuration from leaking into the generated archives.
var configureEnv = map[string]string{
	"HOME": "/tmp",
	"PATH": "/usr/bin:/usr/local/bin:/bin",
}

// DefaultEmbedDir is where the embedded resources are expected relative to
// the execution root. The location is historical; override it through
// Config.EmbedDir instead of relying on it.
const DefaultEmbedDir = "../_embedded_binaries"

// Config carries the settings shared by all rule macros.
type Config struct {
	// ToolLabel is the label or path of the bazel-init binary referenced by
	// the generated nodes.
	ToolLabel string
	// EmbedDir is the embedded-resources directory passed to generate steps.
	EmbedDir string
}

func (c Config) embedDir() string {
	if c.EmbedDir == "" {
		return DefaultEmbedDir
	}
	return c.EmbedDir
}

// GenNode is a single generation step: declared inputs, outputs and the tool
// action to run.
type GenNode struct {
	Name       string
	Srcs       []string
	Outs       []string
	Deps       []string
	Env        map[string]string
	Visibility []string
	Action     Action
}

// Graph collects generation nodes and enforces unique node names.
type Graph struct {
	nodes []*GenNode
	index map[string]*GenNode
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: map[string]*GenNode{}}
}

// Add inserts a node into the graph.
func (g *Graph) Add(node *GenNode) error {
	if node.Name == "" {
		return eris.New("generation nodes need a name")
	}

	if _, present := g.index[node.Name]; present {
		return eris.Errorf("a node named %s already exists", node.Name)
	}

	g.nodes = append(g.nodes, node)
	g.index[node.Name] = node
	return nil
}

// Get returns the node with the given name or nil.
func (g *Graph) Get(name string) *GenNode {
	return g.index[name]
}

// Nodes returns all nodes in declaration order.
func (g *Graph) Nodes() []*GenNode {
	return g.nodes
}

// Sorted returns the nodes in dependency order. Dependencies that don't name
// a node in the graph are assumed to be pre-existing files and ignored.
func (g *Graph) Sorted() ([]*GenNode, error) {
	result := make([]*GenNode, 0, len(g.nodes))
	state := map[string]int{}

	var visit func(node *GenNode) error
	visit = func(node *GenNode) error {
		switch state[node.Name] {
		case 2:
			return nil
		case 1:
			return eris.Errorf("dependency cycle through node %s", node.Name)
		}

		state[node.Name] = 1
		for _, dep := range node.Deps {
			depNode := g.index[dep]
			if depNode == nil {
				continue
			}

			err := visit(depNode)
			if err != nil {
				return err
			}
		}

		state[node.Name] = 2
		result = append(result, node)
		return nil
	}

	for _, node := range g.nodes {
		err := visit(node)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
