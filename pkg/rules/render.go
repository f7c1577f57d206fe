package rules

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"

	"github.com/bazelinit/bazel-init/pkg/buildgen"
)

// shellCommand renders env assignments plus an argv into a single, properly
// quoted shell command line.
func shellCommand(env map[string]string, argv []string) (string, error) {
	call := new(syntax.CallExpr)

	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		assign := new(syntax.Assign)
		assign.Name = &syntax.Lit{Value: key}
		assign.Value = &syntax.Word{Parts: []syntax.WordPart{wordPart(env[key])}}
		call.Assigns = append(call.Assigns, assign)
	}

	call.Args = make([]*syntax.Word, len(argv))
	for idx, arg := range argv {
		call.Args[idx] = &syntax.Word{Parts: []syntax.WordPart{wordPart(arg)}}
	}

	buffer := strings.Builder{}
	printer := syntax.NewPrinter(syntax.Minify(true))
	err := printer.Print(&buffer, call)
	if err != nil {
		return "", eris.Wrap(err, "failed to print command")
	}
	return buffer.String(), nil
}

func wordPart(value string) syntax.WordPart {
	// genrule variables like $@ and $(location ...) have to survive verbatim,
	// so they stay unquoted
	if strings.HasPrefix(value, "$") || !strings.ContainsAny(value, " '\"") {
		return &syntax.Lit{Value: value}
	}
	return &syntax.SglQuoted{Value: value}
}

func location(artifact string) string {
	return "$(location " + artifact + ")"
}

// RenderBuild renders the graph as genrule declarations. The node commands
// reference the configured tool label and use genrule location expansion for
// all inputs and outputs.
func RenderBuild(g *Graph, cfg Config) (string, error) {
	tool := cfg.ToolLabel
	if tool == "" {
		return "", eris.New("rendering needs a tool label")
	}

	builder := strings.Builder{}
	builder.WriteString("# This file was auto-generated. Do not edit.\n")

	for _, node := range g.Nodes() {
		argv := renderArgv(node, tool)
		cmd, err := shellCommand(node.Env, argv)
		if err != nil {
			return "", eris.Wrapf(err, "failed to render node %s", node.Name)
		}

		attrs := []buildgen.Attr{
			{Name: "name", Value: node.Name},
			{Name: "srcs", Value: node.Srcs},
			{Name: "outs", Value: node.Outs},
			{Name: "cmd", Value: cmd},
			{Name: "tools", Value: []string{tool}},
		}
		if len(node.Visibility) > 0 {
			attrs = append(attrs, buildgen.Attr{Name: "visibility", Value: node.Visibility})
		}

		rendered, err := buildgen.NewCall("genrule", attrs...).Render()
		if err != nil {
			return "", err
		}

		builder.WriteString("\n" + rendered)
	}
	return builder.String(), nil
}

// renderArgv maps the node's action onto genrule placeholders: the single
// output becomes $@ and declared sources go through $(location ...).
func renderArgv(node *GenNode, tool string) []string {
	locations := map[string]string{}
	for _, src := range node.Srcs {
		locations[src] = location(src)
	}
	for _, out := range node.Outs {
		locations[out] = "$@"
	}

	argv := node.Action.Argv("$(location " + tool + ")")
	result := make([]string, len(argv))
	for idx, arg := range argv {
		if replacement, present := locations[arg]; present {
			result[idx] = replacement
		} else {
			result[idx] = arg
		}
	}
	return result
}
