package rules

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	units "github.com/docker/go-units"
	"github.com/rotisserie/eris"

	"github.com/bazelinit/bazel-init/pkg/logctx"
)

// Tool is the external collaborator all generation nodes delegate to. The
// three verbs mirror the bazel-init command line; tests substitute a fake.
type Tool interface {
	Configure(ctx context.Context, src, out string, env map[string]string) error
	Generate(ctx context.Context, src, out, config, embedDir string) error
	Merge(ctx context.Context, out string, inputs []string) error
}

// Action is the work a generation node performs through the tool.
type Action interface {
	// Argv returns the tool invocation for rendered output.
	Argv(toolPath string) []string
	run(ctx context.Context, tool Tool, env map[string]string) error
}

// ConfigureAction runs the configure verb under the node's environment.
type ConfigureAction struct {
	Src string
	Out string
}

func (a ConfigureAction) Argv(toolPath string) []string {
	return []string{toolPath, "configure", a.Src, a.Out}
}

func (a ConfigureAction) run(ctx context.Context, tool Tool, env map[string]string) error {
	return tool.Configure(ctx, a.Src, a.Out, env)
}

// GenerateAction turns a source descriptor plus its configure output into an
// archive.
type GenerateAction struct {
	Src      string
	Out      string
	Config   string
	EmbedDir string
}

func (a GenerateAction) Argv(toolPath string) []string {
	return []string{toolPath, "generate", a.Src, a.Out, a.Config, a.EmbedDir}
}

func (a GenerateAction) run(ctx context.Context, tool Tool, env map[string]string) error {
	return tool.Generate(ctx, a.Src, a.Out, a.Config, a.EmbedDir)
}

// MergeAction combines several archives into one.
type MergeAction struct {
	Out    string
	Inputs []string
}

func (a MergeAction) Argv(toolPath string) []string {
	return append([]string{toolPath, "merge", a.Out}, a.Inputs...)
}

func (a MergeAction) run(ctx context.Context, tool Tool, env map[string]string) error {
	return tool.Merge(ctx, a.Out, a.Inputs)
}

// Run executes all nodes of the graph in dependency order. Failure handling
// is entirely up to the tool's exit status; the first failing node aborts the
// run. With dryRun set the commands are only logged.
func Run(ctx context.Context, g *Graph, tool Tool, toolPath string, dryRun bool) error {
	sorted, err := g.Sorted()
	if err != nil {
		return err
	}

	for _, node := range sorted {
		if err = ctx.Err(); err != nil {
			return err
		}

		logctx.Log(ctx).Info().
			Str("node", node.Name).
			Strs("cmd", node.Action.Argv(toolPath)).
			Msg("running generation step")

		if dryRun {
			continue
		}

		err = node.Action.run(ctx, tool, node.Env)
		if err != nil {
			return eris.Wrapf(err, "generation node %s failed", node.Name)
		}

		for _, out := range node.Outs {
			info, statErr := os.Stat(out)
			if statErr == nil {
				logctx.Log(ctx).Info().
					Str("node", node.Name).
					Msgf("wrote %s (%s)", out, units.HumanSize(float64(info.Size())))
			}
		}
	}
	return nil
}

// ExecTool invokes a real bazel-init binary.
type ExecTool struct {
	// Binary is the path of the executable, "bazel-init" by default.
	Binary string
	// Dir is the working directory for all invocations.
	Dir string
}

func (t ExecTool) binary() string {
	if t.Binary == "" {
		return "bazel-init"
	}
	return t.Binary
}

func (t ExecTool) invoke(ctx context.Context, env map[string]string, args ...string) error {
	cmd := exec.CommandContext(ctx, t.binary(), args...)
	cmd.Dir = t.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if len(env) > 0 {
		keys := make([]string, 0, len(env))
		for key := range env {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		cmd.Env = make([]string, 0, len(env))
		for _, key := range keys {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, env[key]))
		}
	}

	err := cmd.Run()
	if err != nil {
		return eris.Wrapf(err, "%s %s failed", filepath.Base(t.binary()), args[0])
	}
	return nil
}

func (t ExecTool) Configure(ctx context.Context, src, out string, env map[string]string) error {
	return t.invoke(ctx, env, "configure", src, out)
}

func (t ExecTool) Generate(ctx context.Context, src, out, config, embedDir string) error {
	return t.invoke(ctx, nil, "generate", src, out, config, embedDir)
}

func (t ExecTool) Merge(ctx context.Context, out string, inputs []string) error {
	return t.invoke(ctx, nil, append([]string{"merge", out}, inputs...)...)
}
