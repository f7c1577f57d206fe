package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bazelinit/bazel-init/pkg/rules"
)

var buildCmd = &cobra.Command{
	Use:   "build rules-file",
	Short: "Evaluates a rules file and prints or runs the generation steps",
	Long: `Evaluates the bazel_init_package() and bazel_init_merge() calls in the passed
Starlark file. By default the resulting BUILD file content is printed. With
--exec the generation steps run directly against this binary instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()

		toolLabel, err := cmd.Flags().GetString("tool")
		if err != nil {
			return err
		}
		execSteps, err := cmd.Flags().GetBool("exec")
		if err != nil {
			return err
		}
		dryRun, err := cmd.Flags().GetBool("dry")
		if err != nil {
			return err
		}

		cfg := rules.Config{
			ToolLabel: toolLabel,
			EmbedDir:  viper.GetString("embed-dir"),
		}
		graph, err := rules.EvalFile(ctx, args[0], cfg)
		if err != nil {
			return err
		}

		if !execSteps {
			content, err := rules.RenderBuild(graph, cfg)
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		}

		binary, err := os.Executable()
		if err != nil {
			return err
		}
		tool := rules.ExecTool{Binary: binary}
		return rules.Run(ctx, graph, tool, binary, dryRun)
	},
}

func init() {
	buildCmd.Flags().String("tool", "//tools:bazel-init", "label of the tool referenced in the generated BUILD file")
	buildCmd.Flags().Bool("exec", false, "run the generation steps instead of printing the BUILD file")
	buildCmd.Flags().Bool("dry", false, "with --exec, only log the steps without running them")

	rootCmd.AddCommand(buildCmd)
}
