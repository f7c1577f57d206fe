package cmd

import (
	"context"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bazelinit/bazel-init/pkg/autodetect"
	"github.com/bazelinit/bazel-init/pkg/builder"
	"github.com/bazelinit/bazel-init/pkg/logctx"
	"github.com/bazelinit/bazel-init/pkg/packgen"
)

var standaloneCmd = &cobra.Command{
	Use:   "standalone script...",
	Short: "Configures and generates several packages into a workspace directory",
	Long: `Runs the configure and generate steps for all passed builder scripts in one
go and writes the results to a plain workspace directory instead of package
archives. Packages whose autodetection fails are skipped with a warning.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()

		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
		if outDir == "" {
			id, err := nanoid.Generate(nanoid.DefaultAlphabet, 8)
			if err != nil {
				return err
			}
			outDir = "bazel-init-workspace-" + id
		}

		output, err := packgen.NewWorkspaceOutput(outDir)
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(args)), "Generating packages")
		written := 0
		for _, filename := range args {
			err = standalonePackage(ctx, filename, output)
			if err != nil {
				var failure autodetect.Failure
				if !eris.As(err, &failure) {
					output.Close()
					return err
				}
				logctx.Log(ctx).Warn().
					Str("script", filename).
					Msgf("Skipped: %s", failure.Reason)
			} else {
				written++
			}

			err = bar.Add(1)
			if err != nil {
				output.Close()
				return err
			}
		}

		err = output.Close()
		if err != nil {
			return err
		}

		logctx.Log(ctx).Info().
			Int("packages", written).
			Msgf("Wrote workspace %s", outDir)
		return nil
	},
}

func standalonePackage(ctx context.Context, filename string, output packgen.Output) error {
	script, err := builder.Load(ctx, filename)
	if err != nil {
		return err
	}

	variables, err := script.Autodetect(map[string]any{})
	if err != nil {
		return err
	}

	return generatePackage(script, variables, output, viper.GetString("embed-dir"))
}

func init() {
	standaloneCmd.Flags().String("out", "", "output directory, a random workspace directory by default")

	rootCmd.AddCommand(standaloneCmd)
}
