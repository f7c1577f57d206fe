package cmd

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bazelinit/bazel-init/pkg/autodetect"
	"github.com/bazelinit/bazel-init/pkg/builder"
	"github.com/bazelinit/bazel-init/pkg/logctx"
)

var configureCmd = &cobra.Command{
	Use:   "configure script output [input-config]",
	Short: "Runs the autodetection step of a package builder script",
	Long: `Loads the passed builder script, runs its autodetect() function against the
host and writes the detected variables to the output file. If an input config
is passed, its variables are visible to the script and carried over.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()

		script, err := builder.Load(ctx, args[0])
		if err != nil {
			return err
		}

		variables := map[string]any{}
		if len(args) > 2 {
			variables, err = builder.ReadVars(args[2])
			if err != nil {
				return err
			}
		}

		result, err := script.Autodetect(variables)
		if err != nil {
			var failure autodetect.Failure
			if eris.As(err, &failure) {
				return eris.Errorf("%s: %s", script.Package(), failure.Reason)
			}
			return err
		}

		logctx.Log(ctx).Info().
			Str("package", script.Package()).
			Int("variables", len(result)).
			Msg("Configuration done")
		return builder.WriteVars(args[1], result)
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
