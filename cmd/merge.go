package cmd

import (
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/bazelinit/bazel-init/pkg/logctx"
	"github.com/bazelinit/bazel-init/pkg/packgen"
)

var mergeCmd = &cobra.Command{
	Use:   "merge output input...",
	Short: "Merges several package archives into one",
	Long: `Combines the passed package archives into a single archive. The WORKSPACE
entries of all inputs are concatenated, everything else is copied as is.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()

		err := packgen.Merge(args[0], args[1:])
		if err != nil {
			return err
		}

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		logctx.Log(ctx).Info().
			Int("inputs", len(args)-1).
			Str("size", units.HumanSize(float64(info.Size()))).
			Msgf("Wrote %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
