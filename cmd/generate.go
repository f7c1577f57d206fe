package cmd

import (
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/bazelinit/bazel-init/pkg/builder"
	"github.com/bazelinit/bazel-init/pkg/buildgen"
	"github.com/bazelinit/bazel-init/pkg/logctx"
	"github.com/bazelinit/bazel-init/pkg/packgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate script output config install-base",
	Short: "Generates a package archive from a configured builder script",
	Long: `Loads the passed builder script, reads the variables detected by a previous
configure run and writes the package the script declares to the output
archive. The install base is the directory holding the embedded resources
the script can copy into the package.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext()

		script, err := builder.Load(ctx, args[0])
		if err != nil {
			return err
		}

		variables, err := builder.ReadVars(args[2])
		if err != nil {
			return err
		}

		output, err := packgen.NewZipOutput(args[1])
		if err != nil {
			return err
		}

		err = generatePackage(script, variables, output, args[3])
		if err != nil {
			output.Close()
			return err
		}

		err = output.Close()
		if err != nil {
			return err
		}

		info, err := os.Stat(args[1])
		if err != nil {
			return err
		}
		logctx.Log(ctx).Info().
			Str("package", script.Package()).
			Str("size", units.HumanSize(float64(info.Size()))).
			Msgf("Wrote %s", args[1])
		return nil
	},
}

// generatePackage writes the script's package through the output. Closing
// the output stays with the caller; standalone mode shares one output across
// several packages.
func generatePackage(script *builder.Script, variables map[string]any, output packgen.Output, installBase string) error {
	writer := packgen.NewPackageWriter(output, script.Package(), installBase)
	helper := buildgen.NewHelper(script.Package())

	err := script.Generate(variables, helper)
	if err != nil {
		return err
	}

	return helper.Generate(writer)
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
