// Package cmd implements the bazel-init command line interface.
package cmd

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bazelinit/bazel-init/pkg/logctx"
	"github.com/bazelinit/bazel-init/pkg/rules"
)

var rootCmd = &cobra.Command{
	Use:   "bazel-init",
	Short: "Generates and merges workspace package archives",
	Long: `bazel-init runs package builder scripts to auto-detect the host configuration
and generate workspace packages from it. The configure, generate and merge
subcommands match the verbs the generated build rules invoke.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("embed-dir", rules.DefaultEmbedDir,
		"directory holding the embedded resources of the install base")

	viper.SetEnvPrefix("bazel_init")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlag("embed-dir", rootCmd.PersistentFlags().Lookup("embed-dir")))
}

// cmdContext returns a context with the console logger attached.
func cmdContext() context.Context {
	logger := zerolog.New(NewConsoleWriter())
	return logctx.WithLogger(context.Background(), &logger)
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
