package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bazelinit/bazel-init/pkg/toolchain"
)

var toolchainCmd = &cobra.Command{
	Use:   "toolchain [platform]",
	Short: "Validates and prints the C/C++ toolchain table",
	Long: `Without arguments, lists the platforms of the toolchain table. With a
platform argument, prints the full toolchain entry for that platform.
Pass --file to use a custom table instead of the embedded one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}

		var table *toolchain.Table
		if filename == "" {
			table, err = toolchain.Default()
		} else {
			table, err = toolchain.Load(filename)
		}
		if err != nil {
			return err
		}

		if len(args) == 0 {
			for _, entry := range table.Toolchains {
				fmt.Printf("%s (%s)\n", entry.Platform, entry.Compiler)
			}
			return nil
		}

		entry, err := table.Select(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("platform: %s\ncompiler: %s\ntools:\n", entry.Platform, entry.Compiler)
		for _, name := range sortedKeys(entry.Tools) {
			fmt.Printf("  %s: %s\n", name, entry.Tools[name])
		}
		printList("compiler_flags", entry.CompilerFlags)
		printList("linker_flags", entry.LinkerFlags)
		printList("include_dirs", entry.IncludeDirs)
		return nil
	},
}

func printList(name string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Printf("%s:\n", name)
	for _, value := range values {
		fmt.Printf("  %s\n", value)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	toolchainCmd.Flags().String("file", "", "toolchain table to use instead of the embedded one")

	rootCmd.AddCommand(toolchainCmd)
}
