package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `The config command prints the configuration heapctl would run with:
the --config file, if any, with flags applied. The output is a valid
config file.

Example:
  heapctl config --size 65536 --validate > heapctl.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settings.Encode(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
