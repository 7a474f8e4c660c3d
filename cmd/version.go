package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	// version needs no config directory
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "vdfsearch "+config.GetVersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
