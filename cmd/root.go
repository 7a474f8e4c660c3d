package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/app"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/config"
)

var configDirectory string
var NodeConfig *config.Config

var rootCmd = &cobra.Command{
	Use:           "vdfsearch",
	Short:         "Class group VDF witness search",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		NodeConfig, err = config.LoadConfig(configDirectory)
		if err != nil {
			return errors.Wrap(err, "invalid config directory "+configDirectory)
		}

		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSearchNode() (*app.SearchNode, error) {
	node, err := app.NewSearchNode(NodeConfig)
	if err != nil {
		return nil, errors.Wrap(err, "new search node")
	}

	return node, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configDirectory,
		"config",
		".config/",
		"config directory (default is .config/)",
	)
}
