package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

var deriveSeed string

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derives the starting element for a seed",
	Long: `Derives the starting element for a seed:

	derive --seed <Seed>

	Seed - a non-negative decimal integer, any other string is hashed
	`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deriveSeed == "" {
			return errors.New("missing --seed")
		}

		node, err := newSearchNode()
		if err != nil {
			return err
		}
		defer node.Stop()

		d, err := node.Derive(vdf.SeedFromString(deriveSeed))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "a: %s\n", d.Triple.A.String())
		fmt.Fprintf(out, "b: %s\n", d.Triple.B.String())
		fmt.Fprintf(out, "delta: %s\n", d.Triple.Delta.String())
		fmt.Fprintf(out, "divisor: %s\n", d.Divisor.String())
		fmt.Fprintf(out, "index: %d\n", d.Index)
		return nil
	},
}

func init() {
	deriveCmd.Flags().StringVar(&deriveSeed, "seed", "", "seed to derive from")
	rootCmd.AddCommand(deriveCmd)
}
