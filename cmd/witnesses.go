package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/store"
)

var witnessesCmd = &cobra.Command{
	Use:   "witnesses",
	Short: "Lists the journaled witnesses of a search",
	Long: `Lists the journaled witnesses of a search:

	witnesses <SearchID>

	SearchID - base58 encoded search id, as printed by search
	`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchID, err := parseSearchID(args[0])
		if err != nil {
			return err
		}

		node, err := newSearchNode()
		if err != nil {
			return err
		}
		defer node.Stop()

		witnesses, err := node.Witnesses(searchID)
		if err != nil {
			return err
		}

		for _, w := range witnesses {
			fmt.Fprintln(cmd.OutOrStdout(), w.String())
		}

		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replays a journaled search to check a witness",
	Long: `Replays a journaled search to check a witness:

	verify <SearchID> <Iteration>

	SearchID - base58 encoded search id, as printed by search
	Iteration - decimal iteration count
	`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchID, err := parseSearchID(args[0])
		if err != nil {
			return err
		}

		iteration, ok := new(big.Int).SetString(args[1], 10)
		if !ok {
			return errors.New("invalid iteration")
		}

		node, err := newSearchNode()
		if err != nil {
			return err
		}
		defer node.Stop()

		valid, err := node.Verify(context.Background(), searchID, iteration)
		if err != nil {
			return err
		}

		if valid {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "invalid")
		}

		return nil
	},
}

func parseSearchID(s string) ([]byte, error) {
	searchID, err := base58.Decode(s)
	if err != nil || len(searchID) != store.SEARCH_ID_LENGTH {
		return nil, errors.New("invalid search id")
	}

	return searchID, nil
}

func init() {
	rootCmd.AddCommand(witnessesCmd)
	rootCmd.AddCommand(verifyCmd)
}
