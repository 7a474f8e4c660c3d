package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os/signal"
	"syscall"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"source.quilibrium.com/quilibrium/monorepo/vdfsearch/vdf"
)

var (
	searchSeed          string
	searchMaxIterations uint64
	searchMetricsAddr   string
	searchInMemory      bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Runs a witness search, printing witnesses as they are found",
	Long: `Runs a witness search, printing witnesses as they are found:

	search [--seed <Seed>] [--max-iterations <N>] [--metrics <Addr>]

	Seed - a non-negative decimal integer, any other string is hashed;
	       a random 192 digit seed is drawn when omitted
	N - stop after N squarings, 0 runs until interrupted
	Addr - serve prometheus metrics on this address
	`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var seed *big.Int
		if searchSeed == "" {
			var err error
			seed, err = vdf.RandomSeed(nil, vdf.DefaultSeedDigits)
			if err != nil {
				return err
			}
		} else {
			seed = vdf.SeedFromString(searchSeed)
		}

		if cmd.Flags().Changed("max-iterations") {
			NodeConfig.Search.MaxIterations = searchMaxIterations
		}

		if searchMetricsAddr != "" {
			NodeConfig.Metrics.ListenAddr = searchMetricsAddr
		}

		if searchInMemory {
			NodeConfig.DB.InMemory = true
		}

		node, err := newSearchNode()
		if err != nil {
			return err
		}
		defer node.Stop()

		ctx, stop := signal.NotifyContext(
			context.Background(),
			syscall.SIGINT,
			syscall.SIGTERM,
		)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "seed: %s\n", seed.String())
		record, err := node.Run(ctx, seed, func(iteration *big.Int) {
			fmt.Fprintf(out, "witness: %s\n", iteration.String())
		})
		if record != nil {
			fmt.Fprintf(out, "search id: %s\n", base58.Encode(record.ID))
		}

		return err
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSeed, "seed", "", "seed to derive from")
	searchCmd.Flags().Uint64Var(
		&searchMaxIterations,
		"max-iterations",
		0,
		"stop after this many squarings (overrides config)",
	)
	searchCmd.Flags().StringVar(
		&searchMetricsAddr,
		"metrics",
		"",
		"prometheus listen address (overrides config)",
	)
	searchCmd.Flags().BoolVar(
		&searchInMemory,
		"in-memory",
		false,
		"do not persist the witness journal",
	)
	rootCmd.AddCommand(searchCmd)
}
