package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/company-discovery/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect external data sources",
}

var sourcesTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check connectivity of every registered source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, pool, err := openApp(ctx)
		if err != nil {
			return eris.Wrap(err, "sources test: open")
		}
		defer pool.Close()

		return printConnections(cmd, a.Registry.TestConnections(ctx))
	},
}

func printConnections(cmd *cobra.Command, statuses []sources.ConnectionStatus) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSYNTHETIC\tCONNECTED")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%t\t%t\n", s.Source, s.Synthetic, s.Connected)
	}
	return tw.Flush()
}

func init() {
	sourcesCmd.AddCommand(sourcesTestCmd)
	rootCmd.AddCommand(sourcesCmd)
}
