package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/mlapp/folio/config"
	"github.com/mlapp/folio/llm"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(providersCmd)
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show which LLM providers are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close() //nolint:errcheck // No remedy for log close errors

		router, err := config.NewRouter(cfg, logger)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tAVAILABLE\tDEFAULT")
		for _, p := range llm.Providers {
			fmt.Fprintf(w, "%s\t%t\t%t\n", p, router.IsAvailable(p.String()), p.String() == router.DefaultProvider())
		}
		return w.Flush()
	},
}
