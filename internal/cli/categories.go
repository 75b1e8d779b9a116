package cli

import (
	"fmt"
	"text/tabwriter"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/config"

	"github.com/spf13/cobra"
)

func newCategoriesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the recyclable categories and their emission factors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadEnv()
			if err != nil {
				return err
			}
			table, err := emission.Load(cfg.EmissionTablePath)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), table.Factors())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tAVG WEIGHT (kg)\tCO2 PER kg")
			for _, f := range table.Factors() {
				fmt.Fprintf(tw, "%s\t%.3f\t%.2f\n", f.Category, f.AverageWeight, f.RecycleFactor)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}
