package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saad2134/greenprompt/internal/energy"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the supported model catalog with energy coefficients",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tJ/TOKEN\tACCURACY\tJ/1K TOKENS\tTIER")
			for _, name := range energy.ModelNames() {
				spec, _ := energy.Specs(name)
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f\t%s\n",
					spec.Model, spec.JoulesPerToken, spec.Accuracy,
					spec.EnergyPer1kTokens, spec.Category)
			}
			return w.Flush()
		},
	}
}
