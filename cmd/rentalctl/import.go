package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rentaltoll-backend/internal/app"
)

func importCommand(load configLoader) *cobra.Command {
	var (
		filePath string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:     "import",
		Short:   "import a toll provider CSV export",
		Long:    `Reads a toll export, drops duplicates and payment rows, matches the remaining tolls to active rentals and holds the rest as unmatched.`,
		Example: `rentalctl import --file tolls.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return cmd.Help()
			}
			cfg, err := load()
			if err != nil {
				return err
			}

			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()

			store, closeStore, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := app.NewServices(store, cfg).Tolls.ImportTolls(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import %s: %w", filePath, err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(out, res.Message)
			fmt.Fprintf(out, "parsed=%d duplicates=%d payments=%d skipped=%d ambiguous=%d\n",
				res.Parsed, res.Duplicates, res.Payments, len(res.Skipped), len(res.Ambiguous))
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "  line %d: %s\n", s.Line, s.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "CSV export to import")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the import report as JSON")
	return cmd
}
