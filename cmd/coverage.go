package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrich/internal/pipeline"
)

var coverageJSON bool

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report contact coverage across stored opportunities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		opps, err := st.ListAll(ctx)
		if err != nil {
			return eris.Wrap(err, "list opportunities")
		}
		cov := pipeline.ComputeCoverage(opps)

		if coverageJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(cov), "encode coverage")
		}

		fmt.Printf("Opportunities: %d\n", cov.Total)
		fmt.Printf("  with contact: %d (%.1f%%)\n", cov.WithContact, cov.Percent)
		fmt.Printf("Premium:       %d\n", cov.PremiumTotal)
		fmt.Printf("  with contact: %d (%.1f%%)\n", cov.PremiumWithContact, cov.PremiumPercent)
		return nil
	},
}

func init() {
	coverageCmd.Flags().BoolVar(&coverageJSON, "json", false, "emit coverage as JSON")
	rootCmd.AddCommand(coverageCmd)
}
