package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebmah/tlcparquet/internal/inspector"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the downloaded trip record tree",
	Long: `Walks the local year/month tree and reports, per category, how many
monthly files are present, the month range they cover, and the total row
count across them (counted through DuckDB's parquet reader).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()

		summaries, err := inspector.Summarize(cmd.Context(), dbPath, basePath, logger)
		if err != nil {
			return fmt.Errorf("inspect tree: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Printf("No trip record files found under %s.\n", basePath)
			return nil
		}

		fmt.Printf("%-8s %6s  %-9s %-9s %15s\n", "category", "files", "first", "last", "rows")
		for _, s := range summaries {
			rows := fmt.Sprintf("%d", s.TotalRows)
			if s.RowsErr != nil {
				rows = "error"
			}
			fmt.Printf("%-8s %6d  %-9s %-9s %15s\n", s.Category, s.FileCount, s.FirstMonth, s.LastMonth, rows)
		}
		return nil
	},
}
