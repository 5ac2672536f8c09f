package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebmah/tlcparquet/internal/config"
	"github.com/calebmah/tlcparquet/internal/discover"
	"github.com/calebmah/tlcparquet/internal/util"
)

var (
	discoverIndexURL string
	discoverCategory string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List trip record files published on the TLC index page",
	Long: `Fetches the TLC trip record index page and lists every published
parquet file it links to, without downloading anything. Useful for checking
which months the source has made available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()

		if discoverCategory != "" && !config.ValidCategory(discoverCategory) {
			return fmt.Errorf("unknown category %q (must be one of %v)", discoverCategory, config.Categories)
		}

		files, err := discover.Published(cmd.Context(), util.NewHTTPClient(), discoverIndexURL, logger)
		if err != nil {
			return fmt.Errorf("discover published files: %w", err)
		}

		shown := 0
		for _, f := range files {
			if discoverCategory != "" && f.Category != discoverCategory {
				continue
			}
			fmt.Printf("%-8s %d-%02d  %s\n", f.Category, f.Year, f.Month, f.URL)
			shown++
		}
		if shown == 0 {
			fmt.Println("No matching trip record files found on the index page.")
			return nil
		}
		fmt.Printf("\n%d files published.\n", shown)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverIndexURL, "index-url", config.DefaultIndexURL, "Index page to scan for parquet links")
	discoverCmd.Flags().StringVarP(&discoverCategory, "category", "c", "", "Only list one category")
}
