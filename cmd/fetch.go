package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/calebmah/tlcparquet/internal/app"
	"github.com/calebmah/tlcparquet/internal/config"
	"github.com/calebmah/tlcparquet/internal/db"
	"github.com/calebmah/tlcparquet/internal/fetcher"
	"github.com/calebmah/tlcparquet/internal/planner"
	"github.com/calebmah/tlcparquet/internal/report"
	"github.com/calebmah/tlcparquet/internal/scanner"
	"github.com/calebmah/tlcparquet/internal/util"
)

var (
	fetchStartYear int
	fetchEndYear   int
	fetchCategory  string
	fetchWorkers   int
	fetchPlain     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing trip record files for a category and year range",
	Long: `Scans the local tree for months already downloaded, plans the missing
(year, month) files for the chosen category, and downloads them with a fixed
number of parallel workers. A failed file is removed and counted; rerunning
fetch retries only what is still missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		now := time.Now()

		cfg := config.Config{
			BaseURL:   config.DefaultBaseURL,
			BasePath:  basePath,
			Category:  fetchCategory,
			StartYear: fetchStartYear,
			EndYear:   fetchEndYear,
			Workers:   fetchWorkers,
		}
		if err := cfg.Validate(now); err != nil {
			return err
		}

		existing, err := scanner.Scan(cfg.BasePath)
		if err != nil {
			return fmt.Errorf("scan existing downloads: %w", err)
		}
		logger.Debug("scanned existing downloads", "months_present", len(existing))

		tasks, err := planner.Plan(cfg, existing, now)
		if err != nil {
			return fmt.Errorf("plan downloads: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Printf("All %s trip data files for the specified period already exist.\n", cfg.Category)
			return nil
		}
		logger.Info("planned downloads", "files", len(tasks), "category", cfg.Category, "workers", cfg.Workers)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		recorder := &db.Recorder{Conn: getDB(), Logger: logger}
		f := fetcher.New(util.NewHTTPClient(), cfg.Workers, logger, recorder)
		results := make(chan fetcher.Result)

		var summary report.Summary
		if fetchPlain {
			go f.Run(ctx, tasks, results)
			summary = report.Collect(len(tasks), results, &report.LogSink{Logger: logger})
		} else {
			model := app.NewModel(cfg.Category, cancel)
			program := tea.NewProgram(model)

			summaryCh := make(chan report.Summary, 1)
			go f.Run(ctx, tasks, results)
			go func() {
				summaryCh <- report.Collect(len(tasks), results, app.NewSink(program))
			}()

			if _, err := program.Run(); err != nil {
				return fmt.Errorf("progress ui: %w", err)
			}
			summary = <-summaryCh
		}

		if ctx.Err() != nil {
			logger.Warn("run cancelled before all downloads completed")
		}

		fmt.Printf("\nDownload complete:\n")
		fmt.Printf("Successfully downloaded: %d\n", summary.Succeeded)
		fmt.Printf("Failed downloads: %d\n", summary.Failed)
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchStartYear, "start-year", config.EarliestYear, "First year to download")
	fetchCmd.Flags().IntVar(&fetchEndYear, "end-year", time.Now().Year(), "Last year to download")
	fetchCmd.Flags().StringVarP(&fetchCategory, "category", "c", config.DefaultCategory, "Trip record category (yellow, green, fhv, fhvhv)")
	fetchCmd.Flags().IntVarP(&fetchWorkers, "workers", "w", config.DefaultWorkers, "Number of concurrent downloads")
	fetchCmd.Flags().BoolVar(&fetchPlain, "plain", false, "Log progress instead of rendering the terminal UI")
}
