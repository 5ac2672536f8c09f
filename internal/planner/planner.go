package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calebmah/tlcparquet/internal/config"
	"github.com/calebmah/tlcparquet/internal/scanner"
)

// Task is one file to fetch: the source URL and the destination path it
// will be written to. Tasks are created here and consumed exactly once by
// the fetcher.
type Task struct {
	URL  string
	Dest string
}

// Plan enumerates the calendar grid for the configured year range and
// category, drops months that lie in the future relative to now or are
// already in the existing set, and returns the remaining download tasks in
// year/month order. The year and month directories for every kept task are
// created as a side effect, so no two tasks ever share a destination and
// the fetcher can write without further filesystem setup.
//
// A directory creation failure is fatal: it aborts planning with a wrapped
// error rather than silently skipping the month.
func Plan(cfg config.Config, existing scanner.Set, now time.Time) ([]Task, error) {
	endYear := cfg.EndYear
	if currentYear := now.Year(); endYear > currentYear {
		endYear = currentYear
	}

	var tasks []Task
	for year := cfg.StartYear; year <= endYear; year++ {
		yearPath := filepath.Join(cfg.BasePath, fmt.Sprintf("%d", year))

		for month := 1; month <= 12; month++ {
			// Future months do not exist at the source yet.
			if year == now.Year() && month > int(now.Month()) {
				continue
			}
			if existing.Contains(cfg.Category, year, month) {
				continue
			}

			monthPath := filepath.Join(yearPath, fmt.Sprintf("%02d", month))
			if err := os.MkdirAll(monthPath, 0o755); err != nil {
				return nil, fmt.Errorf("create directory %s: %w", monthPath, err)
			}

			fileName := config.FileName(cfg.Category, year, month)
			tasks = append(tasks, Task{
				URL:  cfg.BaseURL + "/" + fileName,
				Dest: filepath.Join(monthPath, fileName),
			})
		}
	}

	return tasks, nil
}
