package planner

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calebmah/tlcparquet/internal/config"
	"github.com/calebmah/tlcparquet/internal/scanner"
)

func testConfig(t *testing.T, start, end int) config.Config {
	t.Helper()
	return config.Config{
		BaseURL:   "https://example.com/trip-data",
		BasePath:  t.TempDir(),
		Category:  "yellow",
		StartYear: start,
		EndYear:   end,
		Workers:   4,
	}
}

func TestPlanFullYear(t *testing.T) {
	cfg := testConfig(t, 2023, 2023)
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)
	require.Len(t, tasks, 12)

	require.Equal(t, "https://example.com/trip-data/yellow_tripdata_2023-01.parquet", tasks[0].URL)
	require.Equal(t,
		filepath.Join(cfg.BasePath, "2023", "01", "yellow_tripdata_2023-01.parquet"),
		tasks[0].Dest)
}

func TestPlanSkipsFutureMonths(t *testing.T) {
	cfg := testConfig(t, 2023, 2023)
	now := time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, task := range tasks {
		require.Contains(t, task.URL, fmt.Sprintf("2023-%02d", i+1))
	}
}

func TestPlanClampsEndYear(t *testing.T) {
	cfg := testConfig(t, 2023, 2030)
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)
	// All of 2023 plus January and February 2024.
	require.Len(t, tasks, 14)
}

func TestPlanSkipsExistingMonths(t *testing.T) {
	cfg := testConfig(t, 2023, 2023)
	now := time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)

	existing := make(scanner.Set)
	existing.Add("yellow", 2023, 1)

	tasks, err := Plan(cfg, existing, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Contains(t, tasks[0].URL, "2023-02")
	require.Contains(t, tasks[1].URL, "2023-03")

	// A different category in the set must not shadow this one.
	existing.Add("green", 2023, 2)
	tasks, err = Plan(cfg, existing, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func TestPlanIdempotent(t *testing.T) {
	cfg := testConfig(t, 2022, 2023)
	now := time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	// Mark every planned month as downloaded; the second pass plans nothing.
	existing := make(scanner.Set)
	for year := 2022; year <= 2023; year++ {
		for month := 1; month <= 12; month++ {
			if year == 2023 && month > 8 {
				continue
			}
			existing.Add("yellow", year, month)
		}
	}

	tasks, err = Plan(cfg, existing, now)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestPlanDestinationsDisjoint(t *testing.T) {
	cfg := testConfig(t, 2020, 2022)
	now := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		require.False(t, seen[task.Dest], "duplicate destination %s", task.Dest)
		seen[task.Dest] = true
	}
}

func TestPlanCreatesDirectories(t *testing.T) {
	cfg := testConfig(t, 2023, 2023)
	now := time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)

	tasks, err := Plan(cfg, make(scanner.Set), now)
	require.NoError(t, err)

	for _, task := range tasks {
		require.DirExists(t, filepath.Dir(task.Dest))
	}
}
