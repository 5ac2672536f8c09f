package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/calebmah/tlcparquet/internal/config"
	"github.com/calebmah/tlcparquet/internal/fetcher"
	"github.com/calebmah/tlcparquet/internal/planner"
	"github.com/calebmah/tlcparquet/internal/scanner"
)

// End-to-end runs through scan, plan, execute, and collect with a mocked
// current date of March 2023 so the 2023 grid is exactly three months.

func e2eConfig(t *testing.T, srv *httptest.Server) config.Config {
	t.Helper()
	return config.Config{
		BaseURL:   srv.URL,
		BasePath:  t.TempDir(),
		Category:  "yellow",
		StartYear: 2023,
		EndYear:   2023,
		Workers:   2,
	}
}

func runPipeline(t *testing.T, srv *httptest.Server, cfg config.Config, now time.Time) (Summary, []planner.Task) {
	t.Helper()

	existing, err := scanner.Scan(cfg.BasePath)
	require.NoError(t, err)

	tasks, err := planner.Plan(cfg, existing, now)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := fetcher.New(srv.Client(), cfg.Workers, logger, nil)
	results := make(chan fetcher.Result)
	go f.Run(context.Background(), tasks, results)

	return Collect(len(tasks), results, NullSink{}), tasks
}

func TestEndToEndEmptyBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "trip data")
	}))
	defer srv.Close()

	cfg := e2eConfig(t, srv)
	now := time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC)

	summary, tasks := runPipeline(t, srv, cfg, now)

	require.Len(t, tasks, 3)
	for i, task := range tasks {
		require.Equal(t, config.FileName("yellow", 2023, i+1), filepath.Base(task.Dest))
	}
	require.Equal(t, Summary{Succeeded: 3, Failed: 0}, summary)

	// The run's downloads plus a fresh scan now cover the whole grid.
	existing, err := scanner.Scan(cfg.BasePath)
	require.NoError(t, err)
	require.Len(t, existing, 3)
}

func TestEndToEndSkipsPrepopulatedMonth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "trip data")
	}))
	defer srv.Close()

	cfg := e2eConfig(t, srv)
	now := time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC)

	// Pre-populate January.
	janDir := filepath.Join(cfg.BasePath, "2023", "01")
	require.NoError(t, os.MkdirAll(janDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(janDir, config.FileName("yellow", 2023, 1)), []byte("already here"), 0o644))

	summary, tasks := runPipeline(t, srv, cfg, now)

	require.Len(t, tasks, 2)
	require.Equal(t, config.FileName("yellow", 2023, 2), filepath.Base(tasks[0].Dest))
	require.Equal(t, config.FileName("yellow", 2023, 3), filepath.Base(tasks[1].Dest))
	require.Equal(t, Summary{Succeeded: 2, Failed: 0}, summary)
}

func TestEndToEndOneFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "2023-02") {
			http.Error(w, "gone", http.StatusForbidden)
			return
		}
		io.WriteString(w, "trip data")
	}))
	defer srv.Close()

	cfg := e2eConfig(t, srv)
	now := time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC)

	summary, tasks := runPipeline(t, srv, cfg, now)

	require.Len(t, tasks, 3)
	require.Equal(t, Summary{Succeeded: 2, Failed: 1}, summary)

	// The failed month left nothing behind, so a rerun plans exactly it.
	require.NoFileExists(t, filepath.Join(cfg.BasePath, "2023", "02", config.FileName("yellow", 2023, 2)))

	existing, err := scanner.Scan(cfg.BasePath)
	require.NoError(t, err)
	replan, err := planner.Plan(cfg, existing, now)
	require.NoError(t, err)
	require.Len(t, replan, 1)
	require.Contains(t, replan[0].URL, "2023-02")
}
