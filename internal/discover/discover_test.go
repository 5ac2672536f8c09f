package discover

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const indexPage = `<!DOCTYPE html>
<html><body>
<h2>Trip Record Data</h2>
<ul>
<li><a href="https://cdn.example.com/trip-data/yellow_tripdata_2024-01.parquet">Yellow Jan 2024</a></li>
<li><a href="https://cdn.example.com/trip-data/yellow_tripdata_2024-02.parquet">Yellow Feb 2024</a></li>
<li><a href="/trip-data/green_tripdata_2024-01.parquet">Green Jan 2024 (relative)</a></li>
<li><a href="https://cdn.example.com/trip-data/yellow_tripdata_2024-01.parquet">Duplicate Jan link</a></li>
<li><a href="https://cdn.example.com/misc/zone_lookup.parquet">Zone lookup (not trip data)</a></li>
<li><a href="https://cdn.example.com/trip-data/yellow_tripdata_2024-13.parquet">Bad month</a></li>
<li><a href="https://www.example.com/about.page">About</a></li>
</ul>
</body></html>`

func TestPublishedParsesIndexPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, indexPage)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	files, err := Published(context.Background(), srv.Client(), srv.URL+"/index.page", logger)
	require.NoError(t, err)

	require.Len(t, files, 3)
	require.Equal(t, "green", files[0].Category)
	require.Equal(t, 2024, files[0].Year)
	require.Equal(t, 1, files[0].Month)
	// Relative links resolve against the index page URL.
	require.Equal(t, srv.URL+"/trip-data/green_tripdata_2024-01.parquet", files[0].URL)

	require.Equal(t, "yellow", files[1].Category)
	require.Equal(t, 1, files[1].Month)
	require.Equal(t, "yellow", files[2].Category)
	require.Equal(t, 2, files[2].Month)
}

func TestPublishedBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := Published(context.Background(), srv.Client(), srv.URL, logger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad status")
}
