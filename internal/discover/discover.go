// Package discover lists the trip record files published on the TLC index
// page without downloading any of them.
package discover

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/net/html"

	"github.com/calebmah/tlcparquet/internal/util"
)

// File is one published trip record file found on the index page.
type File struct {
	Category string
	Year     int
	Month    int
	URL      string
}

// tripFileRe matches the canonical trip record filename at the end of a
// link, e.g. ".../yellow_tripdata_2024-01.parquet".
var tripFileRe = regexp.MustCompile(`([a-z]+)_tripdata_(\d{4})-(\d{2})\.parquet$`)

// Published fetches indexURL, walks its anchors for parquet links, and
// returns the trip record files they point to, sorted by category, year,
// month. Links that end in .parquet but do not match the trip record naming
// scheme are skipped with a debug log.
func Published(ctx context.Context, client *http.Client, indexURL string, logger *slog.Logger) ([]File, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index URL %s: %w", indexURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", util.RandomUserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index page %s: %w", indexURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %q fetching index page %s", resp.Status, indexURL)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index page HTML: %w", err)
	}

	seen := make(map[File]struct{})
	var files []File
	for _, link := range util.ParseLinks(root, ".parquet") {
		resolved, err := base.Parse(link)
		if err != nil {
			logger.Debug("skipping unresolvable link", "link", link, "error", err)
			continue
		}

		matches := tripFileRe.FindStringSubmatch(resolved.Path)
		if matches == nil {
			logger.Debug("skipping non trip record parquet link", "link", link)
			continue
		}
		year, _ := strconv.Atoi(matches[2])
		month, _ := strconv.Atoi(matches[3])
		if month < 1 || month > 12 {
			logger.Debug("skipping link with impossible month", "link", link)
			continue
		}

		f := File{Category: matches[1], Year: year, Month: month, URL: resolved.String()}
		if _, dup := seen[File{Category: f.Category, Year: f.Year, Month: f.Month}]; dup {
			continue
		}
		seen[File{Category: f.Category, Year: f.Year, Month: f.Month}] = struct{}{}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Month < b.Month
	})
	return files, nil
}
