// Package inspector summarizes the downloaded trip record tree using
// DuckDB's parquet reader.
package inspector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/calebmah/tlcparquet/internal/scanner"
)

// CategorySummary aggregates the local files of one trip record category.
type CategorySummary struct {
	Category   string
	FileCount  int
	TotalRows  int64
	FirstMonth string // "YYYY-MM"
	LastMonth  string
	RowsErr    error
}

// Summarize globs the two-level tree under basePath and reports, per
// category, how many files are present, the month range they span, and the
// total row count across them. Row counts come from DuckDB read_parquet; a
// query failure for one category is carried in RowsErr rather than aborting
// the others.
func Summarize(ctx context.Context, dbPath, basePath string, logger *slog.Logger) ([]CategorySummary, error) {
	existing, err := scanner.Scan(basePath)
	if err != nil {
		return nil, fmt.Errorf("scan tree: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb (%s): %w", dbPath, err)
	}
	defer conn.Close()

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if _, err := conn.ExecContext(queryCtx, `INSTALL parquet; LOAD parquet;`); err != nil {
		logger.Warn("failed to install/load parquet extension", "error", err)
	}

	type monthSpan struct {
		records []scanner.Record
	}
	byCategory := make(map[string]*monthSpan)
	for record := range existing {
		span, ok := byCategory[record.Category]
		if !ok {
			span = &monthSpan{}
			byCategory[record.Category] = span
		}
		span.records = append(span.records, record)
	}

	var summaries []CategorySummary
	for category, span := range byCategory {
		sort.Slice(span.records, func(i, j int) bool {
			a, b := span.records[i], span.records[j]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			return a.Month < b.Month
		})
		first := span.records[0]
		last := span.records[len(span.records)-1]

		summary := CategorySummary{
			Category:   category,
			FileCount:  len(span.records),
			FirstMonth: fmt.Sprintf("%d-%02d", first.Year, first.Month),
			LastMonth:  fmt.Sprintf("%d-%02d", last.Year, last.Month),
		}

		globPattern := filepath.ToSlash(filepath.Join(basePath, "*", "*", category+"_tripdata_*.parquet"))
		escaped := strings.ReplaceAll(globPattern, "'", "''")
		countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM read_parquet('%s');`, escaped)

		var rows sql.NullInt64
		if err := conn.QueryRowContext(queryCtx, countSQL).Scan(&rows); err != nil {
			summary.RowsErr = err
			logger.Warn("failed counting rows", "category", category, "error", err)
		} else {
			summary.TotalRows = rows.Int64
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Category < summaries[j].Category })
	return summaries, nil
}
