package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calebmah/tlcparquet/internal/config"
)

// Record identifies one already-downloaded trip record file.
type Record struct {
	Category string
	Year     int
	Month    int
}

func (r Record) String() string {
	return fmt.Sprintf("%s %d-%02d", r.Category, r.Year, r.Month)
}

// Set is the collection of months already present on disk. It is rebuilt
// from the directory tree on every run; there is no persisted index.
type Set map[Record]struct{}

// Contains reports whether the given month has already been downloaded.
func (s Set) Contains(category string, year, month int) bool {
	_, ok := s[Record{Category: category, Year: year, Month: month}]
	return ok
}

// Add inserts a record into the set.
func (s Set) Add(category string, year, month int) {
	s[Record{Category: category, Year: year, Month: month}] = struct{}{}
}

// Scan walks basePath two levels deep (year directories, then month
// directories) and rebuilds the set of downloaded months from the filenames
// found there. A missing base path yields an empty set, not an error.
// Directory names that do not parse as integers are skipped silently so
// stray non-data directories can coexist with the tree. File contents are
// never inspected; a well-formed filename is trusted as a completed
// download.
func Scan(basePath string) (Set, error) {
	existing := make(Set)

	yearEntries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return existing, nil
		}
		return nil, fmt.Errorf("read base dir %s: %w", basePath, err)
	}

	for _, yearEntry := range yearEntries {
		if !yearEntry.IsDir() {
			continue
		}
		year, err := strconv.Atoi(yearEntry.Name())
		if err != nil {
			continue
		}

		yearPath := filepath.Join(basePath, yearEntry.Name())
		monthEntries, err := os.ReadDir(yearPath)
		if err != nil {
			return nil, fmt.Errorf("read year dir %s: %w", yearPath, err)
		}

		for _, monthEntry := range monthEntries {
			if !monthEntry.IsDir() {
				continue
			}
			month, err := strconv.Atoi(monthEntry.Name())
			if err != nil {
				continue
			}

			monthPath := filepath.Join(yearPath, monthEntry.Name())
			files, err := os.ReadDir(monthPath)
			if err != nil {
				return nil, fmt.Errorf("read month dir %s: %w", monthPath, err)
			}

			for _, file := range files {
				if file.IsDir() || !strings.HasSuffix(file.Name(), config.DataFileSuffix) {
					continue
				}
				// Category is everything before the first underscore,
				// e.g. "yellow" from yellow_tripdata_2020-01.parquet.
				category, _, found := strings.Cut(file.Name(), "_")
				if !found {
					continue
				}
				existing.Add(category, year, month)
			}
		}
	}

	return existing, nil
}
