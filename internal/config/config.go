package config

import (
	"fmt"
	"time"
)

// Fixed source details for the TLC trip record data hosting.
const (
	DefaultBaseURL  = "https://d37ci6vzurychx.cloudfront.net/trip-data"
	DefaultIndexURL = "https://www.nyc.gov/site/tlc/about/tlc-trip-record-data.page"

	// EarliestYear is the first year the TLC publishes trip record files for.
	EarliestYear = 2009

	DefaultBasePath = "data/taxi_data"
	DefaultCategory = "yellow"
	DefaultWorkers  = 4

	// DataFileSuffix is the extension every trip record file carries.
	DataFileSuffix = ".parquet"
)

// Categories is the closed set of trip record types the source publishes.
// The source distinguishes them only by the string used in the filename.
var Categories = []string{"yellow", "green", "fhv", "fhvhv"}

// Config holds the settings for a fetch run.
type Config struct {
	BaseURL   string
	BasePath  string
	Category  string
	StartYear int
	EndYear   int
	Workers   int
}

// ValidCategory reports whether c is one of the recognized trip record types.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Validate checks the year range and category before any planning happens.
// Violations are usage errors: the caller reports them and exits without
// touching the filesystem or the network.
func (c Config) Validate(now time.Time) error {
	if !ValidCategory(c.Category) {
		return fmt.Errorf("unknown category %q (must be one of %v)", c.Category, Categories)
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("start year %d is after end year %d", c.StartYear, c.EndYear)
	}
	if c.StartYear < EarliestYear {
		return fmt.Errorf("start year %d is before %d, the first year with published data", c.StartYear, EarliestYear)
	}
	if c.EndYear > now.Year() {
		return fmt.Errorf("end year %d is in the future", c.EndYear)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// FileName returns the canonical trip record filename for a month,
// e.g. "yellow_tripdata_2024-01.parquet". The scanner and planner both
// depend on this exact shape, so it lives in one place.
func FileName(category string, year, month int) string {
	return fmt.Sprintf("%s_tripdata_%d-%02d%s", category, year, month, DataFileSuffix)
}
