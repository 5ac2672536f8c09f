package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "yellow_tripdata_2024-01.parquet", FileName("yellow", 2024, 1))
	require.Equal(t, "fhvhv_tripdata_2019-12.parquet", FileName("fhvhv", 2019, 12))
}

func TestValidate(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	base := Config{
		Category:  "yellow",
		StartYear: 2019,
		EndYear:   2023,
		Workers:   4,
	}
	require.NoError(t, base.Validate(now))

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown category", func(c *Config) { c.Category = "purple" }, "unknown category"},
		{"category with delimiter", func(c *Config) { c.Category = "yellow_cab" }, "unknown category"},
		{"start after end", func(c *Config) { c.StartYear = 2024; c.EndYear = 2023 }, "after end year"},
		{"start before first data", func(c *Config) { c.StartYear = 2008 }, "before 2009"},
		{"end in the future", func(c *Config) { c.EndYear = 2025 }, "in the future"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate(now)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
