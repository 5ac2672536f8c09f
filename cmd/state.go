package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/calebmah/tlcparquet/internal/db"
)

var stateLimit int

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show recent download events from the history database",
	Long: `Prints the most recent download events (start, end, error) recorded
during fetch runs. The history is observational only; fetch decides what to
download from the directory tree, never from this log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := db.RecentEvents(cmd.Context(), getDB(), stateLimit)
		if err != nil {
			return fmt.Errorf("read download history: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No download events recorded yet.")
			return nil
		}

		for _, e := range events {
			line := fmt.Sprintf("%s  %-14s %s",
				e.Timestamp.Local().Format(time.DateTime), e.Event, filepath.Base(e.URL))
			if e.Bytes.Valid {
				line += fmt.Sprintf("  %d bytes", e.Bytes.Int64)
			}
			if e.DurationMS.Valid {
				line += fmt.Sprintf("  %dms", e.DurationMS.Int64)
			}
			if e.Message != "" {
				line += "  " + e.Message
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	stateCmd.Flags().IntVarP(&stateLimit, "limit", "n", 20, "Maximum number of events to show")
}
