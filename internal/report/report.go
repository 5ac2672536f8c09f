// Package report aggregates download results as they complete and feeds
// the progress sink. It makes no assumptions about result ordering.
package report

import (
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/calebmah/tlcparquet/internal/fetcher"
)

// Summary is the final tally for a fetch run.
type Summary struct {
	Succeeded int
	Failed    int
}

// ProgressSink observes a fetch run: the planned total up front, one
// advance per completed task, and a final done signal. Sinks are purely
// observational and never influence control flow.
type ProgressSink interface {
	Start(total int)
	Advance(res fetcher.Result)
	Done()
}

// NullSink discards all progress signals.
type NullSink struct{}

func (NullSink) Start(int)              {}
func (NullSink) Advance(fetcher.Result) {}
func (NullSink) Done()                  {}

// LogSink reports progress through structured logs, for runs without a
// terminal UI.
type LogSink struct {
	Logger *slog.Logger

	total int
	seen  int
}

func (s *LogSink) Start(total int) {
	s.total = total
	s.Logger.Info("starting downloads", slog.Int("files", total))
}

func (s *LogSink) Advance(res fetcher.Result) {
	s.seen++
	l := s.Logger.With(
		slog.String("file", fetcher.BaseName(res.Task)),
		slog.Int("completed", s.seen),
		slog.Int("total", s.total),
	)
	if res.OK {
		l.Info("download complete", slog.String("size", humanize.Bytes(uint64(res.Bytes))))
	} else {
		l.Warn("download failed", "error", res.Err)
	}
}

func (s *LogSink) Done() {
	s.Logger.Info("downloads finished", slog.Int("completed", s.seen), slog.Int("total", s.total))
}

// Collect drains results until the channel closes, forwarding each
// completion to the sink and tallying the outcome. Results arrive in
// whatever order tasks finish.
func Collect(total int, results <-chan fetcher.Result, sink ProgressSink) Summary {
	sink.Start(total)

	var summary Summary
	for res := range results {
		if res.OK {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		sink.Advance(res)
	}

	sink.Done()
	return summary
}
