package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/calebmah/tlcparquet/internal/planner"
	"github.com/calebmah/tlcparquet/internal/util"
)

// chunkSize is the write granularity when streaming a response body to disk.
const chunkSize = 32 * 1024

// Result is the outcome of one download task. Results arrive in completion
// order, not submission order.
type Result struct {
	Task    planner.Task
	OK      bool
	Err     error
	Bytes   int64
	Elapsed time.Duration
}

// EventRecorder receives download lifecycle notifications. Implementations
// are observational: errors recording an event never influence the run.
type EventRecorder interface {
	DownloadStarted(ctx context.Context, url, dest string)
	DownloadFinished(ctx context.Context, url, dest string, bytes int64, elapsed time.Duration)
	DownloadFailed(ctx context.Context, url, dest string, reason string, elapsed time.Duration)
}

// nopRecorder is used when no event history is wired in.
type nopRecorder struct{}

func (nopRecorder) DownloadStarted(context.Context, string, string) {}

func (nopRecorder) DownloadFinished(context.Context, string, string, int64, time.Duration) {}

func (nopRecorder) DownloadFailed(context.Context, string, string, string, time.Duration) {}

// Fetcher executes download tasks with a fixed bound on concurrent fetches.
type Fetcher struct {
	client  *http.Client
	workers int
	logger  *slog.Logger
	events  EventRecorder
}

// New creates a Fetcher. A nil client gets the default download client and
// a nil recorder disables event history.
func New(client *http.Client, workers int, logger *slog.Logger, events EventRecorder) *Fetcher {
	if client == nil {
		client = util.NewHTTPClient()
	}
	if events == nil {
		events = nopRecorder{}
	}
	return &Fetcher{client: client, workers: workers, logger: logger, events: events}
}

// Run executes every task with at most f.workers fetches in flight and
// sends one Result per task on results, closing the channel when all tasks
// have completed. Task failures are converted to failed Results at the task
// boundary; they never cancel sibling downloads. Context cancellation stops
// dispatching new tasks, and tasks already in flight fail through their
// request context.
func (f *Fetcher) Run(ctx context.Context, tasks []planner.Task, results chan<- Result) {
	defer close(results)

	wg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, f.workers)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, OK: false, Err: err}
			continue
		}
		select {
		case <-ctx.Done():
			results <- Result{Task: task, OK: false, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		task := task
		wg.Go(func() error {
			defer func() { <-sem }()
			results <- f.fetchOne(ctx, task)
			return nil
		})
	}

	wg.Wait()
}

// fetchOne downloads a single file, streaming the body to the destination
// path. Any failure removes the partial file and is reported through the
// Result rather than returned.
func (f *Fetcher) fetchOne(ctx context.Context, task planner.Task) Result {
	start := time.Now()
	l := f.logger.With(slog.String("url", task.URL))

	f.events.DownloadStarted(ctx, task.URL, task.Dest)

	written, err := f.download(ctx, task)
	elapsed := time.Since(start)
	if err != nil {
		// Never leave a partial file behind; a rerun must re-plan this month.
		if rmErr := os.Remove(task.Dest); rmErr != nil && !os.IsNotExist(rmErr) {
			l.Warn("failed to remove partial file", "dest", task.Dest, "error", rmErr)
		}
		f.events.DownloadFailed(ctx, task.URL, task.Dest, err.Error(), elapsed)
		l.Warn("download failed",
			"error", err,
			slog.Duration("elapsed", elapsed.Round(time.Millisecond)))
		return Result{Task: task, OK: false, Err: err, Elapsed: elapsed}
	}

	f.events.DownloadFinished(ctx, task.URL, task.Dest, written, elapsed)
	l.Info("downloaded file",
		slog.String("dest", task.Dest),
		slog.String("size", humanize.Bytes(uint64(written))),
		slog.Duration("elapsed", elapsed.Round(time.Millisecond)))
	return Result{Task: task, OK: true, Bytes: written, Elapsed: elapsed}
}

func (f *Fetcher) download(ctx context.Context, task planner.Task) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", util.RandomUserAgent())
	req.Header.Set("Accept", "application/octet-stream,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("bad status %q fetching %s: %s", resp.Status, task.URL, string(body))
	}

	out, err := os.Create(task.Dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", task.Dest, err)
	}

	written, copyErr := copyChunks(out, resp.Body)
	if closeErr := out.Close(); copyErr == nil && closeErr != nil {
		copyErr = fmt.Errorf("close %s: %w", task.Dest, closeErr)
	}
	if copyErr != nil {
		return written, copyErr
	}
	return written, nil
}

// copyChunks streams r to w in fixed-size chunks, skipping zero-length
// reads (keep-alive artifacts yield empty chunks on some transports).
func copyChunks(w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			wn, writeErr := w.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, fmt.Errorf("write chunk: %w", writeErr)
			}
			if wn != n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}
}

// BaseName is a display helper for progress reporting.
func BaseName(task planner.Task) string {
	return filepath.Base(task.Dest)
}
