// Package syncer performs the Download decisions of a sync target with
// crash safety: every file is streamed into a temporary sibling and moved
// into place only once complete, so a reader of the target path never
// sees a partial file.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/journal"
	"github.com/yangdangfu/ftpsync/logger"
	"github.com/yangdangfu/ftpsync/model"
	"github.com/yangdangfu/ftpsync/planner"
	"github.com/yangdangfu/ftpsync/remote"
)

// tmpSuffix marks the in-progress sibling of a download target.
const tmpSuffix = ".1"

// TransferError marks a failure while streaming one file's content. The
// run recovers from it by reconnecting and continuing with the next
// file; the failed file is not retried within the same run.
type TransferError struct {
	Name string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of %s failed: %v", e.Name, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// RunStats summarizes one target's run.
type RunStats struct {
	Listed     int64 // entries in the remote listing
	Matched    int64 // entries matching the filename pattern
	Skipped    int64 // candidates skipped by the mode policy
	Downloaded int64 // candidates committed to disk
	Failed     int64 // candidates abandoned after a transfer failure
	Bytes      int64 // bytes committed
}

func (s *RunStats) String() string {
	sizeMB := float64(s.Bytes) / (1024 * 1024)
	return fmt.Sprintf("Run: listed=%d, matched=%d, skipped=%d, downloaded=%d, failed=%d, bytes=%d (%.2f MB)",
		s.Listed, s.Matched, s.Skipped, s.Downloaded, s.Failed, s.Bytes, sizeMB)
}

// Executor drives one target at a time: one FTP session, files strictly
// in listing order, decisions re-derived per file at download time.
type Executor struct {
	dialer  remote.Dialer
	fs      afero.Fs
	journal journal.Provider
	clock   clockwork.Clock
	logger  logger.Logger
}

// NewExecutor creates an executor. A nil journal or logger falls back to
// the no-op implementation.
func NewExecutor(dialer remote.Dialer, fs afero.Fs, jrnl journal.Provider, log logger.Logger) *Executor {
	return NewExecutorWithClock(dialer, fs, jrnl, log, clockwork.NewRealClock())
}

// NewExecutorWithClock creates an executor with an injected clock
// (useful for testing).
func NewExecutorWithClock(dialer remote.Dialer, fs afero.Fs, jrnl journal.Provider, log logger.Logger, clock clockwork.Clock) *Executor {
	if jrnl == nil {
		jrnl = journal.NewNoOp()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Executor{
		dialer:  dialer,
		fs:      fs,
		journal: jrnl,
		clock:   clock,
		logger:  log,
	}
}

// Run syncs one target under the given mode. The mode is validated
// before anything is dialed. Transfer failures are contained per file;
// session-start and filesystem failures abort the run.
func (e *Executor) Run(ctx context.Context, target config.Target, mode model.SyncMode) (*RunStats, error) {
	stats := &RunStats{}

	if _, err := model.ParseMode(string(mode)); err != nil {
		return stats, err
	}
	re, err := target.CompilePattern()
	if err != nil {
		return stats, fmt.Errorf("invalid file pattern %q: %w", target.FilePattern, err)
	}

	if err := e.fs.MkdirAll(target.LocalRoot, 0755); err != nil {
		return stats, fmt.Errorf("create local root %s: %w", target.LocalRoot, err)
	}

	log := e.logger.WithFields(map[string]interface{}{
		"host": target.Host,
		"dir":  target.RemoteDir,
	})

	client, err := e.dialer.Dial(ctx, target.Host, target.User, target.Password, target.RemoteDir)
	if err != nil {
		return stats, err
	}
	defer func() {
		if client != nil {
			client.Quit()
		}
	}()

	names, err := client.NameList()
	if err != nil {
		return stats, fmt.Errorf("list %s: %w", target.RemoteDir, err)
	}
	stats.Listed = int64(len(names))

	for _, name := range names {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if !re.MatchString(name) {
			continue
		}
		stats.Matched++

		localPath := target.LocalPath(name)

		// The decision is re-derived here, against the live session and
		// the current local state, instead of reusing a precomputed
		// plan. The remote may have changed since listing; that window
		// is accepted.
		decision, err := planner.Decide(e.fs, client, localPath, name, mode)
		if err != nil {
			return stats, err
		}
		if decision.Kind == model.DecisionSkip {
			stats.Skipped++
			log.Debug("Skipping %s (%s)", name, decision.Reason)
			continue
		}

		log.Info("Downloading %s to %s ...", name, localPath)
		start := e.clock.Now()

		n, err := e.download(client, name, localPath)
		if err != nil {
			var terr *TransferError
			if !errors.As(err, &terr) {
				// Filesystem failures are fatal for the target.
				return stats, err
			}

			stats.Failed++
			log.Error("Download of %s failed: %v", name, terr.Err)
			e.record(log, localPath, model.FileOutcome{
				Status:   model.OutcomeFailed,
				SyncedAt: e.clock.Now().Unix(),
				Error:    terr.Err.Error(),
			})

			// The partial `<name>.1` artifact stays on disk for
			// inspection. Abandon the session and continue with the
			// next file over a fresh one.
			client.Quit()
			client, err = e.dialer.Dial(ctx, target.Host, target.User, target.Password, target.RemoteDir)
			if err != nil {
				client = nil
				return stats, err
			}
			continue
		}

		stats.Downloaded++
		stats.Bytes += n
		e.record(log, localPath, model.FileOutcome{
			Status:   model.OutcomeCommitted,
			Size:     n,
			SyncedAt: e.clock.Now().Unix(),
		})
		log.Info("Time used %.0fs for downloading file %s", e.clock.Since(start).Seconds(), name)
	}

	log.Info(stats.String())
	return stats, nil
}

// download streams the remote file into `<name>.1` and moves it into
// place only after the transfer completed. Transfer failures come back
// as *TransferError; filesystem failures come back bare.
func (e *Executor) download(client remote.Client, name, localPath string) (int64, error) {
	tmpPath := localPath + tmpSuffix

	tmp, err := e.fs.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmpPath, err)
	}

	counting := &countingWriter{w: tmp}
	if err := client.Retrieve(name, counting); err != nil {
		tmp.Close()
		return 0, &TransferError{Name: name, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return 0, &TransferError{Name: name, Err: err}
	}

	exists, err := afero.Exists(e.fs, localPath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", localPath, err)
	}
	if exists {
		if err := e.fs.Remove(localPath); err != nil {
			return 0, fmt.Errorf("remove %s: %w", localPath, err)
		}
	}
	if err := e.fs.Rename(tmpPath, localPath); err != nil {
		return 0, fmt.Errorf("move %s into place: %w", tmpPath, err)
	}
	return counting.n, nil
}

func (e *Executor) record(log logger.Logger, path string, outcome model.FileOutcome) {
	if err := e.journal.Record(path, outcome); err != nil {
		log.Warn("Failed to journal outcome for %s: %v", path, err)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
