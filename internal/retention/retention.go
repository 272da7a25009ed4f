// Package retention deletes archive artifacts older than the retention age.
package retention

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/raoulx24/feed-archiver/internal/artifact"
	"github.com/raoulx24/feed-archiver/internal/fs"
	"github.com/raoulx24/feed-archiver/internal/logging"
	"github.com/raoulx24/feed-archiver/internal/report"
)

const day = 24 * time.Hour

// MaxDays is the largest retention whose cutoff is representable as a
// time.Duration. Larger values keep everything.
const MaxDays = int(math.MaxInt64 / int64(day))

type Engine struct {
	fs  fs.FS
	log logging.Logger
	now func() time.Time
}

func New(filesystem fs.FS, log logging.Logger) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{
		fs:  filesystem,
		log: log,
		now: time.Now,
	}
}

// WithClock replaces the time source used to compute the cutoff.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Cutoff returns the instant before which artifacts are purged. Retentions
// above MaxDays yield the zero time, which no file predates.
func (e *Engine) Cutoff(days int) time.Time {
	if days > MaxDays {
		return time.Time{}
	}
	return e.now().Add(-time.Duration(days) * day)
}

// Purge deletes every regular file directly inside archiveDir whose
// modification time is strictly before the cutoff. Subdirectories are left
// alone. A missing archiveDir means there is nothing to purge.
func (e *Engine) Purge(ctx context.Context, archiveDir string, days int) (report.Report, error) {
	var rep report.Report

	if days < 0 {
		return rep, fmt.Errorf("negative retention: %d days", days)
	}

	cutoff := e.Cutoff(days)

	expired, err := e.scanExpired(archiveDir, cutoff)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rep, nil
		}
		return rep, fmt.Errorf("scanning archive dir: %w", err)
	}

	for _, a := range expired {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("purge interrupted before %s: %w", a.Name, err)
		}
		if err := e.log.Err(); err != nil {
			return rep, fmt.Errorf("%w: refusing to purge %s: %v", logging.ErrUnavailable, a.Name, err)
		}

		res := report.Result{Stage: report.StagePurge, Name: a.Name, Artifact: a.Path}
		if err := e.fs.Remove(ctx, a.Path); err != nil {
			e.log.Error("Error purging file %s: %v", a.Name, err)
			res.Status = report.StatusFailed
			res.Err = err
		} else {
			e.log.Info("Purged old archive: %s", a.Name)
			res.Status = report.StatusPurged
		}
		rep.Add(res)
	}

	return rep, nil
}

// scanExpired lists regular files in dir modified before cutoff, oldest first.
func (e *Engine) scanExpired(dir string, cutoff time.Time) ([]artifact.Artifact, error) {
	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var expired []artifact.Artifact
	for _, ent := range entries {
		if !ent.Regular() {
			continue
		}
		if ent.MTime.Before(cutoff) {
			expired = append(expired, artifact.FromFileInfo(ent))
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ModTime.Before(expired[j].ModTime)
	})

	return expired, nil
}
