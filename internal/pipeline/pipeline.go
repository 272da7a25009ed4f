// Package pipeline sequences a run: check the feed directory, check the
// expected files, archive them, then purge expired artifacts.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raoulx24/feed-archiver/internal/archive"
	"github.com/raoulx24/feed-archiver/internal/check"
	"github.com/raoulx24/feed-archiver/internal/fs"
	"github.com/raoulx24/feed-archiver/internal/logging"
	"github.com/raoulx24/feed-archiver/internal/report"
	"github.com/raoulx24/feed-archiver/internal/retention"
)

// FeedSpec is the feed directory and the files expected in it.
type FeedSpec struct {
	Dir   string
	Files []string
}

// RetentionPolicy is the archive directory and how many days artifacts are kept.
type RetentionPolicy struct {
	ArchiveDir string
	Days       int
}

type Checker interface {
	DirectoryExists(path string) bool
	FilesExist(dir string, names []string) bool
}

type Archiver interface {
	Archive(ctx context.Context, sourceDir, archiveDir string, names []string) (report.Report, error)
}

type Purger interface {
	Purge(ctx context.Context, archiveDir string, days int) (report.Report, error)
}

// Outcome describes a finished run.
type Outcome struct {
	RunID    string
	State    State
	Path     []State
	Archive  report.Report
	Purge    report.Report
	Err      error
	Started  time.Time
	Finished time.Time
}

// Success reports whether the run reached DONE.
func (o Outcome) Success() bool {
	return o.State == StateDone
}

// Results returns archive and purge results in execution order.
func (o Outcome) Results() []report.Result {
	out := make([]report.Result, 0, len(o.Archive.Results)+len(o.Purge.Results))
	out = append(out, o.Archive.Results...)
	return append(out, o.Purge.Results...)
}

type Pipeline struct {
	log      logging.Logger
	runID    string
	checker  Checker
	archiver Archiver
	purger   Purger
	now      func() time.Time
}

// New wires the default components on filesystem. An empty runID is
// replaced by a random one.
func New(log logging.Logger, filesystem fs.FS, runID string, level int) *Pipeline {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Pipeline{
		log:      log,
		runID:    runID,
		checker:  check.New(filesystem, log),
		archiver: archive.New(filesystem, log, runID, level),
		purger:   retention.New(filesystem, log),
		now:      time.Now,
	}
}

func (p *Pipeline) WithChecker(c Checker) *Pipeline   { p.checker = c; return p }
func (p *Pipeline) WithArchiver(a Archiver) *Pipeline { p.archiver = a; return p }
func (p *Pipeline) WithPurger(r Purger) *Pipeline     { p.purger = r; return p }

// RunID returns the identifier of this pipeline's run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the stages in their fixed order. It never panics and never
// returns an error: the outcome's State is DONE or ABORTED.
func (p *Pipeline) Run(ctx context.Context, feed FeedSpec, policy RetentionPolicy) Outcome {
	out := Outcome{
		RunID:   p.runID,
		State:   StateStart,
		Path:    []State{StateStart},
		Started: p.now(),
	}

	for !IsTerminal(out.State) {
		next, err := p.safeStep(ctx, out.State, feed, policy, &out)
		if err == nil {
			if serr := p.log.Err(); serr != nil {
				err = fmt.Errorf("%w: %v", logging.ErrUnavailable, serr)
			}
		}
		// An interrupted stage may have logged per-file failures and carried
		// on; the run as a whole did not complete.
		if err == nil && ctx.Err() != nil {
			err = fmt.Errorf("interrupted after %s: %w", out.State, ctx.Err())
		}
		if err == nil && !isAllowedTransition(out.State, next) {
			err = fmt.Errorf("illegal transition %s -> %s", out.State, next)
		}
		if err != nil {
			p.abort(&out, err)
			break
		}
		out.State = next
		out.Path = append(out.Path, next)
	}

	if out.State == StateDone {
		p.log.Info("---- Process Completed Successfully ----")
	}
	out.Finished = p.now()
	return out
}

// safeStep runs one stage and turns a panic into an error.
func (p *Pipeline) safeStep(ctx context.Context, s State, feed FeedSpec, policy RetentionPolicy, out *Outcome) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", s, r)
		}
	}()
	return p.step(ctx, s, feed, policy, out)
}

func (p *Pipeline) step(ctx context.Context, s State, feed FeedSpec, policy RetentionPolicy, out *Outcome) (State, error) {
	switch s {
	case StateStart:
		p.log.Info("---- Starting File Check Process ----")
		return StateCheckDir, nil

	case StateCheckDir:
		if !p.checker.DirectoryExists(feed.Dir) {
			p.log.Warn("Feed directory unavailable, skipping archive step")
			return StatePurge, nil
		}
		return StateCheckFiles, nil

	case StateCheckFiles:
		if !p.checker.FilesExist(feed.Dir, feed.Files) {
			p.log.Warn("Some files are missing in feed directory.")
			return StatePurge, nil
		}
		p.log.Info("All files exist. Proceeding to compression...")
		return StateArchive, nil

	case StateArchive:
		rep, err := p.archiver.Archive(ctx, feed.Dir, policy.ArchiveDir, feed.Files)
		out.Archive = rep
		if err != nil {
			return StateAborted, fmt.Errorf("archive: %w", err)
		}
		return StatePurge, nil

	case StatePurge:
		rep, err := p.purger.Purge(ctx, policy.ArchiveDir, policy.Days)
		out.Purge = rep
		if err != nil {
			return StateAborted, fmt.Errorf("purge: %w", err)
		}
		return StateDone, nil

	default:
		return StateAborted, fmt.Errorf("no stage for state %s", s)
	}
}

func (p *Pipeline) abort(out *Outcome, err error) {
	out.Err = err
	out.State = StateAborted
	out.Path = append(out.Path, StateAborted)
	p.log.Error("Unexpected error: %v", err)
}
