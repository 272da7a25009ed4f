// Package archive compresses feed files into the archive directory and
// removes each source only after its artifact has been verified.
package archive

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/raoulx24/feed-archiver/internal/artifact"
	"github.com/raoulx24/feed-archiver/internal/fs"
	"github.com/raoulx24/feed-archiver/internal/logging"
	"github.com/raoulx24/feed-archiver/internal/report"
)

// Archiver writes one zip artifact per source file.
type Archiver struct {
	fs    fs.FS
	log   logging.Logger
	runID string
	level int
}

// New creates an archiver. runID names the staging directory used by this
// run; level is a flate compression level.
func New(filesystem fs.FS, log logging.Logger, runID string, level int) *Archiver {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Archiver{
		fs:    filesystem,
		log:   log,
		runID: runID,
		level: level,
	}
}

// Archive processes names in order. Per-file failures are logged and
// recorded in the report; the returned error is reserved for conditions
// that make the whole run untrustworthy: the archive directory cannot be
// created, the log sink is broken or ctx is cancelled.
func (a *Archiver) Archive(ctx context.Context, sourceDir, archiveDir string, names []string) (report.Report, error) {
	var rep report.Report

	if err := a.fs.MkdirAll(archiveDir); err != nil {
		return rep, fmt.Errorf("creating archive dir: %w", err)
	}

	// Artifacts are assembled here and renamed into archiveDir once verified.
	// Purge never descends into subdirectories, so nothing half-written is
	// ever a purge candidate.
	staging := filepath.Join(archiveDir, ".tmp-"+a.runID)
	if err := a.fs.MkdirAll(staging); err != nil {
		return rep, fmt.Errorf("creating staging dir: %w", err)
	}
	defer func() {
		_ = a.fs.RemoveAll(staging)
	}()

	claimed := map[string]string{}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("archive interrupted before %s: %w", name, err)
		}
		res, err := a.archiveOne(ctx, sourceDir, archiveDir, staging, name, claimed)
		rep.Add(res)
		if err != nil {
			return rep, err
		}
	}
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("archive interrupted: %w", err)
	}

	return rep, nil
}

func (a *Archiver) archiveOne(ctx context.Context, sourceDir, archiveDir, staging, name string, claimed map[string]string) (report.Result, error) {
	res := report.Result{Stage: report.StageArchive, Name: name}
	src := filepath.Join(sourceDir, name)

	orig, err := a.fs.Stat(src)
	if err != nil {
		a.log.Warn("File not found for compression: %s", name)
		res.Status = report.StatusSkipped
		res.Err = err
		return res, nil
	}

	artName := artifact.NameFor(name)
	final := filepath.Join(archiveDir, artName)
	staged := filepath.Join(staging, artName)

	fail := func(err error) (report.Result, error) {
		_ = a.fs.RemoveAll(staged)
		a.log.Error("Error compressing %s: %v", name, err)
		res.Status = report.StatusFailed
		res.Err = err
		return res, nil
	}

	if !orig.Regular() {
		return fail(errors.New("not a regular file"))
	}
	if other, ok := claimed[artName]; ok {
		return fail(fmt.Errorf("artifact %s already written for %s in this run", artName, other))
	}

	if err := a.compress(src, orig, staged); err != nil {
		return fail(err)
	}
	if err := a.fs.Rename(ctx, staged, final); err != nil {
		return fail(fmt.Errorf("publishing artifact: %w", err))
	}
	claimed[artName] = name
	res.Artifact = final

	a.log.Info("Compressed and archived: %s", name)

	if err := a.log.Err(); err != nil {
		res.Status = report.StatusFailed
		res.Err = fmt.Errorf("%w: %v", logging.ErrUnavailable, err)
		return res, fmt.Errorf("%w: refusing to remove %s: %v", logging.ErrUnavailable, name, err)
	}

	if err := a.fs.Remove(ctx, src); err != nil {
		a.log.Error("Error removing %s after compression: %v", name, err)
		res.Status = report.StatusFailed
		res.Err = err
		return res, nil
	}

	a.log.Info("Removed original file after compression: %s", name)
	res.Status = report.StatusArchived
	return res, nil
}

// compress writes src into a single-entry zip at dst and verifies it.
func (a *Archiver) compress(src string, orig fs.FileInfo, dst string) error {
	in, err := a.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := a.fs.Create(dst)
	if err != nil {
		return err
	}

	entry := filepath.Base(src)
	sum := crc32.NewIEEE()

	n, err := a.writeZip(out, io.TeeReader(in, sum), entry, orig)
	if err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	now, err := a.fs.Stat(src)
	if err != nil {
		return err
	}
	if n != orig.Size || fs.Changed(orig, now) {
		return fs.ErrSourceChanged
	}

	return a.verify(dst, entry, uint64(n), sum.Sum32())
}

func (a *Archiver) writeZip(w io.Writer, r io.Reader, entry string, orig fs.FileInfo) (int64, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, a.level)
	})

	hdr := &zip.FileHeader{
		Name:     entry,
		Method:   zip.Deflate,
		Modified: orig.MTime,
	}
	hdr.SetMode(orig.Mode)

	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(fw, r)
	if err != nil {
		return n, fmt.Errorf("reading source: %w", err)
	}

	if err := zw.Close(); err != nil {
		return n, err
	}
	return n, nil
}

// verify re-opens the written artifact and checks that it holds exactly the
// bytes read from the source.
func (a *Archiver) verify(path, entry string, size uint64, sum uint32) error {
	st, err := a.fs.Stat(path)
	if err != nil {
		return err
	}
	if st.Size == 0 {
		return errors.New("artifact is empty")
	}

	f, err := a.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zip.NewReader(f, st.Size)
	if err != nil {
		return fmt.Errorf("verifying artifact: %w", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != entry {
		return fmt.Errorf("verifying artifact: unexpected contents")
	}

	zf := zr.File[0]
	if zf.UncompressedSize64 != size || zf.CRC32 != sum {
		return fmt.Errorf("verifying artifact: size or checksum mismatch")
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("verifying artifact: %w", err)
	}
	defer rc.Close()

	// the zip reader checks the CRC at EOF
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("verifying artifact: %w", err)
	}
	return nil
}
