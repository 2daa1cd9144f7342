package output

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// ErrExists is returned when the destination exists and Force is not set
var ErrExists = errors.New("destination already exists")

// Writer saves produced archives to the filesystem
type Writer struct {
	baseDir string
	force   bool
	dryRun  bool
	extract bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	BaseDir string
	Force   bool
	DryRun  bool
	// Extract unpacks the entries into a directory named after the
	// archive instead of writing the .zip file
	Extract bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}

	return &Writer{
		baseDir: utils.ExpandPath(opts.BaseDir),
		force:   opts.Force,
		dryRun:  opts.DryRun,
		extract: opts.Extract,
	}
}

// Write saves out and returns the path written (or that would be written in
// dry-run mode)
func (w *Writer) Write(ctx context.Context, out *domain.OutputArchive) (string, error) {
	path := w.GetPath(out)

	if !w.force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, path)
		}
	}

	if w.dryRun {
		return path, nil
	}

	if w.extract {
		return path, w.writeTree(ctx, path, out.Entries)
	}

	if err := utils.EnsureDir(path); err != nil {
		return path, err
	}
	return path, writeFileAtomic(path, out.Data, 0644)
}

// GetPath returns the destination for out
func (w *Writer) GetPath(out *domain.OutputArchive) string {
	name := utils.SanitizeFilename(out.Filename)
	if w.extract {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return filepath.Join(w.baseDir, name)
}

// writeTree unpacks entries beneath dir, refusing paths that would land
// outside it
func (w *Writer) writeTree(ctx context.Context, dir string, entries []domain.ArchiveEntry) error {
	if w.force {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target := filepath.Join(dir, filepath.FromSlash(entry.Path))
		if rel, err := filepath.Rel(dir, target); err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("refusing to write %q outside %s", entry.Path, dir)
		}

		if err := utils.EnsureDir(target); err != nil {
			return err
		}
		if entry.Mode&fs.ModeSymlink != 0 {
			if err := writeSymlink(dir, target, string(entry.Data)); err != nil {
				return err
			}
			continue
		}
		mode := entry.Mode.Perm()
		if mode == 0 {
			mode = 0644
		}
		if err := os.WriteFile(target, entry.Data, mode); err != nil {
			return err
		}
		if !entry.Modified.IsZero() {
			_ = os.Chtimes(target, entry.Modified, entry.Modified)
		}
	}
	return nil
}

// writeSymlink recreates a symlink entry at target. Links that are absolute
// or resolve outside dir are skipped so an extracted tree never points at
// files it does not contain.
func writeSymlink(dir, target, link string) error {
	if link == "" || filepath.IsAbs(link) {
		return nil
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(link))
	if rel, err := filepath.Rel(dir, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	if err := os.Symlink(filepath.FromSlash(link), target); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}

// writeFileAtomic writes through a temp file in the same directory so a
// failed download never leaves a truncated archive behind
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".repozip-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
