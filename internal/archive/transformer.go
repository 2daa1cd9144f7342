package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Transformer re-packages a branch archive into the requested subtree
type Transformer struct {
	logger *utils.Logger
}

// TransformerOptions contains options for creating a Transformer
type TransformerOptions struct {
	Logger *utils.Logger
}

// NewTransformer creates a new Transformer
func NewTransformer(opts TransformerOptions) *Transformer {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Transformer{logger: logger.WithComponent("transformer")}
}

// Repack filters data down to ref's subfolder and encodes a new archive.
// Unparseable data yields ArchiveCorrupt; a subfolder that matches nothing
// yields NotFound.
func (t *Transformer) Repack(ref *domain.RepoReference, data []byte) (*domain.OutputArchive, error) {
	entries, err := ReadArchive(data)
	if err != nil {
		return nil, domain.NewArchiveCorruptError(err)
	}

	root := ArchiveRoot(ref)
	if detected := detectRoot(entries); detected != "" && detected != root {
		t.logger.Debug().
			Str("expected", root).
			Str("detected", detected).
			Msg("Archive root differs from branch name, using detected root")
		root = detected
	}
	prefix := FilterPrefix(root, ref.Subfolder)

	kept := FilterEntries(entries, prefix)
	if ref.Subfolder != "" && len(kept) == 0 {
		return nil, domain.NewNotFoundError(
			fmt.Sprintf("Folder %q not found in %s@%s", ref.Subfolder, ref.FullName(), ref.Branch))
	}

	out, err := WriteArchive(kept)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("encode archive: %w", err))
	}

	t.logger.Debug().
		Str("prefix", prefix).
		Int("source_entries", len(entries)).
		Int("kept_entries", len(kept)).
		Int("bytes", len(out)).
		Msg("Archive repacked")

	return &domain.OutputArchive{
		Filename: ref.ArchiveName(),
		Entries:  kept,
		Data:     out,
	}, nil
}

// ArchiveRoot returns the top-level directory GitHub uses for a branch
// archive. Slashes in the branch become dashes.
func ArchiveRoot(ref *domain.RepoReference) string {
	return ref.Repo + "-" + strings.ReplaceAll(ref.Branch, "/", "-") + "/"
}

// FilterPrefix joins the archive root and subfolder into the filter prefix
func FilterPrefix(root, subfolder string) string {
	if subfolder == "" {
		return root
	}
	return root + strings.Trim(subfolder, "/") + "/"
}

// FilterEntries keeps the entries under prefix with the prefix removed.
// Directory markers, entries whose rewritten path is empty, and paths that
// would escape the archive root are dropped. With an empty prefix every file
// entry is kept as-is.
func FilterEntries(entries []domain.ArchiveEntry, prefix string) []domain.ArchiveEntry {
	kept := make([]domain.ArchiveEntry, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Path, prefix) {
			continue
		}
		rel := entry.Path[len(prefix):]
		if rel == "" || strings.HasSuffix(rel, "/") || !isSafePath(rel) {
			continue
		}
		entry.Path = rel
		kept = append(kept, entry)
	}
	return kept
}

// ReadArchive decodes every entry of a ZIP buffer, in archive order.
// Directory entries are returned with a trailing slash and no data.
func ReadArchive(data []byte) ([]domain.ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ArchiveEntry, 0, len(reader.File))
	for _, f := range reader.File {
		entry := domain.ArchiveEntry{
			Path:     f.Name,
			Modified: f.Modified,
			Mode:     f.Mode(),
		}
		if !f.FileInfo().IsDir() {
			content, err := readFile(f)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.Name, err)
			}
			entry.Data = content
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteArchive encodes entries, in order, as a deflated ZIP buffer
func WriteArchive(entries []domain.ArchiveEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.Path,
			Method:   zip.Deflate,
			Modified: entry.Modified,
		}
		if entry.Mode != 0 {
			header.SetMode(entry.Mode)
		}
		fw, err := w.CreateHeader(header)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// detectRoot returns "<dir>/" when every entry lives under a single
// top-level directory
func detectRoot(entries []domain.ArchiveEntry) string {
	root := ""
	for _, entry := range entries {
		i := strings.Index(entry.Path, "/")
		if i <= 0 {
			return ""
		}
		top := entry.Path[:i+1]
		if root == "" {
			root = top
		} else if top != root {
			return ""
		}
	}
	return root
}

func isSafePath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return false
		}
	}
	return path.Clean(p) != "."
}

var _ domain.Repacker = (*Transformer)(nil)
