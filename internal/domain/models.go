package domain

import (
	"io/fs"
	"path"
	"time"
)

// RepoReference identifies the subtree of a GitHub repository to package.
// Owner and Repo are never empty; Subfolder uses forward slashes and has no
// leading or trailing slash.
type RepoReference struct {
	Owner         string
	Repo          string
	Branch        string
	Subfolder     string
	BranchFromURL bool
}

// FullName returns "owner/repo"
func (r *RepoReference) FullName() string {
	return r.Owner + "/" + r.Repo
}

// ArchiveName returns the suggested download filename: the last segment of
// the subfolder, or the repository name, with a .zip suffix
func (r *RepoReference) ArchiveName() string {
	name := r.Repo
	if r.Subfolder != "" {
		name = path.Base(r.Subfolder)
	}
	return name + ".zip"
}

// ArchiveEntry is one file inside a ZIP archive
type ArchiveEntry struct {
	Path     string
	Data     []byte
	Modified time.Time
	Mode     fs.FileMode
}

// OutputArchive is the re-packaged archive produced for a single request
type OutputArchive struct {
	Filename string
	Entries  []ArchiveEntry
	Data     []byte
}

// Size returns the encoded archive size in bytes
func (a *OutputArchive) Size() int {
	return len(a.Data)
}
