package domain

import "context"

// BranchLookup resolves the default branch of a repository
type BranchLookup interface {
	// Name identifies the lookup in logs
	Name() string
	// DefaultBranch returns the default branch for owner/repo
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
}

// ArchiveSource downloads the full-repository archive for a branch
type ArchiveSource interface {
	Fetch(ctx context.Context, ref *RepoReference) ([]byte, error)
}

// ProgressFunc receives the number of bytes read so far and the expected
// total (-1 when unknown)
type ProgressFunc func(read, total int64)

// ProgressSource is an ArchiveSource that can report download progress
type ProgressSource interface {
	ArchiveSource
	FetchWithProgress(ctx context.Context, ref *RepoReference, progress ProgressFunc) ([]byte, error)
}

// URLResolver turns a repository URL into a RepoReference with its branch
// filled in
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) (*RepoReference, error)
}

// Repacker re-packages a full branch archive into the referenced subtree
type Repacker interface {
	Repack(ref *RepoReference, data []byte) (*OutputArchive, error)
}
