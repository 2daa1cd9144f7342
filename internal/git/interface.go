package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
)

// Client defines the interface for Git operations
type Client interface {
	// ListRemoteContext returns the references advertised by a remote, like
	// `git ls-remote --symref`
	ListRemoteContext(ctx context.Context, url string) ([]*plumbing.Reference, error)
}
