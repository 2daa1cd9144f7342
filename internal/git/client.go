package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

// ListRemoteContext lists remote references without touching the filesystem
func (c *RealClient) ListRemoteContext(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("ls-remote %s: %w", url, err)
	}
	return refs, nil
}

// HeadBranch returns the branch HEAD points to in a remote listing
func HeadBranch(refs []*plumbing.Reference) (string, error) {
	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
			return ref.Target().Short(), nil
		}
		// Servers without symref support only advertise the hash; match
		// it against a branch tip.
		for _, other := range refs {
			if other.Name().IsBranch() && other.Hash() == ref.Hash() {
				return other.Name().Short(), nil
			}
		}
	}
	return "", fmt.Errorf("could not determine default branch")
}
