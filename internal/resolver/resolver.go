package resolver

import (
	"context"
	"time"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

const (
	// DefaultFallbackBranch is used when every lookup fails
	DefaultFallbackBranch = "main"
	// DefaultLookupTimeout bounds a single default branch lookup
	DefaultLookupTimeout = 10 * time.Second
)

// Resolver parses repository URLs and fills in the default branch
type Resolver struct {
	lookups        []domain.BranchLookup
	fallbackBranch string
	lookupTimeout  time.Duration
	logger         *utils.Logger
}

// Options contains options for creating a Resolver
type Options struct {
	Lookups        []domain.BranchLookup
	FallbackBranch string
	LookupTimeout  time.Duration
	Logger         *utils.Logger
}

// New creates a new Resolver
func New(opts Options) *Resolver {
	if opts.FallbackBranch == "" {
		opts.FallbackBranch = DefaultFallbackBranch
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Resolver{
		lookups:        opts.Lookups,
		fallbackBranch: opts.FallbackBranch,
		lookupTimeout:  opts.LookupTimeout,
		logger:         logger.WithComponent("resolver"),
	}
}

// Resolve parses rawURL and resolves its branch. Only malformed URLs fail.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*domain.RepoReference, error) {
	ref, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if ref.Branch == "" {
		ref.Branch = r.DefaultBranch(ctx, ref.Owner, ref.Repo)
	}

	r.logger.Debug().
		Str("owner", ref.Owner).
		Str("repo", ref.Repo).
		Str("branch", ref.Branch).
		Str("subfolder", ref.Subfolder).
		Bool("branch_from_url", ref.BranchFromURL).
		Msg("Resolved repository URL")

	return ref, nil
}

// DefaultBranch walks the lookup chain and returns the first answer, or the
// fallback branch. Each lookup runs under its own deadline so a stalled
// one cannot use up the caller's budget.
func (r *Resolver) DefaultBranch(ctx context.Context, owner, repo string) string {
	log := r.logger.WithRepo(owner, repo)

	for _, lookup := range r.lookups {
		if ctx.Err() != nil {
			break
		}
		branch, err := r.lookup(ctx, lookup, owner, repo)
		if err == nil && branch != "" {
			log.Debug().Str("lookup", lookup.Name()).Str("branch", branch).Msg("Detected default branch")
			return branch
		}
		log.Warn().Err(err).Str("lookup", lookup.Name()).Msg("Default branch lookup failed")
	}

	log.Info().Str("branch", r.fallbackBranch).Msg("Using fallback branch")
	return r.fallbackBranch
}

func (r *Resolver) lookup(ctx context.Context, lookup domain.BranchLookup, owner, repo string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()
	return lookup.DefaultBranch(ctx, owner, repo)
}

var _ domain.URLResolver = (*Resolver)(nil)
