package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantmind-br/repozip/internal/archive"
	"github.com/quantmind-br/repozip/internal/config"
	"github.com/quantmind-br/repozip/internal/domain"
	gitclient "github.com/quantmind-br/repozip/internal/git"
	"github.com/quantmind-br/repozip/internal/resolver"
	"github.com/quantmind-br/repozip/internal/utils"
)

// Service runs the resolve, fetch and repack pipeline for one URL
type Service struct {
	resolver domain.URLResolver
	source   domain.ArchiveSource
	repacker domain.Repacker
	timeout  time.Duration
	logger   *utils.Logger
}

// ServiceOptions contains options for creating a Service. Nil collaborators
// are built from Config.
type ServiceOptions struct {
	Config    *config.Config
	Logger    *utils.Logger
	Verbose   bool
	Resolver  domain.URLResolver
	Source    domain.ArchiveSource
	Repacker  domain.Repacker
	GitClient gitclient.Client
}

// NewService creates a new Service with the given configuration
func NewService(opts ServiceOptions) (*Service, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLoggerFromConfig(cfg.Logging, opts.Verbose)
	}

	httpClient := archive.NewHTTPClient(cfg.GitHub.Timeout)

	urlResolver := opts.Resolver
	if urlResolver == nil {
		lookupClient := archive.NewHTTPClient(cfg.GitHub.LookupTimeout)
		lookups, err := buildLookups(cfg, opts.GitClient, lookupClient)
		if err != nil {
			return nil, err
		}
		urlResolver = resolver.New(resolver.Options{
			Lookups:        lookups,
			FallbackBranch: cfg.GitHub.FallbackBranch,
			LookupTimeout:  cfg.GitHub.LookupTimeout,
			Logger:         logger,
		})
	}

	source := opts.Source
	if source == nil {
		source = archive.NewFetcher(archive.FetcherOptions{
			HTTPClient: httpClient,
			BaseURL:    cfg.GitHub.ArchiveURL,
			UserAgent:  cfg.GitHub.UserAgent,
			MaxSize:    cfg.MaxArchiveBytes(),
			Logger:     logger,
		})
	}

	repacker := opts.Repacker
	if repacker == nil {
		repacker = archive.NewTransformer(archive.TransformerOptions{Logger: logger})
	}

	return &Service{
		resolver: urlResolver,
		source:   source,
		repacker: repacker,
		timeout:  cfg.GitHub.Timeout,
		logger:   logger.WithComponent("service"),
	}, nil
}

// buildLookups assembles the default branch chain: the REST API first, then
// the git remote when enabled
func buildLookups(cfg *config.Config, git gitclient.Client, httpClient *http.Client) ([]domain.BranchLookup, error) {
	api, err := resolver.NewGitHubLookup(resolver.GitHubLookupOptions{
		HTTPClient: httpClient,
		BaseURL:    cfg.GitHub.APIURL,
		UserAgent:  cfg.GitHub.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub lookup: %w", err)
	}

	lookups := []domain.BranchLookup{api}
	if cfg.GitHub.RemoteLookup {
		lookups = append(lookups, resolver.NewRemoteLookup(git, cfg.GitHub.ArchiveURL))
	}
	return lookups, nil
}

// Download resolves rawURL and returns the re-packaged subtree
func (s *Service) Download(ctx context.Context, rawURL string) (*domain.OutputArchive, error) {
	return s.DownloadWithProgress(ctx, rawURL, nil)
}

// DownloadWithProgress is Download with a byte-progress observer for the
// archive transfer. The observer is ignored when the source cannot report
// progress.
//
// Branch lookups are bounded by the resolver's own per-lookup deadline; the
// download timeout starts once the branch is known.
func (s *Service) DownloadWithProgress(ctx context.Context, rawURL string, progress domain.ProgressFunc) (*domain.OutputArchive, error) {
	startTime := time.Now()

	ref, err := s.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return nil, domain.AsError(err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.WithRepo(ref.Owner, ref.Repo)
	log.Info().
		Str("branch", ref.Branch).
		Str("subfolder", ref.Subfolder).
		Msg("Fetching repository archive")

	var data []byte
	if ps, ok := s.source.(domain.ProgressSource); ok && progress != nil {
		data, err = ps.FetchWithProgress(ctx, ref, progress)
	} else {
		data, err = s.source.Fetch(ctx, ref)
	}
	if err != nil {
		return nil, domain.AsError(err)
	}

	out, err := s.repacker.Repack(ref, data)
	if err != nil {
		return nil, domain.AsError(err)
	}

	log.Info().
		Str("filename", out.Filename).
		Int("files", len(out.Entries)).
		Int("bytes", out.Size()).
		Dur("duration", time.Since(startTime)).
		Msg("Archive ready")

	return out, nil
}
