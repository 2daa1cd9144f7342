package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
)

const (
	// DefaultBaseURL is the archive source host
	DefaultBaseURL = "https://github.com"
	// DefaultMaxSize caps the buffered archive size
	DefaultMaxSize int64 = 512 * 1024 * 1024
	// maxRedirects matches the limit net/http applies by default
	maxRedirects = 10
)

// Fetcher downloads branch archives over HTTP
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxSize    int64
	logger     *utils.Logger
}

// FetcherOptions contains options for creating a Fetcher
type FetcherOptions struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	MaxSize    int64
	Logger     *utils.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(time.Minute)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &Fetcher{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		maxSize:    opts.MaxSize,
		logger:     opts.Logger.WithComponent("fetcher"),
	}
}

// NewHTTPClient creates the client used for GitHub requests: bounded
// timeout, redirects followed up to a limit
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// BuildArchiveURL returns the archive URL for ref's branch
func (f *Fetcher) BuildArchiveURL(ref *domain.RepoReference) string {
	segments := strings.Split(ref.Branch, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/archive/refs/heads/%s.zip",
		f.baseURL, url.PathEscape(ref.Owner), url.PathEscape(ref.Repo), strings.Join(segments, "/"))
}

// Fetch implements domain.ArchiveSource
func (f *Fetcher) Fetch(ctx context.Context, ref *domain.RepoReference) ([]byte, error) {
	return f.FetchWithProgress(ctx, ref, nil)
}

// FetchWithProgress downloads and buffers the archive, reporting bytes read
// to progress when it is non-nil
func (f *Fetcher) FetchWithProgress(ctx context.Context, ref *domain.RepoReference, progress domain.ProgressFunc) ([]byte, error) {
	archiveURL := f.BuildArchiveURL(ref)
	f.logger.Debug().Str("archive_url", archiveURL).Msg("Downloading archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn().
			Int("status", resp.StatusCode).
			Str("archive_url", archiveURL).
			Msg("Archive download failed")
		return nil, domain.NewSourceUnavailableError(
			"Failed to download ZIP. Check branch or repo.", resp.StatusCode, nil)
	}

	if resp.ContentLength > f.maxSize {
		return nil, tooLarge(f.maxSize)
	}

	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{r: body, total: resp.ContentLength, fn: progress}
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxSize+1))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, tooLarge(f.maxSize)
	}

	f.logger.Debug().
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("Archive downloaded")

	return data, nil
}

func classifyTransportError(err error) *domain.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.NewSourceUnavailableError("Timed out fetching from GitHub", http.StatusGatewayTimeout, err)
	}
	return domain.NewSourceUnavailableError("Error fetching from GitHub", http.StatusBadGateway, err)
}

func tooLarge(limit int64) *domain.Error {
	return domain.NewSourceUnavailableError(
		fmt.Sprintf("Repository archive exceeds the %d byte limit", limit), http.StatusBadGateway, nil)
}

type progressReader struct {
	r     io.Reader
	read  int64
	total int64
	fn    domain.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}

var (
	_ domain.ArchiveSource  = (*Fetcher)(nil)
	_ domain.ProgressSource = (*Fetcher)(nil)
)
