package resolver

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/quantmind-br/repozip/internal/domain"
)

var (
	// owner and repo use GitHub's name charset
	repoPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(/.*)?$`)
	treePattern = regexp.MustCompile(`^/tree/([^/]+)(?:/(.*))?$`)
)

// ParseURL parses a GitHub repository URL. The returned reference has an
// empty Branch when the URL does not name one.
func ParseURL(rawURL string) (*domain.RepoReference, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return nil, domain.NewInvalidURLError("Missing repo parameter")
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}

	matches := repoPattern.FindStringSubmatch(raw)
	if matches == nil {
		return nil, invalidURL(rawURL)
	}

	ref := &domain.RepoReference{
		Owner: matches[1],
		Repo:  matches[2],
	}
	if ref.Repo == "." || ref.Repo == ".." || ref.Owner == "." || ref.Owner == ".." {
		return nil, invalidURL(rawURL)
	}

	rest := strings.TrimRight(matches[3], "/")
	if rest == "" {
		return ref, nil
	}

	treeMatches := treePattern.FindStringSubmatch(rest)
	if treeMatches == nil {
		return nil, invalidURL(rawURL)
	}

	branch, err := url.PathUnescape(treeMatches[1])
	if err != nil || strings.TrimSpace(branch) == "" {
		return nil, invalidURL(rawURL)
	}
	ref.Branch = branch
	ref.BranchFromURL = true

	subfolder, err := NormalizeSubfolder(treeMatches[2])
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindInvalidURL, Message: "Invalid GitHub URL", Err: err}
	}
	ref.Subfolder = subfolder

	return ref, nil
}

// NormalizeSubfolder decodes percent-escapes, converts backslashes to
// forward slashes, and strips leading and trailing slashes. Paths that climb
// above the repository root are rejected.
func NormalizeSubfolder(p string) (string, error) {
	if p == "" {
		return "", nil
	}

	original := p
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "", nil
	}

	p = path.Clean(p)
	if p == "." {
		return "", nil
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("subfolder %q escapes the repository root", original)
	}
	return p, nil
}

func invalidURL(rawURL string) *domain.Error {
	return &domain.Error{
		Kind:    domain.KindInvalidURL,
		Message: "Invalid GitHub URL",
		Err:     fmt.Errorf("expected https://github.com/<owner>/<repo>[/tree/<branch>/<path>], got %q", rawURL),
	}
}
