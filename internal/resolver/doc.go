// Package resolver turns a GitHub web URL into a domain.RepoReference.
//
// Accepted shapes:
//
//	https://github.com/<owner>/<repo>
//	https://github.com/<owner>/<repo>.git
//	https://github.com/<owner>/<repo>/tree/<branch>
//	https://github.com/<owner>/<repo>/tree/<branch>/<subfolder...>
//
// When the URL names no branch the Resolver walks its BranchLookup chain
// (GitHub REST API, then git ls-remote) and finally uses the configured
// fallback branch. Lookup failures are logged and never fatal.
package resolver
