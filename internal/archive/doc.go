// Package archive downloads GitHub branch archives and re-packages the
// requested subtree.
//
// Architecture:
//   - Fetcher: HTTP download of <owner>/<repo>/archive/refs/heads/<branch>.zip
//   - Transformer: prefix filtering, path rewriting, ZIP encoding
//
// GitHub names the single top-level directory of a branch archive
// <repo>-<branch>/. Entries under <repo>-<branch>/<subfolder>/ are kept with
// that prefix removed; directory markers are dropped.
package archive
