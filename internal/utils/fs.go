package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxFilenameLength is the maximum length for a filename
const MaxFilenameLength = 200

// Windows reserved names
var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// invalidCharsRegex matches characters that are unsafe in a filename or in
// a Content-Disposition header value
var invalidCharsRegex = regexp.MustCompile(`[<>:"|?*\\/;]`)

var dashRunRegex = regexp.MustCompile(`-{2,}`)

// SanitizeFilename makes name safe for use as a filename on disk and in a
// Content-Disposition header. The extension is preserved.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = invalidCharsRegex.ReplaceAllString(name, "-")
	name = dashRunRegex.ReplaceAllString(name, "-")

	ext := filepath.Ext(name)
	base := strings.Trim(strings.TrimSuffix(name, ext), "-. ")
	if base == "" {
		base = "archive"
	}
	if windowsReserved[strings.ToUpper(base)] {
		base = "_" + base
	}
	if len(ext) > MaxFilenameLength/2 {
		ext = ""
	}
	if len(base)+len(ext) > MaxFilenameLength {
		base = truncateUTF8(base, MaxFilenameLength-len(ext))
	}

	return base + ext
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EnsureDir ensures the parent directory of path exists
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
