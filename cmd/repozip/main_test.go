package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/repozip/internal/output"
)

// execute runs the root command with args and returns everything it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return buf.String(), err
}

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for name, content := range map[string]string{
		"r-main/README.md":     "readme",
		"r-main/docs/guide.md": "guide",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/o/r/archive/refs/heads/main.zip" {
			_, _ = w.Write(archive.Bytes())
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "repozip")
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("REPOZIP_GITHUB_FALLBACK_BRANCH", "trunk")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "fallback_branch: trunk")
	assert.Contains(t, out, "max_archive_size: 512MB")
	assert.Contains(t, out, "server:")
}

func TestDownloadCommand(t *testing.T) {
	gh := fakeGitHub(t)
	t.Setenv("REPOZIP_GITHUB_ARCHIVE_URL", gh.URL)
	t.Setenv("REPOZIP_LOGGING_LEVEL", "error")
	dir := t.TempDir()

	out, err := execute(t, "download", "https://github.com/o/r/tree/main/docs", "-o", dir, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")

	data, err := os.ReadFile(filepath.Join(dir, "docs.zip"))
	require.NoError(t, err)
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 1)
	assert.Equal(t, "guide.md", reader.File[0].Name)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := execute(t, "download", "https://github.com/o/r/tree/main/docs", "-o", dir, "--no-progress")
		require.Error(t, err)
		assert.ErrorIs(t, err, output.ErrExists)
	})
}

func TestDownloadCommand_UpstreamError(t *testing.T) {
	gh := fakeGitHub(t)
	t.Setenv("REPOZIP_GITHUB_ARCHIVE_URL", gh.URL)
	t.Setenv("REPOZIP_LOGGING_LEVEL", "error")

	_, err := execute(t, "download", "https://github.com/o/r/tree/missing", "-o", t.TempDir(), "--no-progress")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadCommand_RequiresURL(t *testing.T) {
	_, err := execute(t, "download")
	assert.Error(t, err)
}

func TestCheckReachable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "client error still reachable", status: http.StatusNotFound},
		{name: "server error", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAgent string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAgent = r.Header.Get("User-Agent")
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := checkReachable(context.Background(), server.URL, "repozip-test")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, "repozip-test", gotAgent)
		})
	}
}

func TestCheckWritePermissions(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, checkWritePermissions(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, checkWritePermissions(filepath.Join(dir, "missing")))
}

func TestConfigCommand_ExplicitConfigFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.SetConfigName("config")
	})

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github:\n  fallback_branch: from-file\n"), 0644))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "fallback_branch: from-file")
}
