package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/quantmind-br/repozip/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := New(Options{
		Config:  config.ServerConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Handler: NewHandler(HandlerOptions{Downloader: &mockDownloader{}}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := New(Options{Config: config.ServerConfig{Addr: "256.0.0.1:bad"}})
	err := srv.Serve(context.Background())
	assert.Error(t, err)
}
