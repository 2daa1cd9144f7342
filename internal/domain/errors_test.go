package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		sentinel error
	}{
		{"invalid url", NewInvalidURLError("bad"), ErrInvalidURL},
		{"source unavailable", NewSourceUnavailableError("down", 404, nil), ErrSourceUnavailable},
		{"not found", NewNotFoundError("no such folder"), ErrNotFound},
		{"archive corrupt", NewArchiveCorruptError(errors.New("zip: not a valid zip file")), ErrArchiveCorrupt},
		{"internal", NewInternalError(errors.New("boom")), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("pipeline: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			for _, other := range kindSentinels {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewInvalidURLError("x").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NewSourceUnavailableError("x", http.StatusNotFound, nil).HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("x").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, NewSourceUnavailableError("x", 0, errors.New("dial")).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewArchiveCorruptError(nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewInternalError(nil).HTTPStatus())
}

func TestError_Message(t *testing.T) {
	err := NewSourceUnavailableError("failed to download ZIP", 404, nil)
	assert.Equal(t, "failed to download ZIP (status 404)", err.Error())

	cause := errors.New("unexpected EOF")
	corrupt := NewArchiveCorruptError(cause)
	assert.Contains(t, corrupt.Error(), "unexpected EOF")
	assert.ErrorIs(t, corrupt, cause)
	assert.Equal(t, "failed to process ZIP", corrupt.PublicMessage())

	empty := &Error{Kind: KindInvalidURL}
	assert.Equal(t, "invalid URL", empty.Error())
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	orig := NewInvalidURLError("bad")
	assert.Same(t, orig, AsError(fmt.Errorf("wrap: %w", orig)))

	plain := AsError(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, "internal error", plain.PublicMessage())
}

func TestRepoReference_ArchiveName(t *testing.T) {
	ref := &RepoReference{Owner: "o", Repo: "repo", Branch: "main"}
	assert.Equal(t, "repo.zip", ref.ArchiveName())
	assert.Equal(t, "o/repo", ref.FullName())

	ref.Subfolder = "docs/guides"
	assert.Equal(t, "guides.zip", ref.ArchiveName())
}
