package server

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/quantmind-br/repozip/internal/domain"
	"github.com/quantmind-br/repozip/internal/utils"
	"github.com/quantmind-br/repozip/pkg/version"
	"github.com/rs/zerolog/hlog"
)

// DownloadPath is the single download route
const DownloadPath = "/api/download"

// Downloader produces the archive for a repository URL
type Downloader interface {
	Download(ctx context.Context, rawURL string) (*domain.OutputArchive, error)
}

// Handler serves the download and health routes
type Handler struct {
	downloader Downloader
	logger     *utils.Logger
}

// HandlerOptions contains options for creating a Handler
type HandlerOptions struct {
	Downloader Downloader
	Logger     *utils.Logger
}

// NewHandler returns the fully wrapped HTTP handler: routes, CORS, panic
// recovery and access logging
func NewHandler(opts HandlerOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	h := &Handler{
		downloader: opts.Downloader,
		logger:     logger.WithComponent("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(DownloadPath, h.handleDownload)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	return chain(mux,
		withCORS,
		withRecovery,
		accessLog,
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.RemoteAddrHandler("ip"),
		hlog.NewHandler(h.logger.Logger),
	)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	repo := r.URL.Query().Get("repo")
	if repo == "" {
		writeError(w, http.StatusBadRequest, "Missing repo parameter")
		return
	}

	out, err := h.downloader.Download(r.Context(), repo)
	if err != nil {
		derr := domain.AsError(err)
		hlog.FromRequest(r).Warn().
			Err(err).
			Str("repo", repo).
			Int("status", derr.HTTPStatus()).
			Msg("Download failed")
		writeError(w, derr.HTTPStatus(), derr.PublicMessage())
		return
	}

	filename := utils.SanitizeFilename(out.Filename)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(out.Size()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("Client went away during write")
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Short(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
