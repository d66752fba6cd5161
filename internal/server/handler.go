package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"uptube/internal/distribution"
	"uptube/internal/storage"
)

const (
	videoField      = "video"
	maxMemory       = 32 << 20
	msgNoVideo      = "No video file provided"
	msgTooLarge     = "Video file too large"
	msgUploadOK     = "Upload successful"
	msgUploadFailed = "Upload failed"
)

type uploadResponse struct {
	Message  string `json:"message"`
	VideoURL string `json:"video_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type privacyOption struct {
	Value    string
	Label    string
	Selected bool
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	options := make([]privacyOption, 0, len(distribution.Privacies))
	for _, p := range distribution.Privacies {
		options = append(options, privacyOption{
			Value:    string(p),
			Label:    strings.ToUpper(string(p[:1])) + string(p[1:]),
			Selected: p == s.opts.DefaultPrivacy,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.formTmpl.Execute(w, map[string]any{"Privacies": options}); err != nil {
		slog.Error("Failed to render upload form", "error", err)
	}
}

// handleUpload owns the temp file for the lifetime of the request; it is
// removed on every return path once saved.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}

	file, header, err := r.FormFile(videoField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgNoVideo})
		return
	}
	defer func() { _ = file.Close() }()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		title = s.opts.DefaultTitle
	}

	req := distribution.UploadRequest{
		Title:       title,
		Description: r.FormValue("description"),
		Privacy:     distribution.ParsePrivacy(r.FormValue("privacy"), s.opts.DefaultPrivacy),
	}

	tmp, err := s.opts.Storage.SaveTemp(header.Filename, file)
	if err != nil {
		s.writeFailure(w, r, distribution.NewError(distribution.KindIO, err))
		return
	}
	defer s.removeTemp(r, tmp)

	req.FilePath = tmp.Path

	slog.Info("Uploading video",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"title", req.Title,
		"privacy", req.Privacy,
		"bytes", tmp.Size,
	)

	resp, err := s.opts.Uploader.Upload(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	slog.Info("Upload complete",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"platform", resp.Platform,
		"url", resp.URL,
	)

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  msgUploadOK,
		VideoURL: resp.URL,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) removeTemp(r *http.Request, tmp *storage.TempFile) {
	if err := tmp.Remove(); err != nil {
		slog.Error("Error deleting temp file",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"path", tmp.Path,
			"error", err,
		)
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	kind := distribution.KindOf(err)

	status := http.StatusInternalServerError
	if kind == distribution.KindMissingInput {
		status = http.StatusBadRequest
	}

	slog.Error("Upload failed",
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"kind", kind,
		"error", err,
	)

	message := err.Error()
	if status >= http.StatusInternalServerError && !s.opts.ExposeErrors {
		message = msgUploadFailed
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
