package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"uptube/internal/distribution"
	"uptube/internal/storage"
)

//go:embed templates/*
var templates embed.FS

const (
	defaultTitle           = "Untitled Video"
	defaultShutdownTimeout = 10 * time.Second
)

type Server struct {
	opts     Options
	router   chi.Router
	formTmpl *template.Template
}

type Options struct {
	Addr     string
	Uploader distribution.Uploader
	Storage  *storage.LocalStorage

	DefaultTitle   string
	DefaultPrivacy distribution.Privacy
	// MaxUploadBytes caps the request body; zero leaves it unbounded.
	MaxUploadBytes int64
	// ExposeErrors passes failure messages through to the client verbatim.
	ExposeErrors bool

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func New(opts Options) *Server {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = defaultTitle
	}
	if opts.DefaultPrivacy == "" {
		opts.DefaultPrivacy = distribution.PrivacyPublic
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		opts:     opts,
		formTmpl: template.Must(template.ParseFS(templates, "templates/upload.html")),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/upload", http.StatusFound)
	})
	r.Get("/upload", s.handleForm)
	r.Post("/upload", s.handleUpload)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request",
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
