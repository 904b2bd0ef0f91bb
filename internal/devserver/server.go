// Package devserver serves the build directory over HTTP while watch mode
// runs, so the editor can load the extension from a localhost URL.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/twbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/logfields"
	"git.home.luguber.info/inful/twbuild/internal/metrics"
)

// ShutdownTimeout bounds graceful shutdown after the context is canceled.
const ShutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr     string
	Dir      string
	Status   *BuildStatus
	Registry *prom.Registry
	Logger   *slog.Logger
}

// Server is the development HTTP server.
type Server struct {
	Addr   string
	dir    string
	router *chi.Mux
	server *http.Server
	status *BuildStatus
	logger *slog.Logger
	errs   *foundationerrors.HTTPErrorAdapter
	reg    *prom.Registry
}

// New creates a Server. Nothing listens until Run is called.
func New(opts Options) *Server {
	s := &Server{
		Addr:   opts.Addr,
		dir:    opts.Dir,
		router: chi.NewRouter(),
		status: opts.Status,
		logger: opts.Logger,
		reg:    opts.Registry,
	}
	if s.status == nil {
		s.status = &BuildStatus{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.errs = foundationerrors.NewHTTPErrorAdapter(s.logger)

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(devHeaders)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.reg))
	s.router.Handle("/*", http.FileServer(http.Dir(s.dir)))
}

// Handler exposes the router (tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// URL is where the built extension can be loaded from.
func (s *Server) URL() string {
	return "http://" + s.Addr + "/" + config.OutputFileName
}

// Run listens on Addr and serves until ctx is canceled, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryRuntime, "dev server listen failed").
			WithContext("addr", s.Addr).
			Build()
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.Addr = ln.Addr().String()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()
	s.logger.Info("Serving build directory",
		logfields.Addr(s.Addr),
		logfields.Dir(s.dir),
		slog.String("url", s.URL()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return foundationerrors.WrapError(err, foundationerrors.CategoryRuntime, "dev server stopped").Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Dev server shutdown", logfields.Error(err))
		return err
	}
	s.logger.Info("Dev server stopped")
	return nil
}

type healthResponse struct {
	Status  string    `json:"status"`
	Script  string    `json:"script"`
	BuildID string    `json:"build_id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Bytes   int       `json:"bytes,omitempty"`
	SizeKiB string    `json:"size_kib,omitempty"`
	Files   []string  `json:"files,omitempty"`
	BuiltAt time.Time `json:"built_at,omitzero"`
}

// handleHealth reports the last build. A failed build is returned as a
// classified error so clients see its category and status code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res, at, err := s.status.Snapshot()
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}

	resp := healthResponse{Status: "starting", Script: "/" + config.OutputFileName}
	if res != nil {
		resp.Status = "ok"
		resp.Script = "/" + filepath.Base(res.Output)
		resp.BuildID = res.ID
		resp.Name = res.Metadata.Name
		resp.Bytes = res.Bytes
		resp.SizeKiB = res.SizeKiB()
		resp.Files = res.Files
		resp.BuiltAt = at
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// devHeaders lets any origin fetch the artifact and keeps browsers from
// caching a stale build.
func devHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Cache-Control", "no-store")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			slog.String("method", r.Method),
			logfields.Path(r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	})
}
