// Package server serves the gpx HTML-fragment interface.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/h0rv/gpx/internal/auth"
	"github.com/h0rv/gpx/internal/domain"
	"github.com/h0rv/gpx/internal/gh"
	"github.com/h0rv/gpx/internal/logging"
	"github.com/h0rv/gpx/internal/session"
	"github.com/h0rv/gpx/internal/view"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ProjectsAPI is the Projects v2 surface the handlers use. *gh.Client satisfies it.
type ProjectsAPI interface {
	ListProjects(ctx context.Context, id auth.Identity) (*gh.ProjectsData, error)
	GetProjectDetails(ctx context.Context, id auth.Identity, number int) (*domain.ProjectDetails, error)
	AddItem(ctx context.Context, id auth.Identity, item gh.NewItem) (*domain.Item, error)
}

// ColumnsAPI lists classic project boards. *gh.ClassicClient satisfies it.
type ColumnsAPI interface {
	ListColumns(ctx context.Context, id auth.Identity, projectID int64) ([]domain.Column, error)
}

// Authenticator runs the OAuth login flow. *auth.OAuth satisfies it.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.Identity, error)
}

// Config holds the server's settings.
type Config struct {
	// AppURL is where a successful login lands.
	AppURL       string
	CookieName   string
	SecureCookie bool
	// TokenOverride, when set, is used instead of any session identity.
	TokenOverride string
	// SessionSweepInterval is how often idle sessions are dropped while serving.
	SessionSweepInterval time.Duration
}

const defaultSessionSweepInterval = 10 * time.Minute

// Server handles the web routes. It keeps no per-request state of its own.
type Server struct {
	cfg       Config
	sessions  *session.Store
	oauth     Authenticator
	projects  ProjectsAPI
	columns   ColumnsAPI
	projector *view.Projector
	tmpl      *template.Template
	logger    *zap.Logger
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Sessions  *session.Store
	OAuth     Authenticator
	Projects  ProjectsAPI
	Columns   ColumnsAPI
	Projector *view.Projector
	Logger    *zap.Logger
}

// New creates a Server.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.OAuth == nil || deps.Projects == nil || deps.Columns == nil {
		return nil, errors.New("server: sessions, oauth, projects and columns are required")
	}
	if cfg.CookieName == "" {
		return nil, errors.New("server: cookie name is empty")
	}
	if cfg.AppURL == "" {
		cfg.AppURL = "/"
	}
	if cfg.SessionSweepInterval <= 0 {
		cfg.SessionSweepInterval = defaultSessionSweepInterval
	}
	if deps.Projector == nil {
		deps.Projector = view.New(nil)
	}

	tmpl, err := template.New("gpx").Funcs(template.FuncMap{
		"isEmpty": func(v domain.FieldValue) bool { return v.Kind() == domain.FieldKindEmpty },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		cfg:       cfg,
		sessions:  deps.Sessions,
		oauth:     deps.OAuth,
		projects:  deps.Projects,
		columns:   deps.Columns,
		projector: deps.Projector,
		tmpl:      tmpl,
		logger:    logging.OrNop(deps.Logger),
	}, nil
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /projects", s.handleProjects)
	mux.HandleFunc("GET /project/{number}/editor", s.handleProjectEditor)
	mux.HandleFunc("POST /project/{id}/item", s.handleAddItem)
	mux.HandleFunc("GET /project/{id}/items", s.handleProjectItems)
	return s.logRequests(mux)
}

// Serve accepts connections on ln until ctx is done, then shuts down,
// giving in-flight requests a few seconds to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		s.sweepSessions(sweepCtx)
	}()
	defer func() {
		stopSweep()
		<-sweepDone
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepSessions drops idle sessions every SessionSweepInterval until ctx is done.
func (s *Server) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Info("expired idle sessions",
					zap.Int("removed", n),
					zap.Int("active", s.sessions.Len()))
			}
		}
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		s.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.String()))
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
