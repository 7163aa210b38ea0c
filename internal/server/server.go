package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/cloud"
)

// Config holds the server configuration.
type Config struct {
	Port    int
	Version string
	Logger  *zap.Logger

	// Secret signs CSRF tokens. A random key is generated when empty, which
	// invalidates outstanding tokens on restart.
	Secret        []byte
	SecureCookies bool

	// MaxBodyBytes caps mutating request bodies; DefaultMaxBodyBytes when
	// not positive.
	MaxBodyBytes int64

	// Requests per client IP per minute; 0 disables the limit.
	CreateLimit int
	LikeLimit   int

	CloudWidth  int
	CloudHeight int
	Padding     float64
	FontFamily  string

	// Intro is Markdown shown above the comment form.
	Intro string
}

// DefaultMaxBodyBytes is the request body cap when none is configured.
const DefaultMaxBodyBytes = 16 << 20

// Server is the HTTP server for the comment wall.
type Server struct {
	Router   *chi.Mux
	store    CommentStore
	config   Config
	log      *zap.Logger
	csrf     *csrfGuard
	font     *cloud.Font
	renderer *cloud.Renderer
}

// New creates a new Server with the given config and store.
func New(cfg Config, st CommentStore) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("comment store must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxBodyBytes < 1 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.CloudWidth < 1 {
		cfg.CloudWidth = 800
	}
	if cfg.CloudHeight < 1 {
		cfg.CloudHeight = 600
	}

	guard, err := newCSRFGuard(cfg.Secret, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	font := cloud.DefaultFont()
	layout := cloud.NewLayout(font)
	if cfg.Padding > 0 {
		layout.Padding = cfg.Padding
	}
	if cfg.FontFamily != "" {
		layout.Font = cfg.FontFamily
	}

	srv := &Server{
		Router:   chi.NewRouter(),
		store:    st,
		config:   cfg,
		log:      cfg.Logger,
		csrf:     guard,
		font:     font,
		renderer: cloud.NewRenderer(layout, cfg.Logger.Named("cloud")),
	}

	srv.Router.Use(middleware.RequestID)
	srv.Router.Use(middleware.RealIP)
	srv.Router.Use(requestLogger(srv.log))
	srv.Router.Use(middleware.Recoverer)
	srv.Router.Use(secureHeaders)

	srv.Router.Get("/", srv.handleIndex)
	srv.Router.Get("/cloud", srv.handleCloudFragment)
	srv.Router.Get("/cloud.png", srv.handleCloudPNG)
	srv.Router.Get("/api/health", srv.handleHealth)
	srv.Router.Get("/api/version", srv.handleVersion)
	srv.Router.Get("/api/comments", srv.handleListComments)
	srv.Router.Get("/api/cloud", srv.handleCloudJSON)

	// Mutating routes have a capped body, require a CSRF token and are rate
	// limited per IP.
	srv.Router.Group(func(r chi.Router) {
		r.Use(limitBody(cfg.MaxBodyBytes))
		r.Use(srv.csrf.middleware)
		r.With(rateLimit(cfg.CreateLimit)).Post("/api/comments", srv.handleCreateComment)
		r.With(rateLimit(cfg.LikeLimit)).Post("/api/comments/{id}/like", srv.handleLikeComment)
	})

	return srv, nil
}

// ListenAddr returns the address the server should listen on.
func (s *Server) ListenAddr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}

// rateLimit allows perMinute requests per client IP; perMinute < 1 disables it.
func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute < 1 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, "too many requests", http.StatusTooManyRequests)
		}),
	)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// handleVersion reports the server build version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": s.config.Version})
}
