package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/nao1215/qrreader/internal/model"
)

const (
	// maxRequestBody caps the JSON body of POST /.
	maxRequestBody = 64 * 1024

	// shutdownTimeout bounds graceful shutdown after the context is cancelled.
	shutdownTimeout = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

// Reader runs one read. *pipeline.Processor implements it.
type Reader interface {
	Run(ctx context.Context, url string) *model.ReadReport
}

// HistoryStore persists reads. *database.HistoryDB implements it.
type HistoryStore interface {
	SaveRead(ctx context.Context, report *model.ReadReport) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.ReadRecord, error)
	Stats(ctx context.Context) (model.Summary, error)
}

// Server is the HTTP front end of the read pipeline.
type Server struct {
	reader    Reader
	history   HistoryStore
	logger    *slog.Logger
	authToken string
	limiter   *rate.Limiter
	router    chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAuthToken requires "Authorization: Bearer <token>" on POST / and
// GET /history. An empty token disables authentication.
func WithAuthToken(token string) Option {
	return func(s *Server) {
		s.authToken = token
	}
}

// WithRateLimit enables a global token bucket of rps requests per second
// with the given burst. A non-positive rps disables rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHistory stores every read in store. GET /history lists the store
// only when an auth token is configured; the stored reads include decoded
// QR text.
func WithHistory(store HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// New creates a Server that answers reads with reader.
func New(reader Reader, opts ...Option) *Server {
	s := &Server{
		reader: reader,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.router = s.routes()
	return s
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(noSniff)
	r.Use(s.rateLimit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/errors", s.handleErrors)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/", s.handleRead)
		r.Get("/history", s.handleHistory)
	})

	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, letting in-flight reads finish within shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
