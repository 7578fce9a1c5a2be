package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/legacy"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router registers handlers behind a middleware stack.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Runner runs one batch per category. [tasks.Processor] satisfies it.
type Runner interface {
	Run(ctx context.Context, categories []models.Category, batchSize, offset int, progress chan<- tasks.ProgressUpdate) []tasks.CategoryResult
}

// ConnectionTester reports the health of the legacy source.
type ConnectionTester interface {
	TestConnection(ctx context.Context) legacy.ConnectionStatus
}

// Previewer samples legacy records.
type Previewer interface {
	Preview(ctx context.Context, c models.Category) []legacy.PreviewRow
}

// LedgerStats reports ledger entry counts.
type LedgerStats interface {
	Stats() ([]models.LedgerStat, error)
}

// Options wires a [Server]. Metrics and Logger are optional.
type Options struct {
	Runner           Runner
	Connection       ConnectionTester
	Previewer        Previewer
	Ledger           LedgerStats
	Metrics          MetricsRecorder
	LockPath         string
	DefaultBatchSize int
	Logger           *log.Logger
}

// Server is the HTTP admin surface of the migration pipeline.
type Server struct {
	router *BasicRouter
	logger *log.Logger
}

// New builds a [Server] with every route registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Recover(logger), RequestLogger(logger))
	if opts.Metrics != nil {
		router.Use(Instrument(opts.Metrics))
	}

	router.Handler(NewMigrationHandler(opts.Runner, opts.LockPath, opts.DefaultBatchSize, logger))
	router.Handle(http.MethodGet, "/connection", connectionHandler(opts.Connection))
	router.Handle(http.MethodGet, "/preview/{category}", previewHandler(opts.Previewer))
	router.Handle(http.MethodGet, "/ledger/stats", ledgerStatsHandler(opts.Ledger, logger))
	if opts.Metrics != nil {
		router.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return &Server{router: router, logger: logger}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
