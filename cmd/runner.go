package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/legacy"
	"github.com/desertthunder/wpx/internal/media"
	"github.com/desertthunder/wpx/internal/metrics"
	"github.com/desertthunder/wpx/internal/repositories"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	metrics    *metrics.Metrics
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Metrics    *metrics.Metrics
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		metrics:    opts.Metrics,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, connectionCommand, previewCommand, migrateCommand, ledgerCommand, serveCommand, tuiCommand,
		settingsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by every dependency built afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openStore opens the migrated target store and, when configured, registers the content types.
func (r *Runner) openStore() (*repositories.Store, func(), error) {
	db, err := shared.OpenStore(r.config.Store)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close store", "error", err)
		}
	}

	store := repositories.NewStore(db)
	if r.config.Migration.CreateContentTypes {
		if err := store.Schema.EnsureContentTypes(); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to create content types: %w", err)
		}
	}
	return store, closeFn, nil
}

func (r *Runner) connector() *legacy.Connector {
	return legacy.NewConnector(r.config.Database, legacy.WithConnectorLogger(r.logger))
}

func (r *Runner) extractor() *legacy.Extractor {
	return legacy.NewExtractor(r.connector(), r.logger)
}

// recorder returns the shared metrics, creating them on first use.
func (r *Runner) recorder() (*metrics.Metrics, error) {
	if r.metrics != nil {
		return r.metrics, nil
	}
	m, err := metrics.NewDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	r.metrics = m
	return m, nil
}

// newProcessor wires a processor over store with the configured legacy source and media settings.
func (r *Runner) newProcessor(store *repositories.Store) (*tasks.Processor, error) {
	m, err := r.recorder()
	if err != nil {
		return nil, err
	}

	storage, err := media.NewStorage(r.config.Media.PublicDir, r.config.Media.Directory)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if rps := r.config.Media.RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	materializer := media.NewMaterializer(media.Options{
		BaseURL:   r.config.WordPress.BaseURL,
		Client:    r.httpClient,
		Limiter:   limiter,
		Storage:   storage,
		Store:     store.Media,
		Logger:    r.logger,
		Recorder:  m,
		UserAgent: r.config.Media.UserAgent,
		Timeout:   time.Duration(r.config.Media.Timeout) * time.Second,
	})

	return tasks.NewProcessor(tasks.ProcessorOpts{
		Extractor:    r.extractor(),
		Ledger:       tasks.NewLedger(store.Ledger, store, r.logger, m),
		Store:        tasks.StoresFrom(store),
		Media:        materializer,
		Logger:       r.logger,
		Recorder:     m,
		SkipExisting: r.config.Migration.SkipExisting,
	}), nil
}

// lockPath is the run lock shared by migrate, serve and tui.
func (r *Runner) lockPath() string {
	return shared.RunLockPath(r.config.Store.Path)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
